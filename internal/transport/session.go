package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
)

// Session issues the canonical probes against one target.
//
// Identical requests are sent at most once per session. A URL that could
// not be reached is remembered, and later probes to it return sentinels
// without touching the network. Read timeouts are not remembered.
// A Session must not be shared between targets.
type Session struct {
	client  *Client
	target  string
	root    string
	builder *ofx.RequestBuilder

	mu     sync.Mutex
	memo   map[string]model.ProbeRecord
	failed map[string]string
}

// NewSession creates a session for target. builder supplies the OFX
// envelopes of the POST probes.
func (c *Client) NewSession(target string, builder *ofx.RequestBuilder) (*Session, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}
	return &Session{
		client:  c,
		target:  target,
		root:    u.Scheme + "://" + u.Host,
		builder: builder,
		memo:    make(map[string]model.ProbeRecord),
		failed:  make(map[string]string),
	}, nil
}

// Target returns the OFX endpoint of the session.
func (s *Session) Target() string {
	return s.target
}

// Probe sends one canonical probe. It never fails: when no response is
// received the returned record is a sentinel describing why.
func (s *Session) Probe(ctx context.Context, name model.ProbeName) model.ProbeRecord {
	method, target, body, err := s.request(name)
	if err != nil {
		return model.NewSentinel(name, s.target, err.Error())
	}

	key := method + " " + target + "\n" + body

	s.mu.Lock()
	if failure, ok := s.failed[target]; ok {
		s.mu.Unlock()
		return model.NewSentinel(name, target, failure)
	}
	if rec, ok := s.memo[key]; ok {
		s.mu.Unlock()
		rec.Name = name
		return rec
	}
	s.mu.Unlock()

	rec, err := s.client.Do(ctx, method, target, body)
	if err != nil {
		s.client.logger.Debug("probe failed", "probe", name, "url", target, "error", err)
		if ctx.Err() == nil && unreachable(err) {
			s.mu.Lock()
			s.failed[target] = err.Error()
			s.mu.Unlock()
		}
		return model.NewSentinel(name, target, err.Error())
	}

	s.mu.Lock()
	s.memo[key] = rec
	s.mu.Unlock()

	rec.Name = name
	return rec
}

// ProbeAll sends every canonical probe in order. It stops early and
// returns ctx.Err() if ctx is cancelled between probes.
func (s *Session) ProbeAll(ctx context.Context) (model.ProbeSet, error) {
	names := model.ProbeNames()
	set := make(model.ProbeSet, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return set, err
		}
		set = append(set, s.Probe(ctx, name))
	}
	return set, nil
}

// request returns what a probe sends.
func (s *Session) request(name model.ProbeName) (method, target, body string, err error) {
	switch name {
	case model.ProbeGetRoot:
		return http.MethodGet, s.root, "", nil
	case model.ProbeGetOFX:
		return http.MethodGet, s.target, "", nil
	case model.ProbePostOFX:
		return http.MethodPost, s.target, "", nil
	case model.ProbeOFXEmpty:
		return http.MethodPost, s.target, s.builder.EmptyEnvelope(), nil
	case model.ProbeOFXProfile:
		return http.MethodPost, s.target, s.builder.ProfileRequest(), nil
	default:
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownProbe, name)
	}
}

// unreachable reports whether err means no connection could be made, as
// opposed to a server that was too slow to answer.
func unreachable(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	return true
}
