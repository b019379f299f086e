package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
)

func newBuilder(t *testing.T) *ofx.RequestBuilder {
	t.Helper()
	b, err := ofx.NewRequestBuilder(102, "1234", "BigBank",
		ofx.WithClock(func() time.Time { return time.Date(2017, 6, 16, 14, 13, 27, 0, time.UTC) }),
		ofx.WithUIDGenerator(func() string { return "C1B7C870-7CB2-1000-BD91-E1E23E560026" }),
	)
	if err != nil {
		t.Fatalf("NewRequestBuilder() error = %v", err)
	}
	return b
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

type request struct {
	method, path, body string
}

// recordingServer answers every request with 200 and remembers what it saw.
func recordingServer(t *testing.T) (*httptest.Server, func() []request) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body) //nolint:errcheck // test server
		mu.Lock()
		seen = append(seen, request{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()
		w.Header().Set("Server", "Apache")
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(srv.Close)
	return srv, func() []request {
		mu.Lock()
		defer mu.Unlock()
		return append([]request(nil), seen...)
	}
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)
	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{name: "https url", target: "https://ofx.bigbank.com/ofx/process.ofx"},
		{name: "http url with port", target: "http://127.0.0.1:8080/ofx"},
		{name: "no scheme", target: "ofx.bigbank.com/ofx", wantErr: true},
		{name: "unsupported scheme", target: "ftp://ofx.bigbank.com/ofx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := c.NewSession(tt.target, newBuilder(t))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTarget) {
					t.Errorf("expected ErrInvalidTarget, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Target() != tt.target {
				t.Errorf("Target() = %q", s.Target())
			}
		})
	}
}

func TestSessionProbeAll(t *testing.T) {
	t.Parallel()

	srv, seen := recordingServer(t)
	builder := newBuilder(t)
	s, err := newTestClient(t).NewSession(srv.URL+"/ofx/process.ofx", builder)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	set, err := s.ProbeAll(context.Background())
	if err != nil {
		t.Fatalf("ProbeAll() error = %v", err)
	}

	names := model.ProbeNames()
	if len(set) != len(names) {
		t.Fatalf("len(set) = %d, want %d", len(set), len(names))
	}
	for i, rec := range set {
		if rec.Name != names[i] {
			t.Errorf("set[%d].Name = %q, want %q", i, rec.Name, names[i])
		}
		if rec.Sentinel || rec.StatusCode != http.StatusOK {
			t.Errorf("set[%d] = %+v, want a 200 response", i, rec)
		}
		if rec.Headers.Get("Server") != "Apache" {
			t.Errorf("set[%d] Server = %q", i, rec.Headers.Get("Server"))
		}
	}

	want := []request{
		{method: http.MethodGet, path: "/"},
		{method: http.MethodGet, path: "/ofx/process.ofx"},
		{method: http.MethodPost, path: "/ofx/process.ofx"},
		{method: http.MethodPost, path: "/ofx/process.ofx", body: builder.EmptyEnvelope()},
		{method: http.MethodPost, path: "/ofx/process.ofx", body: builder.ProfileRequest()},
	}
	got := seen()
	if len(got) != len(want) {
		t.Fatalf("server saw %d requests, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("request %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if !strings.Contains(got[4].body, "<PROFRQ>") {
		t.Errorf("profile request body = %q", got[4].body)
	}
}

func TestSessionProbe_MemoizesIdenticalRequests(t *testing.T) {
	t.Parallel()

	srv, seen := recordingServer(t)
	s, err := newTestClient(t).NewSession(srv.URL+"/ofx", newBuilder(t))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	first := s.Probe(context.Background(), model.ProbeOFXEmpty)
	second := s.Probe(context.Background(), model.ProbeOFXEmpty)

	if n := len(seen()); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
	if first.Body != second.Body || second.Name != model.ProbeOFXEmpty {
		t.Errorf("memoized record differs: %+v vs %+v", first, second)
	}
}

func TestSessionProbe_RemembersUnreachableURL(t *testing.T) {
	t.Parallel()

	// A server that accepts and immediately drops every connection.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	var accepts atomic.Int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepts.Add(1)
			conn.Close()
		}
	}()

	s, err := newTestClient(t).NewSession("http://"+ln.Addr().String()+"/ofx", newBuilder(t))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	for _, name := range []model.ProbeName{model.ProbeGetOFX, model.ProbePostOFX, model.ProbeOFXProfile} {
		rec := s.Probe(context.Background(), name)
		if !rec.Sentinel {
			t.Errorf("%s: expected sentinel, got %+v", name, rec)
		}
		if rec.Name != name || rec.Failure == "" {
			t.Errorf("%s: unexpected sentinel %+v", name, rec)
		}
	}
	if n := accepts.Load(); n != 1 {
		t.Errorf("server accepted %d connections, want 1", n)
	}
}

func TestSessionProbe_RetriesAfterReadTimeout(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, WithTimeouts(time.Second, 50*time.Millisecond))
	s, err := c.NewSession(srv.URL+"/ofx", newBuilder(t))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	for range 2 {
		if rec := s.Probe(context.Background(), model.ProbeGetOFX); !rec.Sentinel {
			t.Fatalf("expected sentinel, got %+v", rec)
		}
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server saw %d requests, want 2", n)
	}
}

func TestSessionProbeAll_Cancelled(t *testing.T) {
	t.Parallel()

	srv, seen := recordingServer(t)
	s, err := newTestClient(t).NewSession(srv.URL+"/ofx", newBuilder(t))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	set, err := s.ProbeAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(set) != 0 || len(seen()) != 0 {
		t.Errorf("expected nothing sent, got %d records", len(set))
	}
}

func TestSessionProbe_UnknownProbe(t *testing.T) {
	t.Parallel()

	s, err := newTestClient(t).NewSession("http://127.0.0.1:1/ofx", newBuilder(t))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	rec := s.Probe(context.Background(), model.ProbeName("DELETE /"))
	if !rec.Sentinel || !strings.Contains(rec.Failure, "unknown probe") {
		t.Errorf("unexpected record %+v", rec)
	}
}
