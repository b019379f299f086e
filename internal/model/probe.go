package model

import (
	"net/http"
	"net/textproto"
	"strings"
)

// ProbeName identifies one of the canonical requests sent to a server.
type ProbeName string

// The five probes, in the order they are sent.
const (
	ProbeGetRoot    ProbeName = "GET /"
	ProbeGetOFX     ProbeName = "GET OFX Path"
	ProbePostOFX    ProbeName = "POST OFX Path"
	ProbeOFXEmpty   ProbeName = "OFX Empty"
	ProbeOFXProfile ProbeName = "OFX PROFILE"
)

// ProbeNames returns every probe in canonical order.
func ProbeNames() []ProbeName {
	return []ProbeName{ProbeGetRoot, ProbeGetOFX, ProbePostOFX, ProbeOFXEmpty, ProbeOFXProfile}
}

// Method returns the HTTP method the probe is sent with.
func (n ProbeName) Method() string {
	switch n {
	case ProbeGetRoot, ProbeGetOFX:
		return http.MethodGet
	default:
		return http.MethodPost
	}
}

// Valid reports whether n is one of the canonical probes.
func (n ProbeName) Valid() bool {
	for _, p := range ProbeNames() {
		if p == n {
			return true
		}
	}
	return false
}

// Headers is a case-insensitive response header map with one value per name.
type Headers map[string]string

// HeadersFrom collapses an http.Header, keeping the last value of any
// repeated header.
func HeadersFrom(h http.Header) Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		out.Set(k, v[len(v)-1])
	}
	return out
}

// Set stores value under the canonical form of name.
func (h Headers) Set(name, value string) {
	h[textproto.CanonicalMIMEHeaderKey(name)] = value
}

// Lookup returns the value of name and whether the header was present.
func (h Headers) Lookup(name string) (string, bool) {
	v, ok := h[textproto.CanonicalMIMEHeaderKey(name)]
	return v, ok
}

// Get returns the value of name or "" when absent.
func (h Headers) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// ProbeRecord is the outcome of one probe. A sentinel record stands for
// a request that produced no HTTP response at all.
type ProbeRecord struct {
	Name       ProbeName `json:"name"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Headers    Headers   `json:"headers,omitempty"`
	Body       string    `json:"body,omitempty"`
	Sentinel   bool      `json:"sentinel"`

	// Failure describes why no response was received.
	Failure string `json:"failure,omitempty"`
}

// NewSentinel returns the "no response" record for a probe.
func NewSentinel(name ProbeName, url, failure string) ProbeRecord {
	return ProbeRecord{
		Name:     name,
		Method:   name.Method(),
		URL:      url,
		Headers:  Headers{},
		Sentinel: true,
		Failure:  failure,
	}
}

// Header returns a response header and whether it was present.
func (r ProbeRecord) Header(name string) (string, bool) {
	if r.Headers == nil {
		return "", false
	}
	return r.Headers.Lookup(name)
}

// FirstLine returns the first line of the body.
func (r ProbeRecord) FirstLine() string {
	line, _, _ := strings.Cut(r.Body, "\n")
	return strings.TrimRight(line, "\r")
}

// ProbeSet holds the records of one run, indexed by probe name.
type ProbeSet []ProbeRecord

// Get returns the record for name, or a sentinel when the probe was
// never sent.
func (s ProbeSet) Get(name ProbeName) ProbeRecord {
	for _, r := range s {
		if r.Name == name {
			return r
		}
	}
	return NewSentinel(name, "", "probe not sent")
}

// Response returns the record for name when it holds a real response.
func (s ProbeSet) Response(name ProbeName) (ProbeRecord, bool) {
	r := s.Get(name)
	return r, !r.Sentinel
}

// Responded reports whether any probe received a response.
func (s ProbeSet) Responded() bool {
	for _, r := range s {
		if !r.Sentinel {
			return true
		}
	}
	return false
}
