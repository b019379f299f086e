package model

import (
	"encoding/json"
	"fmt"
)

// TLSState records what is known about a server's TLS setup.
type TLSState int

const (
	// TLSUnknown means TLS was never tested. It is treated as working.
	TLSUnknown TLSState = iota
	// TLSWorking means a verified TLS connection succeeded.
	TLSWorking
	// TLSBroken means the TLS handshake or certificate check failed.
	TLSBroken
)

// String returns the state name.
func (s TLSState) String() string {
	switch s {
	case TLSWorking:
		return "working"
	case TLSBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state as its name.
func (s TLSState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state name.
func (s *TLSState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "working":
		*s = TLSWorking
	case "broken":
		*s = TLSBroken
	case "unknown", "":
		*s = TLSUnknown
	default:
		return fmt.Errorf("unknown TLS state %q", name)
	}
	return nil
}

// Software is the OFX server product behind an endpoint.
type Software struct {
	Company string `json:"company,omitempty"`
	Product string `json:"product,omitempty"`
	Version string `json:"version,omitempty"`
}

// IsZero reports whether nothing is known about the software.
func (s Software) IsZero() bool {
	return s == Software{}
}

// ServerIdentity is the inferred identity of one OFX server. A new value
// is built for every scan.
type ServerIdentity struct {
	URL             string   `json:"url"`
	FID             string   `json:"fid,omitempty"`
	Org             string   `json:"org,omitempty"`
	HTTPServer      string   `json:"http_server,omitempty"`
	WebFramework    string   `json:"web_framework,omitempty"`
	Software        Software `json:"software"`
	ServiceProvider string   `json:"service_provider,omitempty"`
	TLS             TLSState `json:"tls"`
}

// NewServerIdentity returns an empty identity for the given endpoint.
func NewServerIdentity(url, fid, org string) ServerIdentity {
	return ServerIdentity{URL: url, FID: fid, Org: org}
}

// TLSWorking reports false only when TLS was tested and failed.
func (s ServerIdentity) TLSWorking() bool {
	return s.TLS != TLSBroken
}

// SetTLS records the result of a TLS test.
func (s *ServerIdentity) SetTLS(working bool) {
	if working {
		s.TLS = TLSWorking
		return
	}
	s.TLS = TLSBroken
}
