package model

import (
	"time"

	"github.com/nao1215/ofxpostern/internal/ofx"
)

// ScanReport holds everything collected for one target.
type ScanReport struct {
	// Target is the OFX endpoint URL that was scanned.
	Target string `json:"target"`

	// FID and Org identify the financial institution on the request side.
	FID string `json:"fid,omitempty"`
	Org string `json:"org,omitempty"`

	// OFXVersion is the protocol version the requests were written in.
	OFXVersion int `json:"ofx_version"`

	// DateScanned is when the scan started.
	DateScanned time.Time `json:"date_scanned"`

	// Probes are the raw exchanges, in canonical order.
	Probes ProbeSet `json:"probes"`

	// Profile is the decoded profile response, or nil when it could not
	// be decoded.
	Profile *ofx.Profile `json:"profile,omitempty"`

	// DecodeError explains why Profile is nil.
	DecodeError string `json:"decode_error,omitempty"`

	// Identity is the fingerprint result.
	Identity ServerIdentity `json:"identity"`

	// Ledger holds the assessment results.
	Ledger Ledger `json:"ledger"`

	// FromCache is true when the probes were loaded from the response cache.
	FromCache bool `json:"from_cache,omitempty"`

	// TimedOut is true if the scan was cancelled before it finished.
	TimedOut bool `json:"timed_out"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the error that stopped the scan, if any.
	Error error `json:"-"`

	// ErrorMessage is Error rendered for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewScanReport creates an empty report for target.
func NewScanReport(target, fid, org string, version int) *ScanReport {
	return &ScanReport{
		Target:      target,
		FID:         fid,
		Org:         org,
		OFXVersion:  version,
		DateScanned: time.Now(),
		Identity:    NewServerIdentity(target, fid, org),
	}
}

// SetError records the error that stopped the scan.
func (r *ScanReport) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// AddProbe appends or replaces the record for a probe.
func (r *ScanReport) AddProbe(rec ProbeRecord) {
	for i, p := range r.Probes {
		if p.Name == rec.Name {
			r.Probes[i] = rec
			return
		}
	}
	r.Probes = append(r.Probes, rec)
}

// InstitutionName returns the FINAME from the profile, if any.
func (r *ScanReport) InstitutionName() string {
	if r.Profile == nil {
		return ""
	}
	return r.Profile.Fields[ofx.FieldFIName]
}
