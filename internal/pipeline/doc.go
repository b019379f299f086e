// Package pipeline runs the stages of one scan in sequence and scans
// several targets concurrently.
//
// A scan of one target is a Pipeline of Steps sharing a *model.ScanReport:
// TLS check, probing, profile decoding, fingerprinting, assessment and
// optionally persisting the report. Cancellation is checked between
// steps. BatchProcessor fans targets out with errgroup, each target with
// its own pipeline, transport session and report.
package pipeline
