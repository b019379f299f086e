// Package model defines the data passed between the prober, the
// fingerprint engine, the assessment engine and the reporters.
//
// The main types are:
//   - ProbeRecord and ProbeSet: the five canonical HTTP exchanges
//   - ServerIdentity: what the fingerprint engine inferred about the server
//   - TestResult and Ledger: the outcome of the assessment checks
//   - ScanReport: everything collected for one target
//
// Types live in their own package so the engines, the pipeline and the
// reporters can share them without import cycles. All of them serialize
// to JSON for report output and database storage.
package model
