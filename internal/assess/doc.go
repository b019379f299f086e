// Package assess runs the security checks against the evidence gathered
// from an OFX server.
//
// The engine runs a fixed sequence of checks and records one
// model.TestResult per check in a model.Ledger. Checks that need the
// decoded profile are left out of the ledger when the profile response
// cannot be decoded, and the ledger carries a note saying so.
//
// Checks only read their input. Running the engine twice on the same
// identity and probes produces equal ledgers.
package assess
