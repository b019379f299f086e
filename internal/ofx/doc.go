// Package ofx decodes OFX server responses into a Profile and builds the
// request envelopes used to probe a server.
//
// Two wire families are understood:
//
//   - family 1: an SGML body preceded by KEY:VALUE header lines
//     (OFXHEADER:100 ...). Closing tags are optional for leaf elements.
//   - family 2: a well-formed XML body preceded by an
//     <?OFX OFXHEADER="200" ...?> processing instruction.
//
// Decoding is a best-effort field extraction, not validation. A single
// table of extraction targets drives both families so that equivalent
// documents produce equal Profiles. A field or capability that the server
// did not disclose is absent, never false.
//
// Family 1 block lookups return the first matching block only. Servers
// that repeat a message set block (for example two SIGNONINFO entries)
// are read from the first occurrence.
package ofx
