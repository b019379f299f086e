// Package database provides SQLite-based storage for ofxpostern.
//
// ResponseDB keeps two kinds of data:
//   - probe responses, so a target can be re-analysed without contacting
//     the server again (the --cache flag)
//   - scan reports, for the history command
//
// The database is a single file under the XDG data directory, opened
// through the CGO-free modernc.org/sqlite driver in WAL mode.
package database
