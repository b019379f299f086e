// Package transport sends the canonical probes to an OFX server.
//
// A Client holds the HTTP stack: TLS verification, an optional http or
// SOCKS5 proxy (including an embedded Tor daemon), timeouts and the
// headers every request carries. A Session is created per scan and
// issues the probes against one target. Network failures never surface
// as errors from a Session; they are returned as sentinel records so
// the rest of the scan can treat them as missing data.
package transport
