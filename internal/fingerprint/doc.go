// Package fingerprint infers what an OFX server runs on from the
// responses to the canonical probes.
//
// The engine resolves four things, each from its own evidence:
//
//   - the HTTP server, from Server headers and error page titles
//   - the web framework, from X-Powered-By and WebSphere error pages
//   - the OFX software, from well-known endpoint paths
//   - the hosting service provider, from well-known hosts or SPNAME
//
// All the knowledge lives in Tables, so new signatures can be added
// without touching the resolution logic.
package fingerprint
