// Package main provides the entry point for the ofxpostern CLI.
//
// ofxpostern probes Open Financial Exchange (OFX) servers: it identifies
// the server software, lists the capabilities the server discloses in its
// profile, and runs a set of security checks against it.
//
// Usage:
//
//	ofxpostern scan <ofx-url>
//	ofxpostern scan --fid 1234 --org BigBank <ofx-url>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
