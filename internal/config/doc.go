// Package config provides configuration structures and utilities for ofxpostern.
// It defines the scan options, the request identity sent to each OFX
// server and the per-target overrides read from the .ofxpostern file.
package config
