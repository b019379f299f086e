package config

// TargetConfig holds the settings for a single OFX server.
type TargetConfig struct {
	// FID is the financial institution ID sent in the sign-on request.
	FID string `yaml:"fid,omitempty"`

	// Org is the organization name sent in the sign-on request.
	Org string `yaml:"org,omitempty"`

	// Version overrides the protocol version for this server.
	// If zero, the global OFXVersion is used.
	Version int `yaml:"version,omitempty"`

	// TLSVerify overrides certificate verification for this server.
	TLSVerify *bool `yaml:"tlsVerify,omitempty"`

	// Headers are extra HTTP headers sent with every request to this server.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .ofxpostern configuration file.
type File struct {
	// Targets maps OFX server URLs to their settings.
	Targets map[string]TargetConfig `yaml:"targets,omitempty"`

	// Defaults applies to every target unless overridden.
	Defaults TargetConfig `yaml:"defaults,omitempty"`
}

// GetTargetConfig returns the configuration for url merged over the
// defaults.
func (cf *File) GetTargetConfig(url string) TargetConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	tc, ok := cf.Targets[url]
	if !ok {
		return result
	}
	if tc.FID != "" {
		result.FID = tc.FID
	}
	if tc.Org != "" {
		result.Org = tc.Org
	}
	if tc.Version != 0 {
		result.Version = tc.Version
	}
	if tc.TLSVerify != nil {
		result.TLSVerify = tc.TLSVerify
	}
	if len(tc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(tc.Headers))
		}
		for k, v := range tc.Headers {
			result.Headers[k] = v
		}
	}
	return result
}

// Resolve returns the effective request settings for url. Command line
// values win; the config file fills in what the command line left at
// its default.
func (c *Config) Resolve(url string) TargetConfig {
	tc := TargetConfig{FID: c.FID, Org: c.Org, Version: c.OFXVersion}
	verify := c.TLSVerify
	tc.TLSVerify = &verify
	if c.TargetConfigs == nil {
		return tc
	}

	fc := c.TargetConfigs.GetTargetConfig(url)
	if tc.FID == "" {
		tc.FID = fc.FID
	}
	if tc.Org == "" {
		tc.Org = fc.Org
	}
	if c.OFXVersion == DefaultOFXVersion && fc.Version != 0 {
		tc.Version = fc.Version
	}
	if c.TLSVerify && fc.TLSVerify != nil {
		tc.TLSVerify = fc.TLSVerify
	}
	tc.Headers = fc.Headers
	return tc
}

// VerifyTLS reports whether certificate verification is enabled.
func (tc TargetConfig) VerifyTLS() bool {
	return tc.TLSVerify == nil || *tc.TLSVerify
}
