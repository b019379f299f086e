package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultOFXVersion is the protocol version requests are written in.
	// 1.0.2 is the version most servers still accept.
	DefaultOFXVersion = 102

	// DefaultConnectTimeout bounds the TCP and TLS handshake of each request.
	DefaultConnectTimeout = 3200 * time.Millisecond

	// DefaultReadTimeout bounds the wait for a complete response. Some
	// OFX servers take tens of seconds to answer a profile request.
	DefaultReadTimeout = 27 * time.Second

	// DefaultBatchSize is the number of targets scanned concurrently.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "ofxpostern"

	// DefaultUserAgent is the User-Agent of a common desktop finance
	// client. Several servers reject requests from unknown agents.
	DefaultUserAgent = "InetClntApp/3.0"

	// DefaultMaxBodySize limits the response body size to read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DatabaseFile is the file name of the response cache inside DBDir.
	DatabaseFile = "ofxpostern.db"
)

// Config holds all configuration options for ofxpostern.
// It is populated from CLI flags and passed through the application
// rather than kept in global state.
type Config struct {
	// Targets are the OFX server URLs to scan.
	Targets []string

	// FID and Org identify the financial institution in the sign-on
	// request. Both are optional; many servers answer without them.
	FID string
	Org string

	// OFXVersion is the protocol version requests are written in,
	// e.g. 102 or 220.
	OFXVersion int

	// TLSVerify enables certificate verification. Disabling it lets the
	// scan continue against servers with broken certificates.
	TLSVerify bool

	// ProxyURL routes every request through an http, https or socks5 proxy.
	ProxyURL string

	// UseTor starts an embedded Tor daemon and routes requests through it.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon to bootstrap. Only used when UseTor is true.
	TorStartupTimeout time.Duration

	// ConnectTimeout bounds connection setup of each request.
	ConnectTimeout time.Duration

	// ReadTimeout bounds the wait for each complete response.
	ReadTimeout time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// BatchSize is the number of targets scanned concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool looks for .ofxpostern in the current and home directories.
	ConfigFilePath string

	// TargetConfigs holds the per-target settings from the config file.
	TargetConfigs *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Stdout when empty.
	ReportFile string

	// UseCache replays stored probe responses instead of contacting the
	// server when a previous scan of the same target is in the database.
	UseCache bool

	// DBDir is the directory of the response cache and scan history.
	// Empty disables persistence.
	DBDir string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero means DefaultMaxBodySize.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OFXVersion:        DefaultOFXVersion,
		TLSVerify:         true,
		TorStartupTimeout: DefaultTorStartupTimeout,
		ConnectTimeout:    DefaultConnectTimeout,
		ReadTimeout:       DefaultReadTimeout,
		BatchSize:         DefaultBatchSize,
		DBDir:             XDGDataDir(),
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for ofxpostern.
// On Linux: ~/.local/share/ofxpostern
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ofxpostern.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DatabasePath returns the path of the SQLite database, or "" when
// persistence is disabled.
func (c *Config) DatabasePath() string {
	if c.DBDir == "" {
		return ""
	}
	return filepath.Join(c.DBDir, DatabaseFile)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	for _, target := range c.Targets {
		if err := ValidateTarget(target); err != nil {
			return err
		}
	}

	if major := c.OFXVersion / 100; major != 1 && major != 2 {
		return fmt.Errorf("%w: %d", ErrInvalidOFXVersion, c.OFXVersion)
	}

	if c.ConnectTimeout <= 0 || c.ReadTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.ProxyURL != "" {
		if c.UseTor {
			return ErrConflictingProxy
		}
		u, err := url.Parse(c.ProxyURL)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProxy, err)
		}
		switch u.Scheme {
		case "http", "https", "socks5", "socks5h":
		default:
			return fmt.Errorf("%w: %s", ErrInvalidProxy, c.ProxyURL)
		}
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// ValidateTarget checks that target is an absolute http or https URL.
func ValidateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}
	return nil
}
