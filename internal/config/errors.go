package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no target URL is specified.
	ErrNoTarget = errors.New("no target specified: provide at least one OFX server URL")

	// ErrInvalidTarget is returned when a target is not an absolute http or https URL.
	ErrInvalidTarget = errors.New("invalid target: must be an http or https URL with a host")

	// ErrInvalidOFXVersion is returned when the protocol version is not a 1xx or 2xx version.
	ErrInvalidOFXVersion = errors.New("invalid OFX version: must be a 1xx or 2xx version such as 102 or 220")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingProxy is returned when --proxy and --tor are both set.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")

	// ErrInvalidProxy is returned when the proxy URL scheme is not supported.
	ErrInvalidProxy = errors.New("invalid proxy: must be an http, https or socks5 URL")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
