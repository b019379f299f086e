package ofx

import "errors"

// Decode errors. Decode wraps these with detail, so compare with errors.Is.
var (
	// ErrUnrecognizedHeader is returned when the text carries neither a
	// family 1 nor a family 2 OFX header.
	ErrUnrecognizedHeader = errors.New("unrecognized OFX header")

	// ErrMissingVersion is returned when the header has no usable VERSION.
	ErrMissingVersion = errors.New("missing OFX version")

	// ErrInvalidBoolean is returned when a boolean element holds something
	// other than Y or N.
	ErrInvalidBoolean = errors.New("invalid OFX boolean")
)

// ErrUnsupportedVersion is returned by NewRequestBuilder for a protocol
// version outside the 1xx and 2xx families.
var ErrUnsupportedVersion = errors.New("unsupported OFX version")
