package ofx

import (
	"strconv"
	"strings"
)

// Family identifies the wire format of an OFX document.
type Family int

const (
	// FamilySGML is the 1xx protocol family (SGML body, KEY:VALUE header).
	FamilySGML Family = 1
	// FamilyXML is the 2xx protocol family (XML body, <?OFX ...?> header).
	FamilyXML Family = 2
)

// String returns a human-readable family name.
func (f Family) String() string {
	switch f {
	case FamilySGML:
		return "SGML"
	case FamilyXML:
		return "XML"
	default:
		return "unknown"
	}
}

// Field names extracted from a profile response.
const (
	FieldFIName     = "FINAME"
	FieldAddr1      = "ADDR1"
	FieldAddr2      = "ADDR2"
	FieldAddr3      = "ADDR3"
	FieldCity       = "CITY"
	FieldState      = "STATE"
	FieldPostalCode = "POSTALCODE"
	FieldCountry    = "COUNTRY"
	FieldEmail      = "EMAIL"
	FieldOFXURL     = "OFXURL"
	FieldSPName     = "SPNAME"
)

// Signon holds the financial institution identifiers echoed in the
// sign-on response. Either value may be absent.
type Signon struct {
	Org *string `json:"org,omitempty"`
	FID *string `json:"fid,omitempty"`
}

// Profile is the decoded content of one OFX response.
// A Profile is built once by Decode and never modified afterwards.
type Profile struct {
	// Version is the integer protocol version from the header, e.g. 102.
	Version int `json:"version"`

	// Family is the wire format the document was written in.
	Family Family `json:"family"`

	// Headers holds the header block as a flat map with upper case keys.
	Headers map[string]string `json:"headers"`

	// Signon is nil when the response carried no sign-on response.
	Signon *Signon `json:"signon,omitempty"`

	// Fields holds the disclosed identity fields keyed by Field* names.
	Fields map[string]string `json:"fields"`

	// Capabilities is the namespace tree of disclosed capabilities.
	Capabilities *Tree `json:"capabilities"`

	raw string
}

// MajorVersion returns 1 for 1xx versions and 2 for 2xx versions.
func (p *Profile) MajorVersion() int {
	return p.Version / 100
}

// VersionString renders the version as dotted digits, e.g. 102 as "1.0.2".
func (p *Profile) VersionString() string {
	return DottedVersion(p.Version)
}

// Field returns the named identity field and whether it was disclosed.
func (p *Profile) Field(name string) (string, bool) {
	v, ok := p.Fields[name]
	return v, ok
}

// Raw returns the normalized document text the profile was decoded from.
func (p *Profile) Raw() string {
	return p.raw
}

// FindLiteralSpans returns every element in the document whose value
// equals pattern. See the package-level FindLiteralSpans.
func (p *Profile) FindLiteralSpans(pattern string, caseSensitive bool) []string {
	return FindLiteralSpans(p.raw, p.Family, pattern, caseSensitive)
}

// DottedVersion renders an integer version as its digits joined by dots.
func DottedVersion(version int) string {
	digits := strconv.Itoa(version)
	parts := make([]string, 0, len(digits))
	for _, d := range digits {
		parts = append(parts, string(d))
	}
	return strings.Join(parts, ".")
}
