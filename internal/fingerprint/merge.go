package fingerprint

import (
	"slices"

	"github.com/nao1215/ofxpostern/internal/model"
)

// HeaderRule describes how a response header feeds an identity field.
type HeaderRule struct {
	// Header is the response header to read.
	Header string

	// Exclude lists values that carry no information and are ignored.
	Exclude []string

	// NoOverwrite lists generic values that may fill an empty field but
	// never replace a value that is already known.
	NoOverwrite []string
}

// merge applies the header precedence rule to current and returns the
// new field value.
//
// A missing or excluded header, or one equal to current, changes
// nothing. An empty field takes any value. A set field is replaced
// unless the incoming value is one of the generic NoOverwrite values.
func (r HeaderRule) merge(current string, rec model.ProbeRecord) string {
	val, ok := rec.Header(r.Header)
	if !ok || slices.Contains(r.Exclude, val) {
		return current
	}
	if val == current {
		return current
	}
	if current == "" {
		return val
	}
	if slices.Contains(r.NoOverwrite, val) {
		return current
	}
	return val
}
