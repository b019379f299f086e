package ofx

import (
	"regexp"
	"strings"
)

// FindLiteralSpans returns every element in raw whose value equals
// pattern, as the matched text (for example "<BALANCE>null"). Matching
// ignores case unless caseSensitive is set. It returns an empty slice
// when nothing matches.
//
// For the SGML family a match is a start tag followed by the value and
// then a tag, a line break or the end of the text. For the XML family the
// value must be enclosed by a start and end tag with the same name.
func FindLiteralSpans(raw string, family Family, pattern string, caseSensitive bool) []string {
	flags := "(?i)"
	if caseSensitive {
		flags = ""
	}
	quoted := regexp.QuoteMeta(pattern)
	spans := []string{}

	if family == FamilyXML {
		re := regexp.MustCompile(flags + `<([\w.+]+)>` + quoted + `</([\w.+]+)>`)
		for _, m := range re.FindAllStringSubmatch(raw, -1) {
			if m[1] == m[2] || (!caseSensitive && strings.EqualFold(m[1], m[2])) {
				spans = append(spans, m[0])
			}
		}
		return spans
	}

	re := regexp.MustCompile(flags + `<[\w.+]+>` + quoted)
	for _, loc := range re.FindAllStringIndex(raw, -1) {
		end := loc[1]
		if end == len(raw) || strings.IndexByte("<\n\r \t", raw[end]) >= 0 {
			spans = append(spans, raw[loc[0]:end])
		}
	}
	return spans
}
