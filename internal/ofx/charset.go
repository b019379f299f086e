package ofx

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

var (
	xmlEncodingDecl   = regexp.MustCompile(`<\?xml[^>]*encoding\s*=\s*["']([^"']+)["']`)
	sgmlCharsetHeader = regexp.MustCompile(`(?m)^CHARSET:\s*(\S+)`)
)

// asciiFolder replaces Windows-1252 typographic characters with plain
// ASCII equivalents.
var asciiFolder = strings.NewReplacer(
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2013", "-",
	"\u2014", "-",
	"\u00a0", "",
)

// ToASCII folds curly quotes, dashes and non-breaking spaces to ASCII.
func ToASCII(s string) string {
	return asciiFolder.Replace(s)
}

// decodeCharset converts text that is not valid UTF-8 using the charset
// declared in its header, defaulting to Windows-1252.
func decodeCharset(raw string) string {
	if utf8.ValidString(raw) {
		return raw
	}
	enc := declaredEncoding(raw)
	if enc == nil {
		enc = charmap.Windows1252
	}
	out, err := enc.NewDecoder().String(raw)
	if err != nil {
		return raw
	}
	return out
}

func declaredEncoding(raw string) encoding.Encoding {
	var label string
	if m := xmlEncodingDecl.FindStringSubmatch(raw); m != nil {
		label = m[1]
	} else if m := sgmlCharsetHeader.FindStringSubmatch(raw); m != nil {
		label = m[1]
	}

	switch strings.ToUpper(label) {
	case "", "NONE", "USASCII", "UTF-8":
		return nil
	case "1252":
		return charmap.Windows1252
	case "8859-1", "ISO-8859-1":
		return charmap.ISO8859_1
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil
	}
	return enc
}
