package ofx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	sgmlSignature = "OFXHEADER"
	xmlSignature  = "<?OFX OFXHEADER"
)

var (
	xmlHeaderPI   = regexp.MustCompile(`<\?OFX\s+([^?]*)\?>`)
	xmlHeaderAttr = regexp.MustCompile(`([A-Za-z]+)\s*=\s*"([^"]*)"`)
)

// Decode parses an OFX response body into a Profile.
//
// Decode fails only when the header cannot be recognized, the version
// is missing, or a boolean element is malformed. Everything else the
// server omits is simply absent from the Profile.
func Decode(raw string) (*Profile, error) {
	text := normalize(raw)

	switch {
	case strings.HasPrefix(text, sgmlSignature):
		return decodeSGML(text)
	case strings.Contains(text, xmlSignature):
		return decodeXML(text)
	default:
		return nil, fmt.Errorf("%w: neither %s nor %s found", ErrUnrecognizedHeader, sgmlSignature, xmlSignature)
	}
}

// normalize converts line endings to LF, decodes legacy charsets and
// folds typographic characters to ASCII.
func normalize(raw string) string {
	text := decodeCharset(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return ToASCII(text)
}

func decodeSGML(text string) (*Profile, error) {
	headers := parseSGMLHeader(text)
	version, err := parseVersion(headers["VERSION"])
	if err != nil {
		return nil, err
	}

	p := newProfile(FamilySGML, version, headers, text)

	if i := strings.Index(text, "<SONRS>"); i >= 0 {
		scope, ok := sgmlBlock(text, "SONRS")
		if !ok {
			scope = text[i:]
		}
		if fi, ok := sgmlBlock(scope, "FI"); ok {
			scope = fi
		}
		p.Signon = &Signon{Org: optional(sgmlSpan(scope, "ORG")), FID: optional(sgmlSpan(scope, "FID"))}
	}

	if profrs, ok := sgmlBlock(text, "PROFRS"); ok {
		if err := extract(p, sgmlSource{root: profrs}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func decodeXML(text string) (*Profile, error) {
	headers := map[string]string{}
	if m := xmlHeaderPI.FindStringSubmatch(text); m != nil {
		for _, attr := range xmlHeaderAttr.FindAllStringSubmatch(m[1], -1) {
			headers[strings.ToUpper(attr[1])] = attr[2]
		}
	}
	version, err := parseVersion(headers["VERSION"])
	if err != nil {
		return nil, err
	}

	p := newProfile(FamilyXML, version, headers, text)
	doc := parseXMLTree(text)

	if sonrs := xmlLookup(doc, "ofx:signonmsgsrsv1:sonrs"); sonrs != nil {
		p.Signon = &Signon{
			Org: optional(nodeText(xmlLookup(sonrs, "fi:org"))),
			FID: optional(nodeText(xmlLookup(sonrs, "fi:fid"))),
		}
	}

	if profrs := xmlLookup(doc, "ofx:profmsgsrsv1:proftrnrs:profrs"); profrs != nil {
		if err := extract(p, xmlSource{root: profrs}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func newProfile(family Family, version int, headers map[string]string, text string) *Profile {
	return &Profile{
		Version:      version,
		Family:       family,
		Headers:      headers,
		Fields:       map[string]string{},
		Capabilities: NewTree(),
		raw:          text,
	}
}

// parseSGMLHeader reads KEY:VALUE lines until a blank line or the first tag.
func parseSGMLHeader(text string) map[string]string {
	headers := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "<") {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			break
		}
		headers[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return headers
}

func parseVersion(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: VERSION header is empty", ErrMissingVersion)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: VERSION %q is not a number", ErrMissingVersion, s)
	}
	if major := v / 100; major != 1 && major != 2 {
		return 0, fmt.Errorf("%w: VERSION %d is not a 1xx or 2xx version", ErrMissingVersion, v)
	}
	return v, nil
}

// source reads extraction targets from one document family.
type source interface {
	present(t target) bool
	values(t target, limit int) []string
}

type sgmlSource struct {
	root string
}

func (s sgmlSource) present(t target) bool {
	_, ok := sgmlBlockPath(s.root, t.sgml...)
	return ok
}

func (s sgmlSource) values(t target, limit int) []string {
	last := len(t.sgml) - 1
	scope, ok := sgmlBlockPath(s.root, t.sgml[:last]...)
	if !ok {
		return nil
	}
	return sgmlSpans(scope, t.sgml[last], limit)
}

type xmlSource struct {
	root *xmlNode
}

func (s xmlSource) present(t target) bool {
	return xmlLookup(s.root, t.xml) != nil
}

func (s xmlSource) values(t target, limit int) []string {
	var values []string
	for _, n := range xmlLookupAll(s.root, t.xml) {
		if limit >= 0 && len(values) >= limit {
			break
		}
		if v := n.value(); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func nodeText(n *xmlNode) (string, bool) {
	if n == nil {
		return "", false
	}
	v := n.value()
	return v, v != ""
}

// extract fills the profile's fields and capabilities from src.
func extract(p *Profile, src source) error {
	for _, t := range fieldTargets {
		if v := src.values(t, 1); len(v) > 0 {
			p.Fields[t.dest] = v[0]
		}
	}

	caps := p.Capabilities
	for _, t := range capabilityTargets {
		top, _, _ := strings.Cut(t.dest, PathSeparator)
		if t.dest != top && !caps.Has(top) {
			continue
		}

		switch t.kind {
		case kindGroup:
			if src.present(t) {
				caps.ensureGroup(t.dest)
			}
		case kindPresent:
			if src.present(t) {
				caps.setLeaf(t.dest, Leaf{Kind: LeafBool, Bool: true})
			}
		case kindBool:
			v := src.values(t, 1)
			if len(v) == 0 {
				continue
			}
			b, err := parseBool(v[0])
			if err != nil {
				return fmt.Errorf("%s: %w", t.dest, err)
			}
			caps.setLeaf(t.dest, Leaf{Kind: LeafBool, Bool: b})
		case kindInt:
			v := src.values(t, 1)
			if len(v) == 0 {
				continue
			}
			n, err := strconv.Atoi(v[0])
			if err != nil {
				continue
			}
			caps.setLeaf(t.dest, Leaf{Kind: LeafInt, Int: n})
		case kindString:
			if v := src.values(t, 1); len(v) > 0 {
				caps.setLeaf(t.dest, Leaf{Kind: LeafString, Str: v[0]})
			}
		case kindStringList:
			if v := src.values(t, -1); len(v) > 0 {
				caps.setLeaf(t.dest, Leaf{Kind: LeafString, Str: strings.Join(v, ",")})
			}
		}
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "Y":
		return true, nil
	case "N":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBoolean, s)
	}
}

func optional(v string, ok bool) *string {
	if !ok {
		return nil
	}
	return &v
}
