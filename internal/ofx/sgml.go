package ofx

import "strings"

// sgmlBlock returns the text between the first <name> and the first
// following </name>. Repeated sibling blocks are not visited.
func sgmlBlock(text, name string) (string, bool) {
	open := "<" + name + ">"
	start := strings.Index(text, open)
	if start < 0 {
		return "", false
	}
	start += len(open)
	end := strings.Index(text[start:], "</"+name+">")
	if end < 0 {
		return "", false
	}
	return text[start : start+end], true
}

// sgmlBlockPath descends through nested blocks in order.
func sgmlBlockPath(text string, names ...string) (string, bool) {
	for _, name := range names {
		inner, ok := sgmlBlock(text, name)
		if !ok {
			return "", false
		}
		text = inner
	}
	return text, true
}

// sgmlSpan returns the value following the first <tag>, up to the next
// tag or line break. Empty values count as absent.
func sgmlSpan(text, tag string) (string, bool) {
	values := sgmlSpans(text, tag, 1)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// sgmlSpans returns up to limit non-empty values of tag in document
// order. A negative limit returns all of them.
func sgmlSpans(text, tag string, limit int) []string {
	open := "<" + tag + ">"
	var values []string
	for limit < 0 || len(values) < limit {
		i := strings.Index(text, open)
		if i < 0 {
			break
		}
		text = text[i+len(open):]
		end := strings.IndexAny(text, "<\n")
		if end < 0 {
			end = len(text)
		}
		if v := strings.TrimSpace(text[:end]); v != "" {
			values = append(values, v)
		}
	}
	return values
}
