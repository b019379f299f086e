package ofx

import (
	"encoding/xml"
	"io"
	"strings"
)

// xmlNode is a generic element tree. Names are upper case so that path
// lookups are case-insensitive.
type xmlNode struct {
	name     string
	text     strings.Builder
	children []*xmlNode
}

func (n *xmlNode) child(name string) *xmlNode {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// value returns the trimmed character data of the element.
func (n *xmlNode) value() string {
	return strings.TrimSpace(n.text.String())
}

// parseXMLTree builds an element tree from text. Parsing is lenient: a
// syntax error ends the walk and whatever was read so far is returned.
func parseXMLTree(text string) *xmlNode {
	root := &xmlNode{}
	stack := []*xmlNode{root}

	d := xml.NewDecoder(strings.NewReader(text))
	d.Strict = false
	d.CharsetReader = passThroughCharset

	for {
		tok, err := d.Token()
		if err != nil {
			break
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: strings.ToUpper(t.Name.Local)}
			top.children = append(top.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			top.text.Write(t)
		}
	}
	return root
}

// passThroughCharset accepts any declared encoding. Text reaching the
// XML decoder has already been converted to UTF-8 by decodeCharset.
func passThroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}

// xmlLookup follows a colon separated path from n, taking the first
// matching child at each step.
func xmlLookup(n *xmlNode, path string) *xmlNode {
	for _, seg := range splitPath(path) {
		if n == nil {
			return nil
		}
		n = n.child(strings.ToUpper(seg))
	}
	return n
}

// xmlLookupAll is like xmlLookup but returns every sibling that matches
// the final path segment.
func xmlLookupAll(n *xmlNode, path string) []*xmlNode {
	parent, name := splitLast(path)
	p := xmlLookup(n, parent)
	if p == nil {
		return nil
	}
	name = strings.ToUpper(name)
	var nodes []*xmlNode
	for _, c := range p.children {
		if c.name == name {
			nodes = append(nodes, c)
		}
	}
	return nodes
}
