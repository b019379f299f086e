package ofx

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PathSeparator separates the segments of a capability path such as
// "INVESTMENT:TRANSACTIONS".
const PathSeparator = ":"

// LeafKind is the type of value held by a Leaf.
type LeafKind int

const (
	// LeafBool is a Y/N flag.
	LeafBool LeafKind = iota + 1
	// LeafInt is an integer value.
	LeafInt
	// LeafString is free text.
	LeafString
)

// Leaf is a single disclosed capability value.
type Leaf struct {
	Kind LeafKind
	Bool bool
	Int  int
	Str  string
}

// String renders the leaf for display.
func (l Leaf) String() string {
	switch l.Kind {
	case LeafBool:
		if l.Bool {
			return "Yes"
		}
		return "No"
	case LeafInt:
		return strconv.Itoa(l.Int)
	default:
		return l.Str
	}
}

// Entry is one named child of a Tree: either a leaf or a nested group.
type Entry struct {
	Name  string
	Leaf  *Leaf
	Group *Tree
}

// Tree is a namespace of capability groups and leaves.
// Entries keep the order in which they were discovered.
type Tree struct {
	order  []string
	leaves map[string]Leaf
	groups map[string]*Tree
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		leaves: make(map[string]Leaf),
		groups: make(map[string]*Tree),
	}
}

// Len returns the number of direct entries.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Entries returns the direct children in discovery order.
func (t *Tree) Entries() []Entry {
	if t == nil {
		return nil
	}
	entries := make([]Entry, 0, len(t.order))
	for _, name := range t.order {
		if g, ok := t.groups[name]; ok {
			entries = append(entries, Entry{Name: name, Group: g})
			continue
		}
		leaf := t.leaves[name]
		entries = append(entries, Entry{Name: name, Leaf: &leaf})
	}
	return entries
}

// Group returns the group at path.
func (t *Tree) Group(path string) (*Tree, bool) {
	node := t
	for _, seg := range splitPath(path) {
		if node == nil {
			return nil, false
		}
		next, ok := node.groups[seg]
		if !ok {
			return nil, false
		}
		node = next
	}
	return node, node != nil
}

// Has reports whether a group or leaf exists at path.
func (t *Tree) Has(path string) bool {
	if _, ok := t.Group(path); ok {
		return true
	}
	_, ok := t.Leaf(path)
	return ok
}

// Leaf returns the leaf at path.
func (t *Tree) Leaf(path string) (Leaf, bool) {
	parent, name := splitLast(path)
	g, ok := t.Group(parent)
	if !ok {
		return Leaf{}, false
	}
	leaf, ok := g.leaves[name]
	return leaf, ok
}

// Bool returns the boolean leaf at path.
func (t *Tree) Bool(path string) (value bool, ok bool) {
	leaf, ok := t.Leaf(path)
	if !ok || leaf.Kind != LeafBool {
		return false, false
	}
	return leaf.Bool, true
}

// Int returns the integer leaf at path.
func (t *Tree) Int(path string) (value int, ok bool) {
	leaf, ok := t.Leaf(path)
	if !ok || leaf.Kind != LeafInt {
		return 0, false
	}
	return leaf.Int, true
}

// String returns the string leaf at path.
func (t *Tree) String(path string) (value string, ok bool) {
	leaf, ok := t.Leaf(path)
	if !ok || leaf.Kind != LeafString {
		return "", false
	}
	return leaf.Str, true
}

// ensureGroup creates every group along path and returns the last one.
func (t *Tree) ensureGroup(path string) *Tree {
	node := t
	for _, seg := range splitPath(path) {
		next, ok := node.groups[seg]
		if !ok {
			next = NewTree()
			node.groups[seg] = next
			node.order = append(node.order, seg)
		}
		node = next
	}
	return node
}

// setLeaf stores a leaf. The top-level group of path must already exist;
// intermediate groups below it are created as needed.
func (t *Tree) setLeaf(path string, leaf Leaf) bool {
	segs := splitPath(path)
	if len(segs) < 2 {
		return false
	}
	if _, ok := t.groups[segs[0]]; !ok {
		return false
	}
	parent := t.ensureGroup(strings.Join(segs[:len(segs)-1], PathSeparator))
	name := segs[len(segs)-1]
	if _, exists := parent.leaves[name]; !exists {
		parent.order = append(parent.order, name)
	}
	parent.leaves[name] = leaf
	return true
}

// MarshalJSON renders the tree as nested objects.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toMap())
}

func (t *Tree) toMap() map[string]any {
	m := make(map[string]any, t.Len())
	for _, e := range t.Entries() {
		if e.Group != nil {
			m[e.Name] = e.Group.toMap()
			continue
		}
		switch e.Leaf.Kind {
		case LeafBool:
			m[e.Name] = e.Leaf.Bool
		case LeafInt:
			m[e.Name] = e.Leaf.Int
		default:
			m[e.Name] = e.Leaf.Str
		}
	}
	return m
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

func splitLast(path string) (parent, name string) {
	i := strings.LastIndex(path, PathSeparator)
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}
