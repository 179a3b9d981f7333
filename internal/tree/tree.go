// Package tree models configuration documents as trees of sections and
// leaves, and flattens them into ordered dotted-path maps.
//
// Paths join segment names with "." and do not escape dots inside a
// segment, so a key named "a.b" and a section "a" holding "b" produce the
// same path. Parsers are trusted to build trees; Validate catches the shapes
// they must never produce.
package tree

import (
	"fmt"
	"sort"
)

// Node is either a *Section or a Leaf.
type Node interface {
	isNode()
}

// Section is a named nesting level. Children keep insertion order.
type Section struct {
	names    []string
	children map[string]Node
}

func (*Section) isNode() {}

// NewSection creates an empty section.
func NewSection() *Section {
	return &Section{children: make(map[string]Node)}
}

// Set adds or replaces a child. A replaced child keeps its original
// position. Set returns the section so literals can be chained.
func (s *Section) Set(name string, n Node) *Section {
	if _, exists := s.children[name]; !exists {
		s.names = append(s.names, name)
	}
	s.children[name] = n
	return s
}

// Child returns the named child.
func (s *Section) Child(name string) (Node, bool) {
	if s == nil {
		return nil, false
	}
	n, ok := s.children[name]
	return n, ok
}

// Names returns child names in insertion order.
func (s *Section) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of direct children.
func (s *Section) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Tree is a configuration document. Trees share their sections with the
// caller and are not copied: once a section is handed to New, neither the
// caller nor holders of Root may modify it.
type Tree struct {
	root *Section
}

// New wraps root in a Tree. A nil root yields an empty tree.
func New(root *Section) *Tree {
	if root == nil {
		root = NewSection()
	}
	return &Tree{root: root}
}

// Root returns the top-level section. The section is shared with the tree
// and must be treated as read-only; use Flatten for an independent copy.
func (t *Tree) Root() *Section {
	if t == nil {
		return nil
	}
	return t.root
}

// LeafCount returns the number of leaves reachable from the root.
func (t *Tree) LeafCount() int {
	if t == nil {
		return 0
	}
	return countLeaves(t.root)
}

func countLeaves(s *Section) int {
	n := 0
	for _, name := range s.names {
		switch c := s.children[name].(type) {
		case *Section:
			n += countLeaves(c)
		case Leaf:
			n++
		}
	}
	return n
}

// InvalidError describes a node that is neither a section nor a valid
// leaf, such as a nested list.
type InvalidError struct {
	Path   string
	Reason string
}

func (e *InvalidError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Validate checks that every child is a section or a leaf, that names are
// non-empty, and that lists hold only scalars.
func (t *Tree) Validate() error {
	if t == nil {
		return nil
	}
	return validateSection(t.root, "")
}

func validateSection(s *Section, prefix string) error {
	if s == nil {
		return &InvalidError{Path: prefix, Reason: "nil section"}
	}
	for _, name := range s.names {
		path := JoinPath(prefix, name)
		if name == "" {
			return &InvalidError{Path: prefix, Reason: "empty key"}
		}
		switch c := s.children[name].(type) {
		case *Section:
			if err := validateSection(c, path); err != nil {
				return err
			}
		case Leaf:
			if err := validateLeaf(c, path); err != nil {
				return err
			}
		default:
			return &InvalidError{Path: path, Reason: "node is neither a section nor a leaf"}
		}
	}
	return nil
}

func validateLeaf(l Leaf, path string) error {
	if l.kind < KindNull || l.kind > KindList {
		return &InvalidError{Path: path, Reason: "unknown leaf kind"}
	}
	if l.kind != KindList {
		return nil
	}
	for _, item := range l.list {
		if item.kind == KindList {
			return &InvalidError{Path: path, Reason: "list holds a nested list"}
		}
	}
	return nil
}

// JoinPath appends name to a dotted prefix.
func JoinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// FromValue builds a node from decoded Go values. Maps become sections with
// children sorted by key, since Go maps carry no order.
func FromValue(v any) (Node, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return LeafOf(v)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := NewSection()
	for _, k := range keys {
		child, err := FromValue(m[k])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		s.Set(k, child)
	}
	return s, nil
}

// FromMap builds a tree from a decoded map. See FromValue for ordering.
func FromMap(m map[string]any) (*Tree, error) {
	if m == nil {
		return New(nil), nil
	}
	n, err := FromValue(m)
	if err != nil {
		return nil, err
	}
	return New(n.(*Section)), nil
}
