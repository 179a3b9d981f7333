package tree

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Entry is one dotted path and its leaf value.
type Entry struct {
	Path  string `json:"path"`
	Value Leaf   `json:"value"`
}

// FlatConfig maps dotted paths to leaf values and remembers insertion
// order. A nil *FlatConfig behaves as an empty map for reads.
type FlatConfig struct {
	keys   []string
	values map[string]Leaf
}

// NewFlat creates an empty FlatConfig.
func NewFlat() *FlatConfig {
	return &FlatConfig{values: make(map[string]Leaf)}
}

// Put stores value at path. Re-putting an existing path replaces the value
// but keeps its original position.
func (f *FlatConfig) Put(path string, value Leaf) {
	if _, exists := f.values[path]; !exists {
		f.keys = append(f.keys, path)
	}
	f.values[path] = value
}

// Get returns the value at path.
func (f *FlatConfig) Get(path string) (Leaf, bool) {
	if f == nil {
		return Leaf{}, false
	}
	v, ok := f.values[path]
	return v, ok
}

// Has reports whether path is present.
func (f *FlatConfig) Has(path string) bool {
	_, ok := f.Get(path)
	return ok
}

// Len returns the number of paths.
func (f *FlatConfig) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Keys returns the paths in insertion order.
func (f *FlatConfig) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Entries returns path/value pairs in insertion order.
func (f *FlatConfig) Entries() []Entry {
	if f == nil {
		return nil
	}
	out := make([]Entry, len(f.keys))
	for i, k := range f.keys {
		out[i] = Entry{Path: k, Value: f.values[k]}
	}
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (f *FlatConfig) Range(fn func(path string, value Leaf) bool) {
	if f == nil {
		return
	}
	for _, k := range f.keys {
		if !fn(k, f.values[k]) {
			return
		}
	}
}

// Clone returns an independent copy.
func (f *FlatConfig) Clone() *FlatConfig {
	out := NewFlat()
	f.Range(func(path string, value Leaf) bool {
		out.Put(path, value)
		return true
	})
	return out
}

// Match returns the entries whose path matches a glob pattern, keeping
// order. Segments are separated by "." in both pattern and path: "*" matches
// within one segment and "**" across segments, so "db.**" selects every
// option under the db section.
func (f *FlatConfig) Match(pattern string) (*FlatConfig, error) {
	glob := toSlashes(pattern)
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	out := NewFlat()
	var matchErr error
	f.Range(func(path string, value Leaf) bool {
		ok, err := doublestar.Match(glob, toSlashes(path))
		if err != nil {
			matchErr = fmt.Errorf("match %q: %w", pattern, err)
			return false
		}
		if ok {
			out.Put(path, value)
		}
		return true
	})
	if matchErr != nil {
		return nil, matchErr
	}
	return out, nil
}

func toSlashes(path string) string {
	return strings.ReplaceAll(path, ".", "/")
}

// Flatten walks t depth-first, pre-order, and emits one entry per leaf.
// Sections are never emitted. A nil tree flattens to an empty map.
func Flatten(t *Tree) *FlatConfig {
	flat := NewFlat()
	if t == nil {
		return flat
	}
	flattenSection(t.root, "", flat)
	return flat
}

func flattenSection(s *Section, prefix string, flat *FlatConfig) {
	if s == nil {
		return
	}
	for _, name := range s.names {
		path := JoinPath(prefix, name)
		switch n := s.children[name].(type) {
		case *Section:
			flattenSection(n, path, flat)
		case Leaf:
			flat.Put(path, n)
		}
	}
}
