// Package diff computes divergence between configuration trees: options a
// reference tree defines that another tree lacks.
package diff

import (
	"github.com/randalmurphal/layerconf/internal/tree"
)

// OneSided returns every leaf path of reference that other lacks, in
// reference's flattening order. A nil reference yields no entries.
func OneSided(reference, other *tree.Tree) []tree.Entry {
	return OneSidedFlat(tree.Flatten(reference), tree.Flatten(other))
}

// OneSidedFlat is OneSided over already flattened trees.
func OneSidedFlat(reference, other *tree.FlatConfig) []tree.Entry {
	var out []tree.Entry
	reference.Range(func(path string, v tree.Leaf) bool {
		if !other.Has(path) {
			out = append(out, tree.Entry{Path: path, Value: v})
		}
		return true
	})
	return out
}

// Missing returns the options the default tree defines that live lacks.
func Missing(def, live *tree.Tree) []tree.Entry {
	return OneSided(def, live)
}

// Redundant returns the options live defines that the default tree lacks.
func Redundant(live, def *tree.Tree) []tree.Entry {
	return OneSided(live, def)
}

// Stats contains summary counts for a comparison.
type Stats struct {
	Missing   int `json:"missing"`
	Redundant int `json:"redundant"`
}

// Compare counts missing and redundant options in one pass over both trees.
func Compare(def, live *tree.Tree) Stats {
	defFlat, liveFlat := tree.Flatten(def), tree.Flatten(live)
	return Stats{
		Missing:   len(OneSidedFlat(defFlat, liveFlat)),
		Redundant: len(OneSidedFlat(liveFlat, defFlat)),
	}
}

// InSync reports whether neither tree has options the other lacks.
func (s Stats) InSync() bool {
	return s.Missing == 0 && s.Redundant == 0
}
