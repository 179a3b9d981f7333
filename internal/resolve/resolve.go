// Package resolve merges a live configuration tree with an optional default
// tree into the effective flattened configuration.
package resolve

import "github.com/randalmurphal/layerconf/internal/tree"

// Resolve returns the effective configuration.
//
// Without a default tree, or with includeDefaults off, the result is
// Flatten(live) unchanged. Otherwise the keyspace is exactly the default
// tree's: each default path takes the live value when live has that path and
// the default value when it does not, and paths only live holds are dropped.
// Ordering follows whichever tree defines the keyspace.
func Resolve(live, def *tree.Tree, includeDefaults bool) *tree.FlatConfig {
	liveFlat := tree.Flatten(live)
	if def == nil || !includeDefaults {
		return liveFlat
	}
	return Backfill(liveFlat, tree.Flatten(def))
}

// Backfill applies the default-keyspace rule to already flattened inputs.
func Backfill(live, def *tree.FlatConfig) *tree.FlatConfig {
	out := tree.NewFlat()
	def.Range(func(path string, defVal tree.Leaf) bool {
		if liveVal, ok := live.Get(path); ok {
			out.Put(path, liveVal)
		} else {
			out.Put(path, defVal)
		}
		return true
	})
	return out
}
