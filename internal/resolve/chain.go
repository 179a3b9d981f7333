package resolve

import "github.com/randalmurphal/layerconf/internal/tree"

// Layer identifies one of the two configuration trees.
// Higher layers override lower layers.
type Layer int

const (
	// LayerDefault is the shipped baseline (lowest priority).
	LayerDefault Layer = iota
	// LayerLive is the user-editable configuration (highest priority).
	LayerLive
)

// String returns the layer name.
func (l Layer) String() string {
	return layerNames[l]
}

var layerNames = map[Layer]string{
	LayerDefault: "default",
	LayerLive:    "live",
}

// MarshalText implements encoding.TextMarshaler.
func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ChainEntry represents one layer in the resolution chain for a path.
type ChainEntry struct {
	Layer     Layer     `json:"layer"`
	Value     tree.Leaf `json:"value"`      // Value at this layer (null if not set)
	IsSet     bool      `json:"is_set"`     // Whether this layer has the path
	IsWinning bool      `json:"is_winning"` // Whether this is the effective value
}

// Chain shows every layer's value for one path and which one wins.
type Chain struct {
	Path string `json:"path"`
	// Effective reports whether the path has an effective value at all. It is
	// false when no layer sets it, and when only live sets it while defaults
	// define the keyspace.
	Effective  bool         `json:"effective"`
	FinalValue tree.Leaf    `json:"final_value"`
	Winner     Layer        `json:"winner"`
	Entries    []ChainEntry `json:"entries"`
}

// Explain builds the resolution chain for path using the same rules as
// Resolve. The default entry is omitted when def is nil.
func Explain(path string, live, def *tree.Tree, includeDefaults bool) Chain {
	chain := Chain{Path: path, Entries: make([]ChainEntry, 0, 2)}

	defIdx := -1
	if def != nil {
		v, ok := tree.Flatten(def).Get(path)
		chain.Entries = append(chain.Entries, ChainEntry{Layer: LayerDefault, Value: v, IsSet: ok})
		defIdx = len(chain.Entries) - 1
	}

	lv, liveSet := tree.Flatten(live).Get(path)
	chain.Entries = append(chain.Entries, ChainEntry{Layer: LayerLive, Value: lv, IsSet: liveSet})
	liveIdx := len(chain.Entries) - 1

	backfill := def != nil && includeDefaults
	switch {
	case backfill && !chain.Entries[defIdx].IsSet:
		// Default keyspace is authoritative; a live-only path is dropped.
	case liveSet:
		chain.Entries[liveIdx].IsWinning = true
		chain.Effective = true
		chain.FinalValue = lv
		chain.Winner = LayerLive
	case backfill:
		chain.Entries[defIdx].IsWinning = true
		chain.Effective = true
		chain.FinalValue = chain.Entries[defIdx].Value
		chain.Winner = LayerDefault
	}

	return chain
}
