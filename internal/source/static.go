package source

import (
	"sync"

	"github.com/randalmurphal/layerconf/internal/tree"
)

// Static serves in-memory trees. A nil tree is reported as absent.
type Static struct {
	name string

	mu   sync.RWMutex
	live *tree.Tree
	def  *tree.Tree
}

// NewStatic creates a provider over live and def.
func NewStatic(name string, live, def *tree.Tree) *Static {
	return &Static{name: name, live: live, def: def}
}

// Name returns the provider name.
func (s *Static) Name() string {
	return s.name
}

// Live returns the live tree.
func (s *Static) Live() (*tree.Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.live == nil {
		return nil, ErrAbsent
	}
	return s.live, nil
}

// Default returns the default tree.
func (s *Static) Default() (*tree.Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.def == nil {
		return nil, ErrAbsent
	}
	return s.def, nil
}

// SetLive replaces the live tree served by later calls.
func (s *Static) SetLive(t *tree.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = t
}

// SetDefault replaces the default tree served by later calls.
func (s *Static) SetDefault(t *tree.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.def = t
}
