// Package treetest provides generators and builders for tests that need
// configuration trees.
package treetest

import (
	"pgregory.net/rapid"

	"github.com/randalmurphal/layerconf/internal/tree"
)

// Names are drawn from a small alphabet so that independently generated
// trees share paths often enough to exercise precedence and diffing.
var nameGen = rapid.StringMatching(`[a-d]{1,2}`)

// Leaf draws a scalar or list leaf.
func Leaf(t *rapid.T, label string) tree.Leaf {
	switch rapid.IntRange(0, 5).Draw(t, label+"-kind") {
	case 0:
		return tree.String(rapid.StringMatching(`[a-z ]{0,6}`).Draw(t, label+"-str"))
	case 1:
		return tree.Int(rapid.Int64Range(-1000, 1000).Draw(t, label+"-int"))
	case 2:
		return tree.Float(rapid.Float64Range(-10, 10).Draw(t, label+"-float"))
	case 3:
		return tree.Bool(rapid.Bool().Draw(t, label+"-bool"))
	case 4:
		n := rapid.IntRange(0, 3).Draw(t, label+"-len")
		items := make([]tree.Leaf, n)
		for i := range items {
			items[i] = tree.Int(int64(rapid.IntRange(0, 9).Draw(t, label+"-item")))
		}
		return tree.List(items...)
	default:
		return tree.Null()
	}
}

// Tree draws a tree up to depth levels deep.
func Tree(t *rapid.T, label string, depth int) *tree.Tree {
	return tree.New(section(t, label, depth))
}

func section(t *rapid.T, label string, depth int) *tree.Section {
	s := tree.NewSection()
	n := rapid.IntRange(0, 4).Draw(t, label+"-children")
	for i := 0; i < n; i++ {
		name := nameGen.Draw(t, label+"-name")
		if depth > 0 && rapid.Bool().Draw(t, label+"-nest") {
			s.Set(name, section(t, label+"."+name, depth-1))
			continue
		}
		s.Set(name, Leaf(t, label+"."+name))
	}
	return s
}

// MustMap builds a tree from a nested map literal and panics on error.
// Section children are sorted by key.
func MustMap(m map[string]any) *tree.Tree {
	t, err := tree.FromMap(m)
	if err != nil {
		panic(err)
	}
	return t
}
