// Package cli implements the layerconf command-line interface.
// This file contains shared helper functions used across multiple commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/layerconf/internal/report"
	"github.com/randalmurphal/layerconf/internal/source"
	"github.com/randalmurphal/layerconf/internal/store"
	"github.com/randalmurphal/layerconf/internal/tree"
)

// newProvider builds a file provider from the live and default flags.
func newProvider() (*source.File, error) {
	live := viper.GetString("live")
	if live == "" {
		return nil, fmt.Errorf("no live document configured (use --live)")
	}

	var defaults fs.FS
	defName := filepath.Base(live)
	if def := viper.GetString("default"); def != "" {
		defaults = os.DirFS(filepath.Dir(def))
		defName = filepath.Base(def)
	}
	return source.NewFileWithDefault(filepath.Dir(live), filepath.Base(live), defaults, defName), nil
}

// openStore creates a store over the configured documents. Reports go to
// stderr, or to the returned recorder in JSON mode. With load unset the
// store is never reloaded on creation, so no live file is created.
func openStore(cmd *cobra.Command, load bool) (*store.Store, *report.Recorder, error) {
	p, err := newProvider()
	if err != nil {
		return nil, nil, err
	}

	rec := &report.Recorder{}
	var sink report.Sink = report.NewConsole(cmd.ErrOrStderr(), "layerconf")
	if jsonOut {
		sink = rec
	}

	settings := loadSettings()
	settings.AutoLoadOnInit = load && settings.AutoLoadOnInit

	s, err := store.New(p, store.WithSettings(settings), store.WithSink(sink))
	if err != nil {
		return nil, nil, err
	}
	if load && s.State() == store.StateUninitialized {
		// auto_load off only defers loading; commands that read values
		// always need a snapshot
		if err := s.Reload(); err != nil {
			return nil, nil, err
		}
	}
	return s, rec, nil
}

// printJSON writes v as indented JSON.
func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printFlat writes one "path = value" line per option.
func printFlat(out io.Writer, flat *tree.FlatConfig) {
	flat.Range(func(path string, v tree.Leaf) bool {
		_, _ = fmt.Fprintf(out, "%s = %s\n", path, report.RenderValue(v))
		return true
	})
}

// printYAML writes the options nested back into sections. Paths that
// cannot be nested unambiguously fall back to flat output.
func printYAML(out io.Writer, flat *tree.FlatConfig) error {
	root, ok := nestYAML(flat)
	if !ok {
		printFlat(out, flat)
		return nil
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return enc.Close()
}

func nestYAML(flat *tree.FlatConfig) (*yaml.Node, bool) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	ok := true
	flat.Range(func(path string, v tree.Leaf) bool {
		ok = insertYAML(root, strings.Split(path, "."), v)
		return ok
	})
	return root, ok
}

func insertYAML(m *yaml.Node, segments []string, v tree.Leaf) bool {
	name := segments[0]
	var existing *yaml.Node
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == name {
			existing = m.Content[i+1]
			break
		}
	}

	if len(segments) == 1 {
		if existing != nil {
			return false
		}
		m.Content = append(m.Content, yamlKey(name), yamlLeaf(v))
		return true
	}

	if existing == nil {
		existing = &yaml.Node{Kind: yaml.MappingNode}
		m.Content = append(m.Content, yamlKey(name), existing)
	} else if existing.Kind != yaml.MappingNode {
		return false
	}
	return insertYAML(existing, segments[1:], v)
}

func yamlKey(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}

func yamlLeaf(v tree.Leaf) *yaml.Node {
	switch v.Kind() {
	case tree.KindFloat:
		f, _ := v.AsFloat()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(f)}
	case tree.KindList:
		items, _ := v.AsList()
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, item := range items {
			n.Content = append(n.Content, yamlLeaf(item))
		}
		return n
	}

	n := &yaml.Node{}
	if err := n.Encode(v.Interface()); err != nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}
	}
	return n
}

// yamlFloat renders f so it resolves back to !!float.
func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	default:
		return tree.Float(f).String()
	}
}
