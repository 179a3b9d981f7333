// Package source reads configuration documents into trees and provides the
// live and default trees a store resolves.
package source

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	lcerrors "github.com/randalmurphal/layerconf/internal/errors"
	"github.com/randalmurphal/layerconf/internal/tree"
)

// Format is a supported document syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatTOML
)

var formatNames = map[Format]string{
	FormatYAML: "yaml",
	FormatJSON: "json",
	FormatTOML: "toml",
}

// String returns the format name.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// FormatFor picks a format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, lcerrors.ErrUnsupportedFormat(path)
	}
}

// Parse decodes data using the format implied by path.
func Parse(path string, data []byte) (*tree.Tree, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return ParseFormat(format, data)
}

// ParseFormat decodes data in the given format.
func ParseFormat(format Format, data []byte) (*tree.Tree, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(data)
	case FormatJSON:
		return ParseJSON(data)
	case FormatTOML:
		return ParseTOML(data)
	default:
		return nil, fmt.Errorf("unknown format %d", format)
	}
}

// ParseYAML decodes a YAML document. Mapping order is preserved, aliases
// are followed, and merge keys are applied without overriding explicit keys.
// An empty document yields an empty tree.
func ParseYAML(data []byte) (*tree.Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return tree.New(nil), nil
	}

	root := deref(doc.Content[0])
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return tree.New(nil), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &tree.InvalidError{Reason: "document root is not a mapping"}
	}

	s, err := yamlSection(root, "")
	if err != nil {
		return nil, err
	}
	return tree.New(s), nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func yamlSection(n *yaml.Node, prefix string) (*tree.Section, error) {
	s := tree.NewSection()
	explicit := make(map[string]bool)

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, &tree.InvalidError{Path: prefix, Reason: fmt.Sprintf("line %d: key is not a scalar", k.Line)}
		}

		if k.ShortTag() == "!!merge" {
			if err := yamlMerge(s, explicit, deref(v), prefix); err != nil {
				return nil, err
			}
			continue
		}

		path := tree.JoinPath(prefix, k.Value)
		child, err := yamlNode(v, path)
		if err != nil {
			return nil, err
		}
		s.Set(k.Value, child)
		explicit[k.Value] = true
	}
	return s, nil
}

// yamlMerge copies keys from a merged mapping, or a sequence of them, into s
// unless s already holds them explicitly.
func yamlMerge(s *tree.Section, explicit map[string]bool, v *yaml.Node, prefix string) error {
	var sources []*yaml.Node
	switch v.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{v}
	case yaml.SequenceNode:
		for _, item := range v.Content {
			sources = append(sources, deref(item))
		}
	default:
		return &tree.InvalidError{Path: prefix, Reason: fmt.Sprintf("line %d: merge value is not a mapping", v.Line)}
	}

	for _, src := range sources {
		if src.Kind != yaml.MappingNode {
			return &tree.InvalidError{Path: prefix, Reason: fmt.Sprintf("line %d: merge value is not a mapping", src.Line)}
		}
		merged, err := yamlSection(src, prefix)
		if err != nil {
			return err
		}
		for _, name := range merged.Names() {
			if explicit[name] {
				continue
			}
			if _, seen := s.Child(name); seen {
				// earlier merge sources win
				continue
			}
			child, _ := merged.Child(name)
			s.Set(name, child)
		}
	}
	return nil
}

func yamlNode(v *yaml.Node, path string) (tree.Node, error) {
	v = deref(v)
	switch v.Kind {
	case yaml.MappingNode:
		return yamlSection(v, path)
	case yaml.SequenceNode:
		items := make([]tree.Leaf, 0, len(v.Content))
		for _, item := range v.Content {
			item = deref(item)
			if item.Kind != yaml.ScalarNode {
				return nil, &tree.InvalidError{Path: path, Reason: fmt.Sprintf("line %d: list holds a non-scalar item", item.Line)}
			}
			leaf, err := yamlScalar(item, path)
			if err != nil {
				return nil, err
			}
			items = append(items, leaf)
		}
		return tree.List(items...), nil
	case yaml.ScalarNode:
		return yamlScalar(v, path)
	default:
		return nil, &tree.InvalidError{Path: path, Reason: fmt.Sprintf("line %d: unsupported node", v.Line)}
	}
}

func yamlScalar(v *yaml.Node, path string) (tree.Leaf, error) {
	var x any
	if err := v.Decode(&x); err != nil {
		return tree.Leaf{}, &tree.InvalidError{Path: path, Reason: err.Error()}
	}
	leaf, err := tree.LeafOf(x)
	if err != nil {
		return tree.Leaf{}, &tree.InvalidError{Path: path, Reason: err.Error()}
	}
	return leaf, nil
}

// ParseJSON decodes a JSON object, preserving member order. Numbers without
// a fraction or exponent become integers. Empty input yields an empty tree.
func ParseJSON(data []byte) (*tree.Tree, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return tree.New(nil), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse json: invalid document")
	}

	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return tree.New(nil), nil
	}
	if !res.IsObject() {
		return nil, &tree.InvalidError{Reason: "document root is not an object"}
	}

	s, err := jsonSection(res, "")
	if err != nil {
		return nil, err
	}
	return tree.New(s), nil
}

func jsonSection(obj gjson.Result, prefix string) (*tree.Section, error) {
	s := tree.NewSection()
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		path := tree.JoinPath(prefix, name)

		var child tree.Node
		if value.IsObject() {
			child, err = jsonSection(value, path)
		} else {
			child, err = jsonLeaf(value, path)
		}
		if err != nil {
			return false
		}
		s.Set(name, child)
		return true
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func jsonLeaf(v gjson.Result, path string) (tree.Leaf, error) {
	switch v.Type {
	case gjson.Null:
		return tree.Null(), nil
	case gjson.True, gjson.False:
		return tree.Bool(v.Bool()), nil
	case gjson.String:
		return tree.String(v.String()), nil
	case gjson.Number:
		return jsonNumber(v), nil
	}

	if !v.IsArray() {
		return tree.Leaf{}, &tree.InvalidError{Path: path, Reason: "unsupported value"}
	}
	var items []tree.Leaf
	var err error
	v.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() || item.IsArray() {
			err = &tree.InvalidError{Path: path, Reason: "list holds a non-scalar item"}
			return false
		}
		var leaf tree.Leaf
		leaf, err = jsonLeaf(item, path)
		if err != nil {
			return false
		}
		items = append(items, leaf)
		return true
	})
	if err != nil {
		return tree.Leaf{}, err
	}
	return tree.List(items...), nil
}

func jsonNumber(v gjson.Result) tree.Leaf {
	if !strings.ContainsAny(v.Raw, ".eE") {
		if i, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return tree.Int(i)
		}
	}
	return tree.Float(v.Float())
}

// ParseTOML decodes a TOML document in key order. Arrays of tables have no
// tree representation and are rejected.
func ParseTOML(data []byte) (*tree.Tree, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}

	root := tree.NewSection()
	for _, key := range md.Keys() {
		if err := tomlPlace(root, raw, key); err != nil {
			return nil, err
		}
	}
	// values Keys does not list are added in sorted order
	if err := tomlFill(root, raw, ""); err != nil {
		return nil, err
	}
	return tree.New(root), nil
}

func tomlPlace(root *tree.Section, raw map[string]any, key toml.Key) error {
	value, ok := tomlLookup(raw, key)
	if !ok {
		return nil
	}
	path := strings.Join(key, ".")

	parent, err := tomlEnsure(root, key[:len(key)-1], path)
	if err != nil {
		return err
	}
	name := key[len(key)-1]

	if _, isMap := value.(map[string]any); isMap {
		if existing, ok := parent.Child(name); ok {
			if _, isSection := existing.(*tree.Section); isSection {
				return nil
			}
		}
		parent.Set(name, tree.NewSection())
		return nil
	}

	leaf, err := tomlLeaf(value, path)
	if err != nil {
		return err
	}
	parent.Set(name, leaf)
	return nil
}

func tomlLookup(raw map[string]any, key toml.Key) (any, bool) {
	var cur any = raw
	for _, seg := range key {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func tomlEnsure(root *tree.Section, segments []string, path string) (*tree.Section, error) {
	s := root
	for _, seg := range segments {
		child, ok := s.Child(seg)
		if !ok {
			next := tree.NewSection()
			s.Set(seg, next)
			s = next
			continue
		}
		next, isSection := child.(*tree.Section)
		if !isSection {
			return nil, &tree.InvalidError{Path: path, Reason: "key is both a value and a table"}
		}
		s = next
	}
	return s, nil
}

func tomlFill(s *tree.Section, raw map[string]any, prefix string) error {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := tree.JoinPath(prefix, name)
		sub, isMap := raw[name].(map[string]any)
		existing, ok := s.Child(name)

		switch {
		case ok && isMap:
			sec, isSection := existing.(*tree.Section)
			if !isSection {
				return &tree.InvalidError{Path: path, Reason: "key is both a value and a table"}
			}
			if err := tomlFill(sec, sub, path); err != nil {
				return err
			}
		case ok:
		case isMap:
			sec := tree.NewSection()
			if err := tomlFill(sec, sub, path); err != nil {
				return err
			}
			s.Set(name, sec)
		default:
			leaf, err := tomlLeaf(raw[name], path)
			if err != nil {
				return err
			}
			s.Set(name, leaf)
		}
	}
	return nil
}

func tomlLeaf(value any, path string) (tree.Leaf, error) {
	switch v := value.(type) {
	case []map[string]any:
		return tree.Leaf{}, &tree.InvalidError{Path: path, Reason: "array of tables is not supported"}
	case []any:
		items := make([]tree.Leaf, 0, len(v))
		for _, item := range v {
			leaf, err := tomlLeaf(item, path)
			if err != nil {
				return tree.Leaf{}, err
			}
			if leaf.Kind() == tree.KindList {
				return tree.Leaf{}, &tree.InvalidError{Path: path, Reason: "list holds a nested list"}
			}
			items = append(items, leaf)
		}
		return tree.List(items...), nil
	case map[string]any:
		return tree.Leaf{}, &tree.InvalidError{Path: path, Reason: "list holds a table"}
	}

	leaf, err := tree.LeafOf(value)
	if err != nil {
		return tree.Leaf{}, &tree.InvalidError{Path: path, Reason: err.Error()}
	}
	return leaf, nil
}
