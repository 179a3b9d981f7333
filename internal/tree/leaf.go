package tree

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Leaf holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
)

var kindNames = map[Kind]string{
	KindNull:   "null",
	KindString: "string",
	KindInt:    "int",
	KindFloat:  "float",
	KindBool:   "bool",
	KindList:   "list",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Leaf is a terminal value in a configuration tree. The zero Leaf is null.
type Leaf struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	list []Leaf
}

func (Leaf) isNode() {}

// String returns a string leaf.
func String(s string) Leaf { return Leaf{kind: KindString, s: s} }

// Int returns an integer leaf.
func Int(i int64) Leaf { return Leaf{kind: KindInt, i: i} }

// Float returns a floating point leaf.
func Float(f float64) Leaf { return Leaf{kind: KindFloat, f: f} }

// Bool returns a boolean leaf.
func Bool(b bool) Leaf { return Leaf{kind: KindBool, b: b} }

// Null returns a null leaf.
func Null() Leaf { return Leaf{} }

// List returns a list leaf. Items are expected to be scalars; Validate
// reports nested lists as malformed.
func List(items ...Leaf) Leaf {
	cp := make([]Leaf, len(items))
	copy(cp, items)
	return Leaf{kind: KindList, list: cp}
}

// Kind returns the variant held by the leaf.
func (l Leaf) Kind() Kind { return l.kind }

// IsNull reports whether the leaf is null.
func (l Leaf) IsNull() bool { return l.kind == KindNull }

// AsString returns the string value if the leaf is a string.
func (l Leaf) AsString() (string, bool) { return l.s, l.kind == KindString }

// AsInt returns the integer value if the leaf is an integer.
func (l Leaf) AsInt() (int64, bool) { return l.i, l.kind == KindInt }

// AsFloat returns the numeric value if the leaf is a float or an integer.
func (l Leaf) AsFloat() (float64, bool) {
	switch l.kind {
	case KindFloat:
		return l.f, true
	case KindInt:
		return float64(l.i), true
	default:
		return 0, false
	}
}

// AsBool returns the boolean value if the leaf is a boolean.
func (l Leaf) AsBool() (bool, bool) { return l.b, l.kind == KindBool }

// AsList returns a copy of the items if the leaf is a list.
func (l Leaf) AsList() ([]Leaf, bool) {
	if l.kind != KindList {
		return nil, false
	}
	cp := make([]Leaf, len(l.list))
	copy(cp, l.list)
	return cp, true
}

// Interface returns the leaf as a plain Go value (string, int64, float64,
// bool, []any or nil), suitable for encoding.
func (l Leaf) Interface() any {
	switch l.kind {
	case KindString:
		return l.s
	case KindInt:
		return l.i
	case KindFloat:
		return l.f
	case KindBool:
		return l.b
	case KindList:
		out := make([]any, len(l.list))
		for i, item := range l.list {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes the leaf as its plain Go value. NaN and infinities
// have no JSON number form and encode as their String rendering.
func (l Leaf) MarshalJSON() ([]byte, error) {
	switch l.kind {
	case KindFloat:
		if math.IsNaN(l.f) || math.IsInf(l.f, 0) {
			return json.Marshal(l.String())
		}
	case KindList:
		items := l.list
		if items == nil {
			items = []Leaf{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(l.Interface())
}

// String renders the leaf in its natural textual form. Strings are not
// quoted, lists render as "[a, b]" and integral floats keep a ".0".
func (l Leaf) String() string {
	switch l.kind {
	case KindString:
		return l.s
	case KindInt:
		return strconv.FormatInt(l.i, 10)
	case KindFloat:
		return formatFloat(l.f)
	case KindBool:
		return strconv.FormatBool(l.b)
	case KindList:
		parts := make([]string, len(l.list))
		for i, item := range l.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "null"
	}
}

// formatFloat keeps a fractional part on integral values so 2.0 does not
// read back as the integer 2.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

// Equal reports whether two leaves hold the same variant and value.
func (l Leaf) Equal(o Leaf) bool {
	if l.kind != o.kind {
		return false
	}
	switch l.kind {
	case KindString:
		return l.s == o.s
	case KindInt:
		return l.i == o.i
	case KindFloat:
		return l.f == o.f || (math.IsNaN(l.f) && math.IsNaN(o.f))
	case KindBool:
		return l.b == o.b
	case KindList:
		if len(l.list) != len(o.list) {
			return false
		}
		for i := range l.list {
			if !l.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// LeafOf converts a decoded scalar or slice of scalars into a Leaf.
// Timestamps become RFC 3339 strings. Maps and nested slices are rejected.
func LeafOf(v any) (Leaf, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case time.Time:
		return String(x.Format(time.RFC3339Nano)), nil
	case []any:
		items := make([]Leaf, 0, len(x))
		for i, item := range x {
			switch item.(type) {
			case []any, map[string]any:
				return Leaf{}, fmt.Errorf("list item %d is not a scalar", i)
			}
			leaf, err := LeafOf(item)
			if err != nil {
				return Leaf{}, fmt.Errorf("list item %d: %w", i, err)
			}
			items = append(items, leaf)
		}
		return List(items...), nil
	case []string:
		items := make([]Leaf, len(x))
		for i, item := range x {
			items[i] = String(item)
		}
		return List(items...), nil
	default:
		return Leaf{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func fromUint(u uint64) Leaf {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}
