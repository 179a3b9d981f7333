// Package report turns divergence entries into ordered, human-readable
// report lines. It never writes text itself; sinks do.
package report

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/layerconf/internal/tree"
)

// Kind identifies what a report describes.
type Kind int

const (
	// KindMissing lists options the default tree defines and live lacks.
	KindMissing Kind = iota
	// KindRedundant lists options live defines and the default tree lacks.
	KindRedundant
	// KindNotice carries informational messages such as a freshly created
	// live source.
	KindNotice
	// KindFailure carries a reload failure.
	KindFailure
)

var kindNames = map[Kind]string{
	KindMissing:   "missing",
	KindRedundant: "redundant",
	KindNotice:    "notice",
	KindFailure:   "failure",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Style hints how a sink may emphasise a line.
type Style int

const (
	StylePlain Style = iota
	// StyleWarning is used for headers and guidance of a non-empty report.
	StyleWarning
	// StyleDetail is used for per-option lines.
	StyleDetail
)

// Line is one rendered report line.
type Line struct {
	Text  string `json:"text"`
	Style Style  `json:"-"`
}

// Report is an ordered set of lines ready for a sink.
type Report struct {
	// ID correlates a report with the reload that produced it. Empty for
	// reports built outside a reload.
	ID     string `json:"id,omitempty"`
	Kind   Kind   `json:"kind"`
	Source string `json:"source,omitempty"`
	Lines  []Line `json:"lines"`
}

// Text returns the report lines joined by newlines.
func (r Report) Text() string {
	parts := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

const (
	missingGuidanceAdd      = "Please add the missing option(s) manually or delete this file and perform a reload"
	missingGuidanceDefaults = "The default values will be used until then"
	redundantGuidance       = "Redundant options are not used and can safely be deleted"
)

// New builds a divergence report for source. kind must be KindMissing or
// KindRedundant.
func New(kind Kind, source string, entries []tree.Entry) Report {
	return Report{Kind: kind, Source: source, Lines: FormatFor(source, entries, kind)}
}

// NewMissing builds a missing-option report. Without backfill the guidance
// that defaults are used is left out.
func NewMissing(source string, entries []tree.Entry, backfill bool) Report {
	r := New(KindMissing, source, entries)
	if backfill {
		return r
	}
	lines := r.Lines[:0:0]
	for _, l := range r.Lines {
		if l.Text != missingGuidanceDefaults {
			lines = append(lines, l)
		}
	}
	r.Lines = lines
	return r
}

// Format renders entries without naming a source.
func Format(entries []tree.Entry, kind Kind) []Line {
	return FormatFor("", entries, kind)
}

// FormatFor renders a header, guidance, and one line per entry in input
// order. An empty entry list renders a single "none found" line.
func FormatFor(source string, entries []tree.Entry, kind Kind) []Line {
	noun := kind.String()
	in := ""
	if source != "" {
		in = " in " + source
	}

	if len(entries) == 0 {
		return []Line{{Text: fmt.Sprintf("No %s options found%s!", noun, in), Style: StylePlain}}
	}

	lines := make([]Line, 0, len(entries)+3)
	if len(entries) == 1 {
		lines = append(lines, Line{Text: fmt.Sprintf("A %s option has been found%s!", noun, in), Style: StyleWarning})
	} else {
		lines = append(lines, Line{Text: fmt.Sprintf("%d %s options have been found%s!", len(entries), noun, in), Style: StyleWarning})
	}

	switch kind {
	case KindMissing:
		lines = append(lines,
			Line{Text: missingGuidanceAdd, Style: StyleWarning},
			Line{Text: missingGuidanceDefaults, Style: StyleWarning})
		for _, e := range entries {
			lines = append(lines, Line{
				Text:  "Missing option: " + RenderPath(e.Path) + " with default value: " + RenderValue(e.Value),
				Style: StyleDetail,
			})
		}
	case KindRedundant:
		lines = append(lines, Line{Text: redundantGuidance, Style: StyleWarning})
		for _, e := range entries {
			lines = append(lines, Line{Text: "Redundant option: " + RenderPath(e.Path), Style: StyleDetail})
		}
	}

	return lines
}

// RenderPath describes a dotted path innermost-first: "a.b.c" renders as
// `"c" in section "b" in section "a"`. The reversed order is intentional and
// kept for output compatibility.
func RenderPath(path string) string {
	segments := strings.Split(path, ".")
	var b strings.Builder
	for i := len(segments) - 1; i > 0; i-- {
		b.WriteString(`"` + segments[i] + `" in section `)
	}
	b.WriteString(`"` + segments[0] + `"`)
	return b.String()
}

// RenderValue quotes string leaves and renders every other kind in its
// natural form.
func RenderValue(v tree.Leaf) string {
	switch v.Kind() {
	case tree.KindString:
		s, _ := v.AsString()
		return `"` + s + `"`
	default:
		return v.String()
	}
}

// Notice builds a single-line informational report.
func Notice(source, text string) Report {
	return Report{Kind: KindNotice, Source: source, Lines: []Line{{Text: text, Style: StylePlain}}}
}

// Failure builds a reload failure report. The error detail is included only
// when detail is set.
func Failure(source string, err error, detail bool) Report {
	name := source
	if name == "" {
		name = "the configuration"
	}
	lines := []Line{{
		Text:  fmt.Sprintf("Failed to reload %s, the previous configuration is kept", name),
		Style: StyleWarning,
	}}
	if detail && err != nil {
		lines = append(lines,
			Line{Text: "An error occurred while loading the configuration (see below)", Style: StyleDetail},
			Line{Text: err.Error(), Style: StyleDetail})
	}
	return Report{Kind: KindFailure, Source: source, Lines: lines}
}
