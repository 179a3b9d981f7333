package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Sink receives finished reports. useColoring is a hint; sinks that cannot
// colour ignore it.
type Sink interface {
	Emit(r Report, useColoring bool) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(r Report, useColoring bool) error

// Emit calls f.
func (f SinkFunc) Emit(r Report, useColoring bool) error {
	return f(r, useColoring)
}

// Discard drops every report.
var Discard Sink = SinkFunc(func(Report, bool) error { return nil })

// Console writes reports line by line to a terminal or any writer.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	prefix string
	tty    bool

	warning lipgloss.Style
	detail  lipgloss.Style
	plain   lipgloss.Style
}

// NewConsole creates a console sink writing to w. Lines are prefixed with
// "[prefix] " when prefix is non-empty. Colour is only applied when w is a
// terminal.
func NewConsole(w io.Writer, prefix string) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:       w,
		prefix:  prefix,
		tty:     isTerminal(w),
		warning: r.NewStyle().Foreground(lipgloss.Color("9")),
		detail:  r.NewStyle().Foreground(lipgloss.Color("1")),
		plain:   r.NewStyle(),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Emit writes each line of r.
func (c *Console) Emit(r Report, useColoring bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	colour := useColoring && c.tty
	for _, line := range r.Lines {
		text := line.Text
		if colour {
			text = c.style(line.Style).Render(text)
		}
		if c.prefix != "" {
			text = "[" + c.prefix + "] " + text
		}
		if _, err := fmt.Fprintln(c.w, text); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

func (c *Console) style(s Style) lipgloss.Style {
	switch s {
	case StyleWarning:
		return c.warning
	case StyleDetail:
		return c.detail
	default:
		return c.plain
	}
}

// Logger emits report lines as structured log records.
type Logger struct {
	log *slog.Logger
}

// NewLogger creates a sink that logs through l, or slog.Default() when l is
// nil.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{log: l}
}

// Emit logs each line. Failure reports and styled lines log at Warn.
func (s *Logger) Emit(r Report, _ bool) error {
	attrs := []any{"kind", r.Kind.String()}
	if r.Source != "" {
		attrs = append(attrs, "source", r.Source)
	}
	if r.ID != "" {
		attrs = append(attrs, "reload", r.ID)
	}
	for _, line := range r.Lines {
		level := slog.LevelInfo
		if r.Kind == KindFailure || line.Style != StylePlain {
			level = slog.LevelWarn
		}
		s.log.Log(context.Background(), level, line.Text, attrs...)
	}
	return nil
}

// Recorder keeps every report in memory, in emission order.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

// Emit records r.
func (rec *Recorder) Emit(r Report, _ bool) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.reports = append(rec.reports, r)
	return nil
}

// Reports returns a copy of the recorded reports.
func (rec *Recorder) Reports() []Report {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]Report, len(rec.reports))
	copy(out, rec.reports)
	return out
}

// OfKind returns the recorded reports of one kind.
func (rec *Recorder) OfKind(k Kind) []Report {
	var out []Report
	for _, r := range rec.Reports() {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}

// Reset discards recorded reports.
func (rec *Recorder) Reset() {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.reports = nil
}

// Tee emits to every sink in order and returns the first error.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(r Report, useColoring bool) error {
		var first error
		for _, s := range sinks {
			if err := s.Emit(r, useColoring); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}
