// Package store holds the effective configuration resolved from a live and
// a default tree, and reports how the two diverge.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/layerconf/internal/diff"
	lcerrors "github.com/randalmurphal/layerconf/internal/errors"
	"github.com/randalmurphal/layerconf/internal/report"
	"github.com/randalmurphal/layerconf/internal/resolve"
	"github.com/randalmurphal/layerconf/internal/source"
	"github.com/randalmurphal/layerconf/internal/tree"
)

// State is the lifecycle state of a Store.
type State int

const (
	// StateUninitialized means no reload has succeeded yet.
	StateUninitialized State = iota
	// StateReady means the store holds a snapshot.
	StateReady
)

var stateNames = map[State]string{
	StateUninitialized: "uninitialized",
	StateReady:         "ready",
}

// String returns the state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Provider supplies the live tree and, optionally, a default tree. Either
// method returns source.ErrAbsent when its tree does not exist.
type Provider interface {
	Name() string
	Live() (*tree.Tree, error)
	Default() (*tree.Tree, error)
}

// Materializer is implemented by providers that can create a missing live
// source from the default. EnsureLive reports whether it did.
type Materializer interface {
	EnsureLive() (bool, error)
}

// Resetter is implemented by providers that can overwrite the live source
// with the default.
type Resetter interface {
	ResetLive() error
}

// Snapshot is one successfully resolved configuration.
type Snapshot struct {
	ID       string
	LoadedAt time.Time
	Config   *tree.FlatConfig
}

// Option configures a Store.
type Option func(*Store)

// WithSettings sets the initial settings.
func WithSettings(s Settings) Option {
	return func(st *Store) {
		st.settings.Store(&s)
	}
}

// WithSink sets where reports go. The default sink logs through slog.
func WithSink(sink report.Sink) Option {
	return func(st *Store) {
		st.sink = sink
	}
}

// Store owns the effective configuration. Readers never block on a reload
// and never observe a partially resolved snapshot.
type Store struct {
	provider Provider
	sink     report.Sink

	settings atomic.Pointer[Settings]
	snap     atomic.Pointer[Snapshot]

	// serialises reloads and resets
	mu sync.Mutex
}

// New creates a store over p. With AutoLoadOnInit set it reloads at once;
// a failed first reload returns the usable, uninitialized store together
// with the error.
func New(p Provider, opts ...Option) (*Store, error) {
	s := &Store{
		provider: p,
		sink:     report.NewLogger(nil),
	}
	defaults := DefaultSettings()
	s.settings.Store(&defaults)
	for _, opt := range opts {
		opt(s)
	}

	if s.Settings().AutoLoadOnInit {
		if err := s.Reload(); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Name returns the provider name.
func (s *Store) Name() string {
	return s.provider.Name()
}

// Settings returns the current settings.
func (s *Store) Settings() Settings {
	return *s.settings.Load()
}

// SetSettings replaces the settings used by later operations.
func (s *Store) SetSettings(settings Settings) {
	s.settings.Store(&settings)
}

// State reports whether a snapshot has been loaded.
func (s *Store) State() State {
	if s.snap.Load() == nil {
		return StateUninitialized
	}
	return StateReady
}

// Snapshot returns the current snapshot, or nil before the first successful
// reload. The returned configuration is a copy.
func (s *Store) Snapshot() *Snapshot {
	snap := s.snap.Load()
	if snap == nil {
		return nil
	}
	return &Snapshot{ID: snap.ID, LoadedAt: snap.LoadedAt, Config: snap.Config.Clone()}
}

// Lookup returns the effective value at path. It reports false for unknown
// paths and before the first reload.
func (s *Store) Lookup(path string) (tree.Leaf, bool) {
	snap := s.snap.Load()
	if snap == nil {
		return tree.Leaf{}, false
	}
	return snap.Config.Get(path)
}

// Contains reports whether path has an effective value.
func (s *Store) Contains(path string) bool {
	_, ok := s.Lookup(path)
	return ok
}

// Get is Lookup with an error describing why no value is available.
func (s *Store) Get(path string) (tree.Leaf, error) {
	if s.State() == StateUninitialized {
		return tree.Leaf{}, lcerrors.ErrNotLoaded()
	}
	v, ok := s.Lookup(path)
	if !ok {
		return tree.Leaf{}, lcerrors.ErrKeyNotFound(path)
	}
	return v, nil
}

// String returns the string value at path.
func (s *Store) String(path string) (string, bool) {
	v, ok := s.Lookup(path)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Int returns the integer value at path.
func (s *Store) Int(path string) (int64, bool) {
	v, ok := s.Lookup(path)
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

// Float returns the numeric value at path. Integers are converted.
func (s *Store) Float(path string) (float64, bool) {
	v, ok := s.Lookup(path)
	if !ok {
		return 0, false
	}
	return v.AsFloat()
}

// Bool returns the boolean value at path.
func (s *Store) Bool(path string) (bool, bool) {
	v, ok := s.Lookup(path)
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// Reload loads both trees, emits the configured reports, and publishes a
// new snapshot. Reports describe the trees as loaded, before the swap. On
// failure the previous snapshot stays in place, a failure report is
// emitted, and the error is returned.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.Settings()
	id := uuid.NewString()
	name := s.provider.Name()

	slog.Debug("reloading configuration", "reload", id, "source", name)

	live, def, err := s.load(settings, id, settings.IncludeDefaults || settings.ReportMissingOnReload)
	if err != nil {
		slog.Warn("reload failed, keeping previous configuration",
			"reload", id,
			"source", name,
			"error", err,
		)
		failure := report.Failure(name, err, settings.DebugLogging)
		failure.ID = id
		s.emit(failure, settings)
		return err
	}

	if settings.ReportMissingOnReload && def != nil {
		s.emitDivergence(id, live, def, settings)
	}

	if !settings.IncludeDefaults {
		def = nil
	}
	flat := resolve.Resolve(live, def, settings.IncludeDefaults)
	s.snap.Store(&Snapshot{ID: id, LoadedAt: time.Now(), Config: flat})

	slog.Debug("configuration reloaded",
		"reload", id,
		"source", name,
		"leaves", flat.Len(),
		"defaults", def != nil,
	)
	return nil
}

// load creates the live source from the default first when the provider
// can, then reads the trees. The notice is only emitted once a valid
// default has been copied.
func (s *Store) load(settings Settings, id string, wantDefault bool) (live, def *tree.Tree, err error) {
	name := s.provider.Name()

	if m, ok := s.provider.(Materializer); ok {
		created, err := m.EnsureLive()
		if err != nil {
			var invalid *tree.InvalidError
			if errors.As(err, &invalid) {
				return nil, nil, classify(name+" (default)", err)
			}
			return nil, nil, lcerrors.ErrSourceUnavailable(name).WithCause(err)
		}
		if created && settings.ReportNewConfigCreation {
			notice := report.Notice(name, fmt.Sprintf("Copying a new %s ...", name))
			notice.ID = id
			s.emit(notice, settings)
		}
	}
	return s.read(wantDefault)
}

// read obtains the live tree and, when wantDefault is set, the default
// tree. An absent live source reads as an empty tree; an absent default
// reads as nil.
func (s *Store) read(wantDefault bool) (live, def *tree.Tree, err error) {
	name := s.provider.Name()

	live, err = s.provider.Live()
	switch {
	case errors.Is(err, source.ErrAbsent):
		live = tree.New(nil)
	case err != nil:
		return nil, nil, classify(name, err)
	}
	if err := live.Validate(); err != nil {
		return nil, nil, classify(name, err)
	}

	if !wantDefault {
		return live, nil, nil
	}

	def, err = s.provider.Default()
	switch {
	case errors.Is(err, source.ErrAbsent):
		return live, nil, nil
	case err != nil:
		return nil, nil, classify(name+" (default)", err)
	}
	if err := def.Validate(); err != nil {
		return nil, nil, classify(name+" (default)", err)
	}
	return live, def, nil
}

// classify maps a provider error onto the source error taxonomy.
func classify(name string, err error) error {
	var invalid *tree.InvalidError
	if errors.As(err, &invalid) {
		return lcerrors.ErrMalformedTree(name, invalid.Path, invalid.Reason)
	}
	return lcerrors.ErrSourceUnavailable(name).WithCause(err)
}

// emitDivergence reports missing options, and redundant ones when enabled.
// Without a default nothing is missing and redundancy is not reported.
func (s *Store) emitDivergence(id string, live, def *tree.Tree, settings Settings) {
	name := s.provider.Name()

	var entries []tree.Entry
	if def != nil {
		entries = diff.Missing(def, live)
	}
	missing := report.NewMissing(name, entries, settings.IncludeDefaults)
	missing.ID = id
	s.emit(missing, settings)

	if settings.ReportRedundantOptions && def != nil {
		redundant := report.New(report.KindRedundant, name, diff.Redundant(live, def))
		redundant.ID = id
		s.emit(redundant, settings)
	}
}

func (s *Store) emit(r report.Report, settings Settings) {
	if err := s.sink.Emit(r, settings.UseColoring); err != nil {
		slog.Warn("failed to emit report", "kind", r.Kind.String(), "source", r.Source, "error", err)
	}
}

// MissingOptions returns the options the default defines and the live
// source lacks. Without a default there are none.
func (s *Store) MissingOptions() ([]tree.Entry, error) {
	live, def, err := s.read(true)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, nil
	}
	return diff.Missing(def, live), nil
}

// RedundantOptions returns the options the live source defines and the
// default lacks. Without a default there are none.
func (s *Store) RedundantOptions() ([]tree.Entry, error) {
	live, def, err := s.read(true)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, nil
	}
	return diff.Redundant(live, def), nil
}

// Divergence counts missing and redundant options in the current sources.
func (s *Store) Divergence() (diff.Stats, error) {
	live, def, err := s.read(true)
	if err != nil {
		return diff.Stats{}, err
	}
	if def == nil {
		return diff.Stats{}, nil
	}
	return diff.Compare(def, live), nil
}

// ReportMissing emits a missing-option report, followed by a
// redundant-option report when ReportRedundantOptions is set.
func (s *Store) ReportMissing() error {
	settings := s.Settings()
	live, def, err := s.read(true)
	if err != nil {
		return err
	}
	s.emitDivergence("", live, def, settings)
	return nil
}

// ReportRedundant emits a redundant-option report.
func (s *Store) ReportRedundant() error {
	entries, err := s.RedundantOptions()
	if err != nil {
		return err
	}
	s.emit(report.New(report.KindRedundant, s.provider.Name(), entries), s.Settings())
	return nil
}

// Explain shows how path resolves from the current sources under the
// current settings.
func (s *Store) Explain(path string) (resolve.Chain, error) {
	live, def, err := s.read(true)
	if err != nil {
		return resolve.Chain{}, err
	}
	return resolve.Explain(path, live, def, s.Settings().IncludeDefaults), nil
}

// ResetToDefault overwrites the live source with the default. The snapshot
// is unchanged until the next reload.
func (s *Store) ResetToDefault() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := s.provider.Name()
	r, ok := s.provider.(Resetter)
	if !ok {
		return lcerrors.ErrResetUnsupported(name)
	}

	settings := s.Settings()
	if settings.DebugLogging {
		s.emit(report.Notice(name, "Forcing default config! The live config will be overwritten"), settings)
	}
	if settings.ReportNewConfigCreation {
		s.emit(report.Notice(name, fmt.Sprintf("Forcing a fresh %s ...", name)), settings)
	}

	if err := r.ResetLive(); err != nil {
		return lcerrors.ErrSourceUnavailable(name).WithCause(err)
	}
	slog.Info("live configuration reset to default", "source", name)
	return nil
}
