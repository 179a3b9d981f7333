package source

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/layerconf/internal/tree"
)

const defaultDoc = `
database:
  host: localhost
  port: 5432
`

func defaultsFS() fstest.MapFS {
	return fstest.MapFS{"config.yml": {Data: []byte(defaultDoc)}}
}

func TestFile_LiveAbsent(t *testing.T) {
	f := NewFile(t.TempDir(), "config.yml", nil)

	_, err := f.Live()
	assert.ErrorIs(t, err, ErrAbsent)

	_, err = f.Default()
	assert.ErrorIs(t, err, ErrAbsent)
}

func TestFile_DefaultMissingFromFS(t *testing.T) {
	f := NewFile(t.TempDir(), "config.yml", fstest.MapFS{"other.yml": {Data: []byte("a: 1")}})

	_, err := f.Default()
	assert.ErrorIs(t, err, ErrAbsent)
}

func TestFile_EnsureLiveCopiesDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "conf")
	f := NewFile(dir, "config.yml", defaultsFS())

	created, err := f.EnsureLive()
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, defaultDoc, string(data))

	created, err = f.EnsureLive()
	require.NoError(t, err)
	assert.False(t, created, "existing live document is left alone")

	live, err := f.Live()
	require.NoError(t, err)
	assert.Equal(t, []string{"database.host=string:localhost", "database.port=int:5432"}, flat(live))
}

func TestFile_EnsureLiveWithoutDefault(t *testing.T) {
	f := NewFile(t.TempDir(), "config.yml", nil)

	created, err := f.EnsureLive()
	require.NoError(t, err)
	assert.False(t, created)

	_, err = os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestFile_ResetLive(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir, "config.yml", defaultsFS())
	require.NoError(t, os.WriteFile(f.Path(), []byte("database:\n  port: 1\nextra: true\n"), 0644))

	require.NoError(t, f.ResetLive())

	live, err := f.Live()
	require.NoError(t, err)
	assert.Equal(t, []string{"database.host=string:localhost", "database.port=int:5432"}, flat(live))
}

func TestFile_ResetLiveWithoutDefault(t *testing.T) {
	f := NewFile(t.TempDir(), "config.yml", nil)
	assert.ErrorIs(t, f.ResetLive(), ErrAbsent)
}

func TestFile_InvalidDefaultIsNotWritten(t *testing.T) {
	bad := fstest.MapFS{"config.yml": {Data: []byte("matrix: [[1, 2]]\n")}}

	f := NewFile(t.TempDir(), "config.yml", bad)
	created, err := f.EnsureLive()
	requireInvalid(t, err)
	assert.False(t, created)
	_, statErr := os.Stat(f.Path())
	assert.True(t, os.IsNotExist(statErr))

	f = NewFile(t.TempDir(), "config.yml", bad)
	require.NoError(t, os.WriteFile(f.Path(), []byte("a: 1\n"), 0644))
	requireInvalid(t, f.ResetLive())
	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data), "live document untouched")

	f = NewFile(t.TempDir(), "config.yml", fstest.MapFS{"config.yml": {Data: []byte("a: [\n")}})
	_, err = f.EnsureLive()
	require.Error(t, err)
	_, statErr = os.Stat(f.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestFile_LiveMalformed(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir, "config.yml", nil)
	require.NoError(t, os.WriteFile(f.Path(), []byte("hosts:\n  - name: a\n"), 0644))

	_, err := f.Live()
	invalid := requireInvalid(t, err)
	assert.Equal(t, "hosts", invalid.Path)
	assert.Contains(t, err.Error(), f.Path())
}

func TestFile_JSONDocument(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir, "settings.json", fstest.MapFS{"settings.json": {Data: []byte(`{"a": 1}`)}})

	live, err := f.Default()
	require.NoError(t, err)
	assert.Equal(t, "settings.json", f.Name())
	assert.Equal(t, []string{"a=int:1"}, flat(live))
}

func TestStatic(t *testing.T) {
	live := tree.New(tree.NewSection().Set("k", tree.Bool(true)))
	s := NewStatic("memory", live, nil)

	got, err := s.Live()
	require.NoError(t, err)
	assert.Same(t, live, got)

	_, err = s.Default()
	assert.ErrorIs(t, err, ErrAbsent)

	def := tree.New(nil)
	s.SetDefault(def)
	got, err = s.Default()
	require.NoError(t, err)
	assert.Same(t, def, got)

	s.SetLive(nil)
	_, err = s.Live()
	assert.ErrorIs(t, err, ErrAbsent)
	assert.Equal(t, "memory", s.Name())
}

func TestFile_DifferentDefaultName(t *testing.T) {
	defaults := fstest.MapFS{"shipped.yml": {Data: []byte("a: 1\n")}}
	f := NewFileWithDefault(t.TempDir(), "config.yml", defaults, "shipped.yml")

	def, err := f.Default()
	require.NoError(t, err)
	assert.Equal(t, []string{"a=int:1"}, flat(def))

	created, err := f.EnsureLive()
	require.NoError(t, err)
	assert.True(t, created)
}
