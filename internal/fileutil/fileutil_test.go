package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	require.NoError(t, WriteAtomic(path, []byte("a: 1\n"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestWriteAtomic_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "app", "config.yml")

	require.NoError(t, WriteAtomic(path, []byte("a: 1\n"), 0644))
	assert.FileExists(t, path)
}

func TestWriteAtomic_OverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("old: true\n"), 0644))

	require.NoError(t, WriteAtomic(path, []byte("new: true\n"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new: true\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.yml", entries[0].Name())
}

func TestWriteAtomic_DirectoryIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := WriteAtomic(filepath.Join(blocker, "config.yml"), []byte("x"), 0644)
	assert.Error(t, err)
}
