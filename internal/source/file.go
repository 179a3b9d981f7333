package source

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/randalmurphal/layerconf/internal/fileutil"
	"github.com/randalmurphal/layerconf/internal/tree"
)

// ErrAbsent reports that a source does not exist, as opposed to existing
// and failing to load.
var ErrAbsent = errors.New("source absent")

// File is a provider backed by a live document on disk and an optional
// default document in a read-only file system, typically an embed.FS.
type File struct {
	name        string
	livePath    string
	defaults    fs.FS
	defaultName string
}

// NewFile creates a provider for dir/name. The default document is read
// from defaults at name; a nil defaults means there is none.
func NewFile(dir, name string, defaults fs.FS) *File {
	return NewFileWithDefault(dir, name, defaults, name)
}

// NewFileWithDefault is NewFile with the default document read from
// defaults at defaultName. Both documents must use the same format for
// EnsureLive and ResetLive copies to parse.
func NewFileWithDefault(dir, name string, defaults fs.FS, defaultName string) *File {
	return &File{
		name:        name,
		livePath:    filepath.Join(dir, name),
		defaults:    defaults,
		defaultName: defaultName,
	}
}

// Name returns the document name.
func (f *File) Name() string {
	return f.name
}

// Path returns the live document path.
func (f *File) Path() string {
	return f.livePath
}

// Live reads and parses the live document.
func (f *File) Live() (*tree.Tree, error) {
	data, err := os.ReadFile(f.livePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrAbsent
		}
		return nil, fmt.Errorf("read %s: %w", f.livePath, err)
	}
	t, err := Parse(f.name, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.livePath, err)
	}
	return t, nil
}

// Default reads and parses the default document.
func (f *File) Default() (*tree.Tree, error) {
	data, err := f.defaultBytes()
	if err != nil {
		return nil, err
	}
	t, err := Parse(f.defaultName, data)
	if err != nil {
		return nil, fmt.Errorf("parse default %s: %w", f.defaultName, err)
	}
	return t, nil
}

func (f *File) defaultBytes() ([]byte, error) {
	if f.defaults == nil {
		return nil, ErrAbsent
	}
	data, err := fs.ReadFile(f.defaults, f.defaultName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrAbsent
		}
		return nil, fmt.Errorf("read default %s: %w", f.defaultName, err)
	}
	return data, nil
}

// EnsureLive copies the default document to the live location when no live
// document exists. It reports whether a copy was made. Without a default
// there is nothing to copy and the live document stays absent. A default
// that does not parse or validate is never copied.
func (f *File) EnsureLive() (bool, error) {
	if _, err := os.Stat(f.livePath); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", f.livePath, err)
	}

	data, err := f.validDefault()
	if errors.Is(err, ErrAbsent) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := f.write(data); err != nil {
		return false, err
	}
	slog.Debug("materialized live config from default", "path", f.livePath)
	return true, nil
}

// ResetLive overwrites the live document with the default document. The
// live document is left alone when the default is absent or invalid.
func (f *File) ResetLive() error {
	data, err := f.validDefault()
	if err != nil {
		return fmt.Errorf("reset %s: %w", f.livePath, err)
	}
	return f.write(data)
}

// validDefault returns the default bytes after checking they parse into a
// well-formed tree.
func (f *File) validDefault() ([]byte, error) {
	data, err := f.defaultBytes()
	if err != nil {
		return nil, err
	}
	t, err := Parse(f.defaultName, data)
	if err != nil {
		return nil, fmt.Errorf("parse default %s: %w", f.defaultName, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("default %s: %w", f.defaultName, err)
	}
	return data, nil
}

func (f *File) write(data []byte) error {
	if err := fileutil.WriteAtomic(f.livePath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", f.livePath, err)
	}
	return nil
}
