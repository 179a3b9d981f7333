// Package errors provides structured error types for layerconf.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for layerconf.
const (
	// Source errors
	CodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	CodeMalformedTree     Code = "MALFORMED_TREE"
	CodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	CodeResetUnsupported  Code = "RESET_UNSUPPORTED"

	// Lookup errors
	CodeKeyNotFound Code = "KEY_NOT_FOUND"
	CodeNotLoaded   Code = "NOT_LOADED"
)

// Error is the structured error type for layerconf.
type Error struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly message for CLI output.
func (e *Error) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Is reports whether target is an Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrSourceUnavailable returns an error for a live or default tree that
// could not be obtained.
func ErrSourceUnavailable(name string) *Error {
	return &Error{
		Code: CodeSourceUnavailable,
		What: fmt.Sprintf("configuration source %s is unavailable", name),
		Why:  "The source could not be read or parsed",
		Fix:  "Check that the file exists and is readable, then reload",
	}
}

// ErrMalformedTree returns an error for a tree that mixes sections and
// leaves in a way the resolver cannot represent.
func ErrMalformedTree(name, path, reason string) *Error {
	what := fmt.Sprintf("configuration source %s is malformed", name)
	if path != "" {
		what = fmt.Sprintf("configuration source %s is malformed at %s", name, path)
	}
	return &Error{
		Code: CodeMalformedTree,
		What: what,
		Why:  reason,
		Fix:  "Only scalars, lists of scalars, and nested sections are supported",
	}
}

// ErrUnsupportedFormat returns an error for a file whose extension maps to
// no known parser.
func ErrUnsupportedFormat(path string) *Error {
	return &Error{
		Code: CodeUnsupportedFormat,
		What: fmt.Sprintf("unsupported configuration format: %s", path),
		Why:  "Only .yml, .yaml, .json and .toml files can be parsed",
		Fix:  "Rename the file with a supported extension",
	}
}

// ErrResetUnsupported returns an error when the provider cannot overwrite
// its live source.
func ErrResetUnsupported(name string) *Error {
	return &Error{
		Code: CodeResetUnsupported,
		What: fmt.Sprintf("configuration source %s cannot be reset", name),
		Why:  "The provider does not own a writable live source",
	}
}

// ErrKeyNotFound returns an error for a path with no effective value.
func ErrKeyNotFound(path string) *Error {
	return &Error{
		Code: CodeKeyNotFound,
		What: fmt.Sprintf("option %s not found", path),
		Why:  "No effective value exists at this path",
		Fix:  "Run 'layerconf show' to list available options",
	}
}

// ErrNotLoaded returns an error when the store holds no snapshot yet.
func ErrNotLoaded() *Error {
	return &Error{
		Code: CodeNotLoaded,
		What: "configuration has not been loaded",
		Why:  "Automatic loading is disabled and no reload was performed",
		Fix:  "Reload the configuration or enable auto_load",
	}
}

// AsError attempts to convert an error to an *Error.
// Returns nil if the error is not an *Error.
func AsError(err error) *Error {
	var lcErr *Error
	if stderrors.As(err, &lcErr) {
		return lcErr
	}
	return nil
}

// Wrap wraps a generic error into an *Error with unknown code.
func Wrap(err error, what string) *Error {
	return &Error{
		Code:  Code("UNKNOWN"),
		What:  what,
		Cause: err,
	}
}
