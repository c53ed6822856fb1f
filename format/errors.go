package format

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is the sentinel wrapped by every *FormatError.
	ErrFormat = errors.New("format error")
	// ErrUnknownFormat is returned by Registry.Lookup for unregistered names.
	ErrUnknownFormat = errors.New("unknown format")
)

// FormatError reports a source that cannot be read at all, or a dataset
// that cannot be written in the requested format.
type FormatError struct {
	Format string
	Path   string
	Err    error
}

// Errorf returns a *FormatError with a formatted cause.
func Errorf(format, path, msg string, args ...any) *FormatError {
	return &FormatError{Format: format, Path: path, Err: fmt.Errorf(msg, args...)}
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Format, e.Path, e.Err)
}

func (e *FormatError) Unwrap() []error {
	return []error{ErrFormat, e.Err}
}

// Warning is a recoverable problem found while extracting. The record it
// refers to was skipped.
type Warning struct {
	ItemID  string
	Subset  string
	Path    string
	Line    int // 1-based, 0 when not line oriented
	Message string
}

func (w Warning) String() string {
	loc := w.Path
	if w.Line > 0 {
		loc = fmt.Sprintf("%s:%d", w.Path, w.Line)
	}
	if w.ItemID != "" {
		return fmt.Sprintf("%s (%s/%s): %s", loc, w.Subset, w.ItemID, w.Message)
	}
	return fmt.Sprintf("%s: %s", loc, w.Message)
}
