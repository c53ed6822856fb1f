package annoset

import (
	"errors"
	"fmt"

	"github.com/hupe1980/annoset/codec"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/format"
	"github.com/hupe1980/annoset/merge"
	"github.com/hupe1980/annoset/query"
	"github.com/hupe1980/annoset/transform"
)

var (
	// ErrNotFound is returned when an item is not found.
	ErrNotFound = dataset.ErrNotFound

	// ErrValidation is returned for invalid input: bad items, options,
	// query strings or transform parameters.
	ErrValidation = dataset.ErrValidation

	// ErrFormat is returned when a dataset cannot be read or written in
	// the requested format.
	ErrFormat = format.ErrFormat

	// ErrAmbiguousFormat is returned by Import when several formats
	// recognise the source.
	ErrAmbiguousFormat = errors.New("ambiguous format")
)

// ErrUnsupported indicates a named format or transform that is not
// registered with the session.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrUnsupported struct {
	Kind  string
	Name  string
	cause error
}

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("unsupported %s %q", e.Kind, e.Name)
}

func (e *ErrUnsupported) Unwrap() []error { return []error{ErrValidation, e.cause} }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Already classified.
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrFormat) {
		return err
	}

	// Caller supplied input that no subpackage accepted.
	if errors.Is(err, query.ErrSyntax) ||
		errors.Is(err, codec.ErrUnknownCompression) ||
		errors.Is(err, merge.ErrNoSources) ||
		errors.Is(err, transform.ErrUnknownTransform) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return err
}

func unsupported(kind, name string, cause error) error {
	return &ErrUnsupported{Kind: kind, Name: name, cause: cause}
}

