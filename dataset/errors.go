package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an item lookup misses.
	ErrNotFound = errors.New("item not found")
	// ErrValidation is returned when a mutation would violate a dataset
	// invariant. The dataset is left unchanged.
	ErrValidation = errors.New("validation failed")
)

// NotFoundError reports a lookup miss by id and subset.
type NotFoundError struct {
	ID     string
	Subset string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %q in subset %q not found", e.ID, e.Subset)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports a schema violation on an item or annotation.
type ValidationError struct {
	ID     string
	Subset string
	// Field names the offending part, e.g. "id", "label", "annotations[2]".
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" && e.Subset == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("item %q (%s): invalid %s: %s", e.ID, e.Subset, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError not bound to an item, for parameter
// checks in transforms and options.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
