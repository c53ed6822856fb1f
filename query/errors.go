package query

import (
	"errors"
	"fmt"
)

// ErrSyntax is returned (wrapped in a *SyntaxError) for malformed queries.
var ErrSyntax = errors.New("query syntax error")

// SyntaxError reports where a query failed to parse.
type SyntaxError struct {
	Query string
	Pos   int // byte offset into Query
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query syntax error at %d: %s (in %q)", e.Pos, e.Msg, e.Query)
}

// Unwrap returns ErrSyntax.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
