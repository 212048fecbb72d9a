package extract

import (
	"errors"
	"fmt"

	"github.com/roach88/pgcheck/internal/ir"
)

// UnreducedError reports that a tree did not collapse to a single
// constraint record. It is the normal outcome for CHECK clauses with no
// declarative equivalent; callers generate no validation for the column.
type UnreducedError struct {
	// Column is the target column of the extraction.
	Column string

	// Residual is the tree left after folding.
	Residual ir.Node
}

// Error implements the error interface.
func (e *UnreducedError) Error() string {
	return fmt.Sprintf("unreduced expression for column %q: %s", e.Column, e.Diagnostic())
}

// Diagnostic returns the canonical JSON of the residual, falling back to
// its SQL-like rendering if it cannot be encoded.
func (e *UnreducedError) Diagnostic() string {
	if e.Residual == nil {
		return "<nil>"
	}
	data, err := ir.MarshalNode(e.Residual)
	if err != nil {
		return e.Residual.String()
	}
	return string(data)
}

// IsUnreduced reports whether err is, or wraps, an UnreducedError.
func IsUnreduced(err error) bool {
	var ue *UnreducedError
	return errors.As(err, &ue)
}
