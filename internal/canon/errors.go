package canon

import (
	"errors"
	"fmt"
)

// StructuralError reports a raw node the canonicalizer does not recognize:
// an unknown tag, an unsupported operator or constant, or a missing field.
// It is fatal to the conversion; no partial tree is returned alongside it.
type StructuralError struct {
	// Reason is a human-readable description of what was wrong.
	Reason string

	// Raw is the JSON form of the offending node.
	Raw []byte
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if len(e.Raw) == 0 {
		return "structural error: " + e.Reason
	}
	return fmt.Sprintf("structural error: %s: %s", e.Reason, e.Raw)
}

// IsStructural reports whether err is, or wraps, a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
