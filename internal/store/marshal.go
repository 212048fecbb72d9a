package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pgcheck/internal/ir"
)

// marshalConstraints converts a constraint record to canonical JSON TEXT.
// Uses RFC 8785 canonical JSON so equal records store byte-identical text.
func marshalConstraints(c ir.Constraints) (string, error) {
	data, err := ir.MarshalCanonical(c.Fields())
	if err != nil {
		return "", fmt.Errorf("marshal constraints: %w", err)
	}
	return string(data), nil
}

// unmarshalConstraints parses stored JSON TEXT into a constraint record.
// Integers decode straight into int64 fields, so values beyond 2^53 keep
// full precision.
func unmarshalConstraints(data string) (ir.Constraints, error) {
	var c ir.Constraints
	if data == "" || data == "{}" {
		return c, nil
	}
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return ir.Constraints{}, fmt.Errorf("unmarshal constraints: %w", err)
	}
	return c, nil
}
