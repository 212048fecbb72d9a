package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/pgcheck/internal/ir"
)

// Validation error codes (E120-E129)
const (
	ErrCheckEmpty       = "E120" // check text is empty
	ErrCheckNoParen     = "E121" // CHECK keyword not followed by "("
	ErrDuplicateColumn  = "E122" // same column declared twice
	ErrColumnNameEmpty  = "E123" // column or relation name is empty
	ErrUnknownCheckKind = "E124" // kind is neither table nor domain
)

// ValidationError represents a batch spec validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Check text is either a full "CHECK (expr)" clause or a bare expression,
// which the parser wraps in CHECK ( ). Only a leading CHECK keyword without
// its parenthesis is malformed.
var (
	checkKeywordPattern = regexp.MustCompile(`(?i)^\s*CHECK(\s|\(|$)`)
	checkClausePattern  = regexp.MustCompile(`(?i)^\s*CHECK\s*\(`)
)

// Validate validates compiled checks.
// Returns all errors found (does not fail-fast).
func Validate(checks []ir.ColumnCheck) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for i, cc := range checks {
		field := fieldPath(i, cc)

		// E124: kind must be known
		if cc.Kind != ir.KindTable && cc.Kind != ir.KindDomain {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("unknown check kind %q, must be \"table\" or \"domain\"", cc.Kind),
				Code:    ErrUnknownCheckKind,
			})
		}

		// E123: names are required
		if strings.TrimSpace(cc.Relation) == "" || strings.TrimSpace(cc.Column) == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "relation and column names must be non-empty",
				Code:    ErrColumnNameEmpty,
			})
		}

		// E120 / E121: check text
		if strings.TrimSpace(cc.Check) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".check",
				Message: "check is required and must be non-empty",
				Code:    ErrCheckEmpty,
			})
		} else if checkKeywordPattern.MatchString(cc.Check) && !checkClausePattern.MatchString(cc.Check) {
			errs = append(errs, ValidationError{
				Field:   field + ".check",
				Message: fmt.Sprintf("check %q: CHECK must be followed by a parenthesized expression", cc.Check),
				Code:    ErrCheckNoParen,
			})
		}

		// E122: duplicate (kind, relation, column)
		key := string(cc.Kind) + "\x00" + cc.Relation + "\x00" + cc.Column
		if seen[key] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate column %s.%s", cc.Relation, cc.Column),
				Code:    ErrDuplicateColumn,
			})
		}
		seen[key] = true
	}

	return errs
}

// fieldPath renders the spec path of a check for error messages.
func fieldPath(i int, cc ir.ColumnCheck) string {
	switch {
	case cc.Kind == ir.KindDomain && cc.Relation != "":
		return "domain." + cc.Relation
	case cc.Kind == ir.KindTable && cc.Relation != "" && cc.Column != "":
		return "table." + cc.Relation + ".column." + cc.Column
	default:
		return fmt.Sprintf("checks[%d]", i)
	}
}
