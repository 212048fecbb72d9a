package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgcheck/internal/ir"
)

func tableCheck(relation, column, text string) ir.ColumnCheck {
	return ir.ColumnCheck{Kind: ir.KindTable, Relation: relation, Column: column, Check: text}
}

func TestValidateValid(t *testing.T) {
	checks := []ir.ColumnCheck{
		tableCheck("users", "bio", "CHECK (length(bio) < 10000)"),
		tableCheck("users", "email", "check(email <> '')"),
		{Kind: ir.KindDomain, Relation: "yes_no", Column: "value", Check: "  CHECK (VALUE > 0)"},
		// bare expressions are wrapped in CHECK ( ) by the parser
		tableCheck("users", "nick", "length(nick) < 10"),
		tableCheck("users", "flag", "CHECKS (flag)"),
	}

	assert.Empty(t, Validate(checks))
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name      string
		check     ir.ColumnCheck
		wantCode  string
		wantField string
	}{
		{
			name:      "empty check",
			check:     tableCheck("users", "bio", "   "),
			wantCode:  ErrCheckEmpty,
			wantField: "table.users.column.bio.check",
		},
		{
			name:      "keyword without parenthesis",
			check:     tableCheck("users", "bio", "CHECK length(bio) < 10"),
			wantCode:  ErrCheckNoParen,
			wantField: "table.users.column.bio.check",
		},
		{
			name:      "bare keyword",
			check:     tableCheck("users", "bio", " check"),
			wantCode:  ErrCheckNoParen,
			wantField: "table.users.column.bio.check",
		},
		{
			name:      "empty column",
			check:     tableCheck("users", "", "CHECK (x)"),
			wantCode:  ErrColumnNameEmpty,
			wantField: "checks[0]",
		},
		{
			name:      "unknown kind",
			check:     ir.ColumnCheck{Kind: "view", Relation: "v", Column: "c", Check: "CHECK (c)"},
			wantCode:  ErrUnknownCheckKind,
			wantField: "checks[0].kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate([]ir.ColumnCheck{tt.check})
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantCode, errs[0].Code)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestValidateDuplicateColumn(t *testing.T) {
	checks := []ir.ColumnCheck{
		tableCheck("users", "bio", "CHECK (length(bio) < 10)"),
		tableCheck("users", "bio", "CHECK (length(bio) > 1)"),
		// same column name on another table is fine
		tableCheck("posts", "bio", "CHECK (length(bio) < 10)"),
	}

	errs := Validate(checks)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateColumn, errs[0].Code)
	assert.Contains(t, errs[0].Message, "users.bio")
}

func TestValidateAccumulates(t *testing.T) {
	checks := []ir.ColumnCheck{
		tableCheck("users", "", ""),
		tableCheck("users", "bio", "CHECK nope"),
	}

	errs := Validate(checks)
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	assert.Equal(t, []string{ErrColumnNameEmpty, ErrCheckEmpty, ErrCheckNoParen}, codes)
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "domain.d", Message: "bad", Code: ErrCheckEmpty}
	assert.Equal(t, "[E120] domain.d: bad", err.Error())
}
