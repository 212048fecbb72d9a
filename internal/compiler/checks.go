package compiler

import (
	"cmp"
	"fmt"
	"slices"

	"cuelang.org/go/cue"

	"github.com/roach88/pgcheck/internal/ir"
)

// CompileChecks reads every CHECK clause declared in a batch spec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// Layout:
//
//	table: users: column: bio: check: "CHECK (length(bio) < 10000)"
//	domain: yes_no: check: "CHECK (VALUE = ANY (ARRAY['YES','NO']))"
//
// Domain checks are compiled against the pseudo-column "value". The result
// is sorted by (kind, relation, column) so batch reports are stable.
func CompileChecks(v cue.Value) ([]ir.ColumnCheck, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	var checks []ir.ColumnCheck

	tables, err := compileTables(v.LookupPath(cue.ParsePath("table")))
	if err != nil {
		return nil, err
	}
	checks = append(checks, tables...)

	domains, err := compileDomains(v.LookupPath(cue.ParsePath("domain")))
	if err != nil {
		return nil, err
	}
	checks = append(checks, domains...)

	slices.SortStableFunc(checks, compareChecks)
	return checks, nil
}

func compareChecks(a, b ir.ColumnCheck) int {
	return cmp.Or(
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Relation, b.Relation),
		cmp.Compare(a.Column, b.Column),
	)
}

// compileTables walks table: <name>: column: <col>: check.
func compileTables(v cue.Value) ([]ir.ColumnCheck, error) {
	if !v.Exists() {
		return nil, nil // tables are optional
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var checks []ir.ColumnCheck
	for iter.Next() {
		table := iter.Label()
		colsVal := iter.Value().LookupPath(cue.ParsePath("column"))
		if !colsVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("table.%s.column", table),
				Message: "table must declare at least one column",
				Pos:     iter.Value().Pos(),
			}
		}

		colIter, err := colsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for colIter.Next() {
			column := colIter.Label()
			text, err := checkText(colIter.Value(), fmt.Sprintf("table.%s.column.%s.check", table, column))
			if err != nil {
				return nil, err
			}
			checks = append(checks, ir.ColumnCheck{
				Kind:     ir.KindTable,
				Relation: table,
				Column:   column,
				Check:    text,
			})
		}
	}
	return checks, nil
}

// compileDomains walks domain: <name>: check.
func compileDomains(v cue.Value) ([]ir.ColumnCheck, error) {
	if !v.Exists() {
		return nil, nil // domains are optional
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var checks []ir.ColumnCheck
	for iter.Next() {
		domain := iter.Label()
		text, err := checkText(iter.Value(), fmt.Sprintf("domain.%s.check", domain))
		if err != nil {
			return nil, err
		}
		checks = append(checks, ir.ColumnCheck{
			Kind:     ir.KindDomain,
			Relation: domain,
			Column:   ir.DomainColumn,
			Check:    text,
		})
	}
	return checks, nil
}

// checkText reads the required check string of a column or domain.
func checkText(v cue.Value, field string) (string, error) {
	checkVal := v.LookupPath(cue.ParsePath("check"))
	if !checkVal.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: "check is required",
			Pos:     v.Pos(),
		}
	}
	if err := checkVal.Err(); err != nil {
		return "", formatCUEError(err)
	}
	text, err := checkVal.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: "check must be a string",
			Pos:     checkVal.Pos(),
		}
	}
	return text, nil
}
