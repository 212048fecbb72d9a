package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/pgcheck/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	return createTestStoreAt(t, filepath.Join(t.TempDir(), "test.db"))
}

// createTestStoreAt opens path and closes it when the test ends.
func createTestStoreAt(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestAnalysis creates a reduced analysis for a column.
func createTestAnalysis(check, column string, c ir.Constraints) ir.Analysis {
	return ir.Analysis{
		ColumnCheck: ir.ColumnCheck{
			Kind:     ir.KindTable,
			Relation: "users",
			Column:   column,
			Check:    check,
		},
		Outcome:     ir.OutcomeReduced,
		Constraints: c,
	}
}
