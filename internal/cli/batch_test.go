package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgcheck/internal/engine"
	"github.com/roach88/pgcheck/internal/ir"
	"github.com/roach88/pgcheck/internal/store"
)

var specsDir = filepath.Join("testdata", "specs")

// writeSpec writes a single CUE file into a fresh directory.
func writeSpec(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.cue"), []byte(content), 0644))
	return dir
}

func TestBatchText(t *testing.T) {
	out, err := runCommand(t, NewBatchCommand(&RootOptions{Format: "text"}), specsDir)
	require.NoError(t, err)

	assert.Contains(t, out, "relation")
	assert.Contains(t, out, "{exclusiveMax: 10000}")
	assert.Contains(t, out, `{startsWith: "+1"}`)
	assert.Contains(t, out, `{oneOf: ["YES", "NO"]}`)
	assert.Contains(t, out, "unreduced")
	assert.Contains(t, out, "5 check(s)")
	assert.Contains(t, out, "4 reduced")
	assert.Contains(t, out, "1 unreduced")
	assert.Contains(t, out, "0 failed")
}

func TestBatchJSON(t *testing.T) {
	out, err := runCommand(t, NewBatchCommand(&RootOptions{Format: "json"}), specsDir, "--concurrency", "2")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   engine.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Data.RunID)
	assert.Equal(t, engine.Summary{Total: 5, Reduced: 4, Unreduced: 1}, resp.Data.Summary)

	// Sorted by kind, relation, column
	require.Len(t, resp.Data.Results, 5)
	assert.Equal(t, ir.KindDomain, resp.Data.Results[0].Kind)
	assert.Equal(t, "yes_no", resp.Data.Results[0].Relation)
	assert.Equal(t, "bio", resp.Data.Results[1].Column)
	assert.Equal(t, "word", resp.Data.Results[4].Column)
	assert.Equal(t, ir.OutcomeUnreduced, resp.Data.Results[4].Outcome)
}

func TestBatchFailedCheck(t *testing.T) {
	dir := writeSpec(t, `
package specs

table: flags: column: {
	score: check: "CHECK ((score > 0))"
	neg: check:   "CHECK ((NOT (neg = 1)))"
}
`)

	out, err := runCommand(t, NewBatchCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 check(s) failed")
	assert.Contains(t, out, "STRUCTURAL")
	assert.Contains(t, out, "1 failed")
}

func TestBatchFailedCheckJSON(t *testing.T) {
	dir := writeSpec(t, `
package specs

table: t: column: x: check: "CHECK ((NOT (x = 1)))"
`)

	out, err := runCommand(t, NewBatchCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string        `json:"status"`
		Data   engine.Report `json:"data"`
		Error  *CLIError     `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Summary.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeAnalysis, resp.Error.Code)
}

func TestBatchPersistsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pgcheck.db")

	_, err := runCommand(t, NewBatchCommand(&RootOptions{Format: "text"}), specsDir, "--db", dbPath)
	require.NoError(t, err)

	out, err := runCommand(t, NewBatchCommand(&RootOptions{Format: "text"}), specsDir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "5 cached")

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 0, runs[0].Cached)
	assert.Equal(t, 5, runs[1].Cached)
	assert.Less(t, runs[0].Seq, runs[1].Seq)
}

func TestBatchNonExistentDirectory(t *testing.T) {
	out, err := runCommand(t, NewBatchCommand(&RootOptions{Format: "text"}), "/nonexistent/specs")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "not found")
}

func TestFormatReport(t *testing.T) {
	results := []ir.Analysis{
		{
			ColumnCheck: ir.ColumnCheck{Kind: ir.KindTable, Relation: "users", Column: "bio"},
			Outcome:     ir.OutcomeReduced,
			Constraints: ir.Constraints{MaxLength: ir.Int(140)},
		},
		{
			ColumnCheck: ir.ColumnCheck{Kind: ir.KindTable, Relation: "users", Column: "nick"},
			Outcome:     ir.OutcomeError,
			Diagnostic:  "PARSE_FAILED: users.nick: syntax error",
			Cached:      false,
		},
	}

	out := formatReport(results)
	assert.Contains(t, out, "kind")
	assert.Contains(t, out, "relation")
	assert.Contains(t, out, "{maxLength: 140}")
	assert.Contains(t, out, "PARSE_FAILED: users.nick: syntax error")
	assert.Contains(t, out, "---")

	assert.Equal(t, "_No checks_\n", formatReport(nil))
}
