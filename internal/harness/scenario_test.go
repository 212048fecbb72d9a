package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgcheck/internal/ir"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "test.yaml", `
name: test_scenario
description: "Test scenario for validation"
cases:
  - name: upper bound
    column: bio
    check: "CHECK (length(bio) < 10000)"
    expect:
      constraints: { exclusiveMax: 10000 }
  - column: word
    expr:
      ColumnRef: { fields: [{ String: { sval: word } }] }
    expect:
      unreduced: true
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	require.Len(t, scenario.Cases, 2)
	assert.Equal(t, "CHECK (length(bio) < 10000)", scenario.Cases[0].Check)
	require.NotNil(t, scenario.Cases[0].Expect.Constraints)
	assert.True(t, scenario.Cases[0].Expect.Constraints.Equal(ir.Constraints{ExclusiveMax: ir.Int(10000)}))
	assert.NotNil(t, scenario.Cases[1].Expr)
	assert.True(t, scenario.Cases[1].Expect.Unreduced)
}

func TestLoadScenario_EmptyOneOfIsNotAbsent(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "test.yaml", `
name: empty_one_of
cases:
  - column: value
    check: "CHECK (VALUE = ANY (ARRAY[]::text[]))"
    expect:
      constraints: { oneOf: [] }
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	got := scenario.Cases[0].Expect.Constraints
	require.NotNil(t, got)
	assert.NotNil(t, got.OneOf)
	assert.Empty(t, got.OneOf)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
cases:
  - { column: x, check: "CHECK (x > 0)", expect: { unreduced: true } }
`,
			wantErr: "name is required",
		},
		{
			name:    "no cases",
			content: `name: empty`,
			wantErr: "at least one case is required",
		},
		{
			name: "missing column",
			content: `
name: s
cases:
  - { check: "CHECK (x > 0)", expect: { unreduced: true } }
`,
			wantErr: "cases[0]: column is required",
		},
		{
			name: "both check and expr",
			content: `
name: s
cases:
  - name: both
    column: x
    check: "CHECK (x > 0)"
    expr: { ColumnRef: { fields: [] } }
    expect: { unreduced: true }
`,
			wantErr: "both: exactly one of check or expr",
		},
		{
			name: "neither check nor expr",
			content: `
name: s
cases:
  - { column: x, expect: { unreduced: true } }
`,
			wantErr: "exactly one of check or expr",
		},
		{
			name: "no expectation",
			content: `
name: s
cases:
  - { column: x, check: "CHECK (x > 0)", expect: {} }
`,
			wantErr: "expect must name exactly one",
		},
		{
			name: "two expectations",
			content: `
name: s
cases:
  - { column: x, check: "CHECK (x > 0)", expect: { unreduced: true, structural: true } }
`,
			wantErr: "expect must name exactly one",
		},
		{
			name: "unknown field",
			content: `
name: s
cases:
  - { column: x, check: "CHECK (x > 0)", expects: { unreduced: true } }
`,
			wantErr: "failed to parse YAML",
		},
		{
			name: "unknown constraint key",
			content: `
name: s
cases:
  - { column: x, check: "CHECK (x > 0)", expect: { constraints: { minimum: 1 } } }
`,
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt", "nested/c.yaml"} {
		writeScenario(t, dir, name, "name: x")
	}

	files, err := FindScenarios(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yaml"),
	}, files)

	filtered, err := FindScenarios(dir, "b*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yaml")}, filtered)

	_, err = FindScenarios(dir, "[")
	assert.Error(t, err)
}

func TestLoadScenario_Testdata(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		_, err := LoadScenario(f)
		assert.NoError(t, err, f)
	}
}
