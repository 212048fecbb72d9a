package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonText(t *testing.T) {
	tests := []struct {
		name  string
		check string
		want  string
	}{
		{"length bound", "CHECK ((length(bio) < 10000))", "(length(bio) < 10000)"},
		{"casts dropped", "CHECK (((email)::text ~* '^.+$'::text))", "(email ~* '^.+$')"},
		{"any array", "CHECK ((kind = ANY (ARRAY['a'::text, 'b'::text])))", "(kind = ANY (ARRAY['a', 'b']))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, NewCanonCommand(&RootOptions{Format: "text"}), tt.check)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestCanonSimplifyJSON(t *testing.T) {
	decode := func(out string) CanonResult {
		var resp struct {
			Status string      `json:"status"`
			Data   CanonResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.Equal(t, "ok", resp.Status)
		return resp.Data
	}

	out, err := runCommand(t, NewCanonCommand(&RootOptions{Format: "json"}), "CHECK ((length(name) > 0))")
	require.NoError(t, err)
	plain := decode(out)
	assert.Contains(t, string(plain.Tree), `"kind":"func"`)

	out, err = runCommand(t, NewCanonCommand(&RootOptions{Format: "json"}), "CHECK ((length(name) > 0))", "--simplify")
	require.NoError(t, err)
	simplified := decode(out)
	assert.Contains(t, string(simplified.Tree), `{"column":"name","kind":"len"}`)

	// Same text, different trees
	assert.Equal(t, plain.Text, simplified.Text)
	assert.NotEqual(t, plain.Hash, simplified.Hash)
	assert.Len(t, plain.Hash, 64)
}

func TestCanonStructuralError(t *testing.T) {
	out, err := runCommand(t, NewCanonCommand(&RootOptions{Format: "text"}), "CHECK ((x IS NOT NULL))")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "structural error")
}

func TestCanonParseError(t *testing.T) {
	_, err := runCommand(t, NewCanonCommand(&RootOptions{Format: "text"}), "CHECK (x >")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "parse failed")
}
