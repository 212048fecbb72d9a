package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pgcheck/internal/engine"
	"github.com/roach88/pgcheck/internal/ir"
)

// Snapshot captures every case outcome of a scenario.
// Serialized with canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Cases        []CaseResult
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization, since ir.MarshalCanonical only handles maps and primitives.
func (s *Snapshot) toCanonicalMap() map[string]any {
	cases := make([]any, len(s.Cases))
	for i, c := range s.Cases {
		m := map[string]any{
			"name":    c.Name,
			"column":  c.Column,
			"outcome": c.Outcome,
		}
		if c.Outcome == OutcomeReduced {
			m["constraints"] = c.Constraints.Fields()
		}
		if c.Diagnostic != "" {
			m["diagnostic"] = c.Diagnostic
		}
		cases[i] = m
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"cases":         cases,
	}
}

// MarshalSnapshot renders a result as canonical JSON.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: name, Cases: result.Cases}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden runs a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also assert on Pass. Test failure
// (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, parser engine.Parser) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, parser)
	if err != nil {
		return nil, err
	}

	snapshot, err := MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return result, nil
}
