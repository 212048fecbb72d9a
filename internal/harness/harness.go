package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/pgcheck/internal/canon"
	"github.com/roach88/pgcheck/internal/engine"
	"github.com/roach88/pgcheck/internal/extract"
	"github.com/roach88/pgcheck/internal/pgast"
)

// Run evaluates every case of a scenario and returns the result.
//
// parser is only needed for cases given as SQL text; it may be nil when
// every case carries an expr tree. A check case with no parser fails that
// case rather than the whole run. The returned error is reserved for
// scenarios that cannot be evaluated at all.
func Run(scenario *Scenario, parser engine.Parser) (*Result, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is nil")
	}

	ctx := context.Background()
	result := NewResult()

	for i, c := range scenario.Cases {
		cr := evaluate(ctx, c, i, parser)
		if msg := mismatch(c, cr); msg != "" {
			result.AddError(fmt.Sprintf("%s (column %s): %s", cr.Name, c.Column, msg))
		} else {
			cr.Pass = true
		}
		result.Cases = append(result.Cases, cr)
	}

	return result, nil
}

// evaluate runs one case through the pipeline.
func evaluate(ctx context.Context, c Case, index int, parser engine.Parser) CaseResult {
	cr := CaseResult{Name: c.label(index), Column: c.Column}

	raw, err := rawTree(ctx, c, parser)
	if err != nil {
		cr.Outcome = OutcomeError
		cr.Diagnostic = err.Error()
		return cr
	}

	constraints, err := engine.Convert(raw, c.Column)
	var ue *extract.UnreducedError
	switch {
	case err == nil:
		cr.Outcome = OutcomeReduced
		cr.Constraints = constraints
	case errors.As(err, &ue):
		cr.Outcome = OutcomeUnreduced
		cr.Diagnostic = ue.Diagnostic()
	case canon.IsStructural(err):
		cr.Outcome = OutcomeStructural
		cr.Diagnostic = err.Error()
	default:
		cr.Outcome = OutcomeError
		cr.Diagnostic = err.Error()
	}
	return cr
}

// rawTree produces the pg_query tree of a case.
func rawTree(ctx context.Context, c Case, parser engine.Parser) (*pgast.Node, error) {
	if c.Expr != nil {
		data, err := json.Marshal(c.Expr)
		if err != nil {
			return nil, fmt.Errorf("encode expr: %w", err)
		}
		return pgast.Decode(data)
	}
	if parser == nil {
		return nil, fmt.Errorf("check %q needs a parser", c.Check)
	}
	return parser.ParseCheck(ctx, c.Check)
}

// mismatch describes how a result differs from the expectation, or
// returns "" when it matches.
func mismatch(c Case, cr CaseResult) string {
	switch {
	case c.Expect.Constraints != nil:
		if cr.Outcome != OutcomeReduced {
			return fmt.Sprintf("expected constraints %s, got %s: %s", c.Expect.Constraints, cr.Outcome, cr.Diagnostic)
		}
		if !c.Expect.Constraints.Equal(cr.Constraints) {
			return fmt.Sprintf("expected constraints %s, got %s", c.Expect.Constraints, cr.Constraints)
		}
	case c.Expect.Unreduced:
		if cr.Outcome != OutcomeUnreduced {
			return fmt.Sprintf("expected unreduced, got %s %s", cr.Outcome, describe(cr))
		}
	case c.Expect.Structural:
		if cr.Outcome != OutcomeStructural {
			return fmt.Sprintf("expected structural error, got %s %s", cr.Outcome, describe(cr))
		}
	}
	return ""
}

func describe(cr CaseResult) string {
	if cr.Outcome == OutcomeReduced {
		return cr.Constraints.String()
	}
	return cr.Diagnostic
}
