package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/pgcheck/internal/ir"
	"github.com/roach88/pgcheck/internal/store"
)

// Report is the outcome of one batch run.
type Report struct {
	RunID   string        `json:"run_id"`
	Results []ir.Analysis `json:"results"` // same order as the input checks
	Summary Summary       `json:"summary"`
}

// Summary counts batch outcomes.
type Summary struct {
	Total     int `json:"total"`
	Reduced   int `json:"reduced"`
	Unreduced int `json:"unreduced"`
	Failed    int `json:"failed"`
	Cached    int `json:"cached"`
}

// add counts one analysis.
func (s *Summary) add(a ir.Analysis) {
	s.Total++
	switch a.Outcome {
	case ir.OutcomeReduced:
		s.Reduced++
	case ir.OutcomeUnreduced:
		s.Unreduced++
	default:
		s.Failed++
	}
	if a.Cached {
		s.Cached++
	}
}

// AnalyzeBatch analyzes checks on a bounded worker pool.
//
// Results keep input order. A check that fails to parse or canonicalize
// becomes an Outcome error row; it does not stop the batch. Cancelling ctx
// stops scheduling new checks and returns ctx.Err() once in-flight workers
// finish. With a store configured the run summary is persisted.
func (e *Engine) AnalyzeBatch(ctx context.Context, checks []ir.ColumnCheck) (*Report, error) {
	report := &Report{
		RunID:   e.runIDs.Generate(),
		Results: make([]ir.Analysis, len(checks)),
	}
	e.logger.Info("batch starting", "run_id", report.RunID, "checks", len(checks), "concurrency", e.concurrency)

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, cc := range checks {
		if ctx.Err() != nil {
			break
		}
		// Go blocks while e.concurrency workers are busy
		g.Go(func() error {
			// per-check errors are carried in the row
			a, _ := e.Analyze(ctx, cc)
			report.Results[i] = a
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		e.logger.Info("batch cancelled", "run_id", report.RunID)
		return nil, err
	}

	for _, a := range report.Results {
		report.Summary.add(a)
	}

	if e.store != nil {
		if err := e.resumeClock(ctx); err != nil {
			return nil, fmt.Errorf("resume clock: %w", err)
		}
		run := store.Run{
			ID:        report.RunID,
			Seq:       e.clock.Next(),
			Total:     report.Summary.Total,
			Reduced:   report.Summary.Reduced,
			Unreduced: report.Summary.Unreduced,
			Failed:    report.Summary.Failed,
			Cached:    report.Summary.Cached,
		}
		if err := e.store.WriteRun(ctx, run); err != nil {
			return nil, fmt.Errorf("write run %s: %w", report.RunID, err)
		}
	}

	e.logger.Info("batch complete",
		"run_id", report.RunID,
		"total", report.Summary.Total,
		"reduced", report.Summary.Reduced,
		"unreduced", report.Summary.Unreduced,
		"failed", report.Summary.Failed,
		"cached", report.Summary.Cached,
	)
	return report, nil
}
