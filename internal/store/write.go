package store

import (
	"context"
	"fmt"

	"github.com/roach88/pgcheck/internal/ir"
)

// Run is the summary row of one batch run.
type Run struct {
	ID            string
	Seq           int64
	Total         int
	Reduced       int
	Unreduced     int
	Failed        int
	Cached        int
	EngineVersion string
}

// WriteAnalysis upserts an analysis under key.
// Only reduced and unreduced outcomes are cacheable; errors are rejected.
//
// The constraint record is serialized to canonical JSON per RFC 8785.
func (s *Store) WriteAnalysis(ctx context.Context, key string, seq int64, a ir.Analysis) error {
	if a.Outcome != ir.OutcomeReduced && a.Outcome != ir.OutcomeUnreduced {
		return fmt.Errorf("write analysis: outcome %q is not cacheable", a.Outcome)
	}

	constraintsJSON, err := marshalConstraints(a.Constraints)
	if err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses
		(key, check_def, column_name, outcome, constraints, diagnostic, engine_version, ir_version, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			outcome = excluded.outcome,
			constraints = excluded.constraints,
			diagnostic = excluded.diagnostic,
			engine_version = excluded.engine_version,
			ir_version = excluded.ir_version,
			seq = excluded.seq
	`,
		key,
		a.Check,
		a.Column,
		string(a.Outcome),
		constraintsJSON,
		a.Diagnostic,
		ir.EngineVersion,
		ir.IRVersion,
		seq,
	)
	if err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}

	return nil
}

// WriteRun inserts a run summary.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, r Run) error {
	version := r.EngineVersion
	if version == "" {
		version = ir.EngineVersion
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, total, reduced, unreduced, failed, cached, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.Seq,
		r.Total,
		r.Reduced,
		r.Unreduced,
		r.Failed,
		r.Cached,
		version,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}
