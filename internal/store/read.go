package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pgcheck/internal/ir"
	"github.com/roach88/pgcheck/internal/querysql"
)

// ErrNotFound is returned by ReadRun when no run has the given ID.
var ErrNotFound = errors.New("not found")

// LookupAnalysis returns the cached analysis for key.
// Rows written by another engine version count as misses.
//
// The returned Analysis has Check and Column set from the stored row;
// Kind and Relation are left for the caller to fill in.
func (s *Store) LookupAnalysis(ctx context.Context, key string) (ir.Analysis, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT check_def, column_name, outcome, constraints, diagnostic, engine_version
		FROM analyses
		WHERE key = ?
	`, key)

	var (
		a               ir.Analysis
		outcome         string
		constraintsJSON string
		engineVersion   string
	)
	err := row.Scan(&a.Check, &a.Column, &outcome, &constraintsJSON, &a.Diagnostic, &engineVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Analysis{}, false, nil
	}
	if err != nil {
		return ir.Analysis{}, false, fmt.Errorf("lookup analysis: %w", err)
	}
	if engineVersion != ir.EngineVersion {
		return ir.Analysis{}, false, nil
	}

	a.Outcome = ir.Outcome(outcome)
	a.Constraints, err = unmarshalConstraints(constraintsJSON)
	if err != nil {
		return ir.Analysis{}, false, fmt.Errorf("lookup analysis %s: %w", key, err)
	}
	return a, true, nil
}

// AnalysisFilter narrows ListAnalyses. Zero fields match everything.
type AnalysisFilter struct {
	Column  string
	Outcome ir.Outcome
}

func (f AnalysisFilter) predicate() querysql.Predicate {
	var column, outcome querysql.Predicate
	if f.Column != "" {
		column = querysql.Equals{Field: "column_name", Value: f.Column}
	}
	if f.Outcome != "" {
		outcome = querysql.Equals{Field: "outcome", Value: string(f.Outcome)}
	}
	return querysql.Where(column, outcome)
}

// ListAnalyses returns cached analyses matching filter.
// Results are ordered by seq ASC, key ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]ir.Analysis, error) {
	query, params, err := querysql.Compile(querysql.Select{
		From:    "analyses",
		Columns: []string{"check_def", "column_name", "outcome", "constraints", "diagnostic"},
		Filter:  filter.predicate(),
		OrderBy: []string{"seq", "key"},
	})
	if err != nil {
		return nil, fmt.Errorf("compile analyses query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	analyses := []ir.Analysis{}
	for rows.Next() {
		var (
			a               ir.Analysis
			outcome         string
			constraintsJSON string
		)
		if err := rows.Scan(&a.Check, &a.Column, &outcome, &constraintsJSON, &a.Diagnostic); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		a.Outcome = ir.Outcome(outcome)
		if a.Constraints, err = unmarshalConstraints(constraintsJSON); err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}

	return analyses, nil
}

// CountAnalyses returns the number of cached analyses.
func (s *Store) CountAnalyses(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return n, nil
}

// ReadRun returns the run with the given ID, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, total, reduced, unreduced, failed, cached, engine_version
		FROM runs
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Seq, &r.Total, &r.Reduced, &r.Unreduced, &r.Failed, &r.Cached, &r.EngineVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns all runs ordered by seq ASC, id ASC COLLATE BINARY.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	query, _, err := querysql.Compile(querysql.Select{
		From:    "runs",
		Columns: []string{"id", "seq", "total", "reduced", "unreduced", "failed", "cached", "engine_version"},
		OrderBy: []string{"seq", "id"},
	})
	if err != nil {
		return nil, fmt.Errorf("compile runs query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seq, &r.Total, &r.Reduced, &r.Unreduced, &r.Failed, &r.Cached, &r.EngineVersion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LastSeq returns the highest seq recorded in either table, or 0 for an
// empty store. The engine clock resumes from it.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM analyses), 0),
			COALESCE((SELECT MAX(seq) FROM runs), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}
