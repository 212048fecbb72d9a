package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgcheck/internal/ir"
	tu "github.com/roach88/pgcheck/internal/testutil"
)

func batchChecks() []ir.ColumnCheck {
	return []ir.ColumnCheck{
		check("bio", bioCheck),
		check("word", wordCheck),
		check("flag", notCheck),
		check("bio", brokenText),
	}
}

func TestAnalyzeBatch_KeepsInputOrder(t *testing.T) {
	for _, n := range []int{1, 2, 16} {
		e := New(testParser(),
			WithConcurrency(n),
			WithRunIDGenerator(NewFixedGenerator("run-1")),
			WithLogger(discardLogger()),
		)

		report, err := e.AnalyzeBatch(context.Background(), batchChecks())
		require.NoError(t, err)

		require.Len(t, report.Results, 4)
		assert.Equal(t, "run-1", report.RunID)
		assert.Equal(t, ir.OutcomeReduced, report.Results[0].Outcome)
		assert.Equal(t, ir.OutcomeUnreduced, report.Results[1].Outcome)
		assert.Equal(t, ir.OutcomeError, report.Results[2].Outcome)
		assert.Equal(t, ir.OutcomeError, report.Results[3].Outcome)
		for i, cc := range batchChecks() {
			assert.Equal(t, cc, report.Results[i].ColumnCheck, "concurrency %d, row %d", n, i)
		}
	}
}

func TestAnalyzeBatch_Summary(t *testing.T) {
	e := New(testParser(), WithRunIDGenerator(NewFixedGenerator("run-1")), WithLogger(discardLogger()))

	report, err := e.AnalyzeBatch(context.Background(), batchChecks())
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 4, Reduced: 1, Unreduced: 1, Failed: 2}, report.Summary)
}

func TestAnalyzeBatch_RepeatedRunsSameEngine(t *testing.T) {
	e := New(testParser(), WithRunIDGenerator(tu.NewFixedRunIDGenerator("run-fixed")), WithLogger(discardLogger()))

	var first *Report
	for i := 0; i < 3; i++ {
		report, err := e.AnalyzeBatch(context.Background(), batchChecks())
		require.NoError(t, err)
		assert.Equal(t, "run-fixed", report.RunID)
		if first == nil {
			first = report
			continue
		}
		assert.Equal(t, first.Summary, report.Summary)
		assert.Equal(t, first.Results, report.Results)
	}
}

func TestAnalyzeBatch_Empty(t *testing.T) {
	e := New(testParser(), WithRunIDGenerator(NewFixedGenerator("run-1")), WithLogger(discardLogger()))

	report, err := e.AnalyzeBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Equal(t, Summary{}, report.Summary)
}

func TestAnalyzeBatch_PersistsRunAndCounts(t *testing.T) {
	s := setupTestStore(t)
	e := New(testParser(),
		WithStore(s),
		WithRunIDGenerator(NewFixedGenerator("run-1", "run-2")),
		WithLogger(discardLogger()),
	)
	ctx := context.Background()

	_, err := e.AnalyzeBatch(ctx, batchChecks())
	require.NoError(t, err)
	second, err := e.AnalyzeBatch(ctx, batchChecks())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Summary.Cached, "reduced and unreduced rows come from the cache")

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, "run-2", runs[1].ID)
	assert.Equal(t, 4, runs[1].Total)
	assert.Equal(t, 2, runs[1].Failed)
	assert.Equal(t, 2, runs[1].Cached)
	assert.Less(t, runs[0].Seq, runs[1].Seq)
}

func TestAnalyzeBatch_Cancelled(t *testing.T) {
	s := setupTestStore(t)
	e := New(testParser(),
		WithStore(s),
		WithRunIDGenerator(NewFixedGenerator("run-1")),
		WithLogger(discardLogger()),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.AnalyzeBatch(ctx, batchChecks())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs, "cancelled batches are not recorded")
}
