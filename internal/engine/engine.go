package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/roach88/pgcheck/internal/canon"
	"github.com/roach88/pgcheck/internal/extract"
	"github.com/roach88/pgcheck/internal/ir"
	"github.com/roach88/pgcheck/internal/pgast"
	"github.com/roach88/pgcheck/internal/store"
)

// Parser turns CHECK clause text into a raw pg_query tree.
// Implemented by pgparse.Parser.
type Parser interface {
	ParseCheck(ctx context.Context, def string) (*pgast.Node, error)
}

// RunIDGenerator generates unique batch run IDs.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type RunIDGenerator interface {
	Generate() string
}

// DefaultConcurrency is the default number of batch workers.
const DefaultConcurrency = 4

// Engine analyzes CHECK clauses, optionally memoizing results in a store.
//
// Thread-safety: Analyze and AnalyzeBatch are safe from any goroutine.
// The store serializes writes through its single connection.
type Engine struct {
	parser      Parser
	store       *store.Store
	clock       *Clock
	runIDs      RunIDGenerator
	concurrency int
	logger      *slog.Logger

	// clock resumes from the store's last seq on first use
	clockMu    sync.Mutex
	clockReady bool
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithStore enables memoization of analyses and persistence of batch runs.
func WithStore(s *store.Store) EngineOption {
	return func(e *Engine) {
		e.store = s
	}
}

// WithConcurrency sets the number of batch workers.
// Values below 1 are treated as 1.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		e.concurrency = max(n, 1)
	}
}

// WithRunIDGenerator replaces the default UUIDv7 run IDs.
func WithRunIDGenerator(g RunIDGenerator) EngineOption {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock uses a pre-configured clock instead of resuming from the store.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
		e.clockReady = true
	}
}

// New creates an Engine that parses clauses with parser.
func New(parser Parser, opts ...EngineOption) *Engine {
	e := &Engine{
		parser:      parser,
		clock:       NewClock(),
		runIDs:      UUIDv7Generator{},
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs one check through the pipeline.
//
// With a store configured, a cached analysis for the same (check, column)
// pair is returned with Cached set and the parser is never called. Reduced
// and unreduced outcomes are written back; errors never are.
//
// On error the returned Analysis has Outcome error and the error text as
// its diagnostic, so batch callers can keep it as a row.
func (e *Engine) Analyze(ctx context.Context, cc ir.ColumnCheck) (ir.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return failed(cc, err), err
	}

	key, err := ir.AnalysisKey(cc.Check, cc.Column)
	if err != nil {
		return failed(cc, err), err
	}

	if e.store != nil {
		cached, ok, err := e.store.LookupAnalysis(ctx, key)
		if err != nil {
			return e.fail(cc, ErrCodeStoreFailed, err)
		}
		if ok {
			cached.ColumnCheck = cc
			cached.Cached = true
			e.logAnalysis(cached)
			return cached, nil
		}
	}

	raw, err := e.parser.ParseCheck(ctx, cc.Check)
	if err != nil {
		return e.fail(cc, ErrCodeParseFailed, err)
	}

	a := ir.Analysis{ColumnCheck: cc}
	c, err := Convert(raw, cc.Column)
	var ue *extract.UnreducedError
	switch {
	case err == nil:
		a.Outcome = ir.OutcomeReduced
		a.Constraints = c
	case errors.As(err, &ue):
		a.Outcome = ir.OutcomeUnreduced
		a.Diagnostic = ue.Diagnostic()
	case canon.IsStructural(err):
		return e.fail(cc, ErrCodeStructural, err)
	default:
		return failed(cc, err), err
	}

	if e.store != nil {
		if err := e.resumeClock(ctx); err != nil {
			return e.fail(cc, ErrCodeStoreFailed, err)
		}
		if err := e.store.WriteAnalysis(ctx, key, e.clock.Next(), a); err != nil {
			return e.fail(cc, ErrCodeStoreFailed, err)
		}
	}

	e.logAnalysis(a)
	return a, nil
}

// resumeClock moves the clock past every seq already in the store so
// stamps stay increasing across processes sharing one database.
func (e *Engine) resumeClock(ctx context.Context) error {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()

	if e.clockReady || e.store == nil {
		return nil
	}
	last, err := e.store.LastSeq(ctx)
	if err != nil {
		return err
	}
	e.clock.AdvanceTo(last)
	e.clockReady = true
	return nil
}

func (e *Engine) fail(cc ir.ColumnCheck, code AnalysisErrorCode, err error) (ir.Analysis, error) {
	ae := &AnalysisError{Code: code, Relation: cc.Relation, Column: cc.Column, Err: err}
	e.logger.Debug("analysis failed",
		"relation", cc.Relation,
		"column", cc.Column,
		"code", string(code),
		"error", err,
	)
	return failed(cc, ae), ae
}

func failed(cc ir.ColumnCheck, err error) ir.Analysis {
	return ir.Analysis{ColumnCheck: cc, Outcome: ir.OutcomeError, Diagnostic: err.Error()}
}

func (e *Engine) logAnalysis(a ir.Analysis) {
	e.logger.Debug("analyzed check",
		"relation", a.Relation,
		"column", a.Column,
		"outcome", string(a.Outcome),
		"cached", a.Cached,
	)
}
