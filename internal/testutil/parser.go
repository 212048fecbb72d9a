package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/pgcheck/internal/pgast"
)

// StubParser maps CHECK text to prebuilt raw trees so engine tests run
// without cgo. It records how often each text was parsed.
//
// Thread-safety: all methods are safe for concurrent use.
type StubParser struct {
	mu     sync.Mutex
	trees  map[string]*pgast.Node
	errs   map[string]error
	counts map[string]int
}

// NewStubParser creates a parser with no known clauses.
func NewStubParser() *StubParser {
	return &StubParser{
		trees:  make(map[string]*pgast.Node),
		errs:   make(map[string]error),
		counts: make(map[string]int),
	}
}

// Add registers the tree returned for def.
func (p *StubParser) Add(def string, tree *pgast.Node) *StubParser {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trees[def] = tree
	return p
}

// Fail registers an error returned for def.
func (p *StubParser) Fail(def string, err error) *StubParser {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[def] = err
	return p
}

// ParseCheck implements engine.Parser.
// Unregistered text yields an error, like a syntax error would.
func (p *StubParser) ParseCheck(ctx context.Context, def string) (*pgast.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[def]++
	if err, ok := p.errs[def]; ok {
		return nil, err
	}
	tree, ok := p.trees[def]
	if !ok {
		return nil, fmt.Errorf("syntax error: no tree registered for %q", def)
	}
	return tree, nil
}

// Calls returns how many times def was parsed.
func (p *StubParser) Calls(def string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[def]
}
