package engine

import (
	"github.com/roach88/pgcheck/internal/canon"
	"github.com/roach88/pgcheck/internal/extract"
	"github.com/roach88/pgcheck/internal/ir"
	"github.com/roach88/pgcheck/internal/pgast"
	"github.com/roach88/pgcheck/internal/simplify"
)

// Convert turns a raw CHECK expression into a constraint record for column.
//
// Errors are returned unwrapped: *canon.StructuralError when the tree has an
// unsupported shape, *extract.UnreducedError when it has no declarative
// equivalent. Convert is pure and safe for concurrent use.
func Convert(raw *pgast.Node, column string) (ir.Constraints, error) {
	tree, err := canon.Canonicalize(raw)
	if err != nil {
		return ir.Constraints{}, err
	}
	return extract.Extract(simplify.Simplify(tree), column)
}
