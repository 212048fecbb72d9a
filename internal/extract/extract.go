// Package extract folds a canonical tree into a declarative constraint
// record for one column.
//
// The fold is post-order. After a node's children are folded the node is
// tested against an ordered catalogue of single-column predicate shapes;
// the first shape that matches replaces the node with an ir.ConstraintExpr.
// Conjunctions of two records are merged with Merge. Extraction succeeds
// only if the root folds to a record. A predicate about another column, or
// a shape outside the catalogue, leaves the tree unreduced: a weaker record
// is never substituted.
package extract

import (
	"strings"

	"github.com/roach88/pgcheck/internal/ir"
	"github.com/roach88/pgcheck/internal/simplify"
)

// LIKE metacharacters.
const (
	likeAny    = "%"
	likeOne    = "_"
	likeEscape = `\`
)

// rule rewrites n into a reduced node, or reports false.
type rule func(n ir.Node, column string) (ir.Node, bool)

// catalogue is tried top to bottom at every node. Length rules precede
// value rules.
var catalogue = []rule{
	lengthCall,
	lengthCompare,
	conjunction,
	regexMatch,
	nonEmpty,
	valueCompare,
	likeAffix,
	oneOf,
}

// Extract folds node into constraints for column. If the tree does not
// reduce, the error is an *UnreducedError carrying the residual.
func Extract(node ir.Node, column string) (ir.Constraints, error) {
	if node == nil {
		return ir.Constraints{}, &UnreducedError{Column: column}
	}
	result := fold(node, column)
	if c, ok := result.(ir.ConstraintExpr); ok {
		return c.Constraints, nil
	}
	return ir.Constraints{}, &UnreducedError{Column: column, Residual: result}
}

func fold(n ir.Node, column string) ir.Node {
	switch v := n.(type) {
	case ir.BinOp:
		n = ir.BinOp{Op: v.Op, Left: fold(v.Left, column), Right: fold(v.Right, column)}
	case ir.Func:
		n = ir.Func{Name: v.Name, Args: foldAll(v.Args, column)}
	case ir.Arr:
		n = ir.Arr{Elements: foldAll(v.Elements, column)}
	}
	return reduce(n, column)
}

func foldAll(nodes []ir.Node, column string) []ir.Node {
	if nodes == nil {
		return nil
	}
	out := make([]ir.Node, len(nodes))
	for i, c := range nodes {
		out[i] = fold(c, column)
	}
	return out
}

func reduce(n ir.Node, column string) ir.Node {
	for _, r := range catalogue {
		if out, ok := r(n, column); ok {
			return out
		}
	}
	return n
}

func reduced(c ir.Constraints) (ir.Node, bool) {
	return ir.ConstraintExpr{Constraints: c}, true
}

// lengthCall folds length(column) even when the simplifier has not run.
func lengthCall(n ir.Node, column string) (ir.Node, bool) {
	l, ok := simplify.AsLength(n)
	if !ok || l.Column != column {
		return nil, false
	}
	return l, true
}

// lengthCompare: length(column) op int. Strict comparisons keep their
// exclusive bound rather than shifting it by one.
func lengthCompare(n ir.Node, column string) (ir.Node, bool) {
	op, ok := n.(ir.BinOp)
	if !ok {
		return nil, false
	}
	l, ok := op.Left.(ir.Length)
	if !ok || l.Column != column {
		return nil, false
	}
	v, ok := op.Right.(ir.IntConst)
	if !ok {
		return nil, false
	}

	switch op.Op {
	case ir.OpLess:
		return reduced(ir.Constraints{ExclusiveMax: ir.Int(v.Value)})
	case ir.OpLessEqual:
		return reduced(ir.Constraints{MaxLength: ir.Int(v.Value)})
	case ir.OpGreater:
		return reduced(ir.Constraints{ExclusiveMin: ir.Int(v.Value)})
	case ir.OpGreaterEqual:
		return reduced(ir.Constraints{MinLength: ir.Int(v.Value)})
	case ir.OpEqual:
		return reduced(ir.Constraints{MinLength: ir.Int(v.Value), MaxLength: ir.Int(v.Value)})
	default:
		return nil, false
	}
}

// conjunction merges AND of two records. OR is never merged.
func conjunction(n ir.Node, _ string) (ir.Node, bool) {
	op, ok := n.(ir.BinOp)
	if !ok || op.Op != ir.OpAnd {
		return nil, false
	}
	l, lok := op.Left.(ir.ConstraintExpr)
	r, rok := op.Right.(ir.ConstraintExpr)
	if !lok || !rok {
		return nil, false
	}
	merged, ok := Merge(l.Constraints, r.Constraints)
	if !ok {
		return nil, false
	}
	return reduced(merged)
}

// regexMatch: column ~* 'pattern'. Case-insensitivity is not tracked.
func regexMatch(n ir.Node, column string) (ir.Node, bool) {
	s, ok := columnOpStr(n, column, ir.OpRegexIMatch)
	if !ok {
		return nil, false
	}
	return reduced(ir.Constraints{Pattern: ir.Str(s)})
}

// nonEmpty: column <> ''.
func nonEmpty(n ir.Node, column string) (ir.Node, bool) {
	s, ok := columnOpStr(n, column, ir.OpNotEqual)
	if !ok || s != "" {
		return nil, false
	}
	return reduced(ir.Constraints{MinLength: ir.Int(1)})
}

// valueCompare: column op int.
func valueCompare(n ir.Node, column string) (ir.Node, bool) {
	op, ok := n.(ir.BinOp)
	if !ok || !isColumn(op.Left, column) {
		return nil, false
	}
	v, ok := op.Right.(ir.IntConst)
	if !ok {
		return nil, false
	}

	switch op.Op {
	case ir.OpLess:
		return reduced(ir.Constraints{ExclusiveMax: ir.Int(v.Value)})
	case ir.OpLessEqual:
		return reduced(ir.Constraints{Max: ir.Int(v.Value)})
	case ir.OpGreater:
		return reduced(ir.Constraints{ExclusiveMin: ir.Int(v.Value)})
	case ir.OpGreaterEqual:
		return reduced(ir.Constraints{Min: ir.Int(v.Value)})
	case ir.OpEqual:
		return reduced(ir.Constraints{Equals: ir.Int(v.Value)})
	default:
		return nil, false
	}
}

// likeAffix: column LIKE 'prefix%' or column LIKE '%suffix'. The pattern
// must contain exactly one wildcard and no escape character.
func likeAffix(n ir.Node, column string) (ir.Node, bool) {
	p, ok := columnOpStr(n, column, ir.OpLike)
	if !ok || strings.Contains(p, likeEscape) {
		return nil, false
	}
	if strings.Count(p, likeAny)+strings.Count(p, likeOne) != 1 {
		return nil, false
	}

	switch {
	case strings.HasSuffix(p, likeAny):
		return reduced(ir.Constraints{StartsWith: ir.Str(strings.TrimSuffix(p, likeAny))})
	case strings.HasPrefix(p, likeAny):
		return reduced(ir.Constraints{EndsWith: ir.Str(strings.TrimPrefix(p, likeAny))})
	default:
		return nil, false
	}
}

// oneOf: column = ANY (ARRAY['a', 'b', ...]) with only string elements.
func oneOf(n ir.Node, column string) (ir.Node, bool) {
	op, ok := n.(ir.BinOp)
	if !ok || op.Op != ir.OpEqual || !isColumn(op.Left, column) {
		return nil, false
	}
	f, ok := op.Right.(ir.Func)
	if !ok || f.Name != ir.FuncAny || len(f.Args) != 1 {
		return nil, false
	}
	arr, ok := f.Args[0].(ir.Arr)
	if !ok {
		return nil, false
	}

	values := make([]string, 0, len(arr.Elements))
	for _, e := range arr.Elements {
		s, ok := e.(ir.StrConst)
		if !ok {
			return nil, false
		}
		values = append(values, s.Value)
	}
	return reduced(ir.Constraints{OneOf: values})
}

// columnOpStr matches `column op 'literal'` and returns the literal.
func columnOpStr(n ir.Node, column string, want ir.Operator) (string, bool) {
	op, ok := n.(ir.BinOp)
	if !ok || op.Op != want || !isColumn(op.Left, column) {
		return "", false
	}
	s, ok := op.Right.(ir.StrConst)
	if !ok {
		return "", false
	}
	return s.Value, true
}

func isColumn(n ir.Node, column string) bool {
	ref, ok := n.(ir.Ref)
	return ok && ref.Name == column
}
