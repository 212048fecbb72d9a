// Package simplify folds recognized call shapes in a canonical tree into
// dedicated semantic nodes.
//
// Currently the only rewrite is length(column) → Length{column}, so later
// passes ask "is this the length of a column" instead of "is this a call
// named length".
package simplify

import "github.com/roach88/pgcheck/internal/ir"

// LengthFunc is the function name folded into ir.Length.
const LengthFunc = "length"

// Simplify rewrites n post-order: children are simplified before their
// parent is inspected. It never fails and is idempotent.
func Simplify(n ir.Node) ir.Node {
	switch v := n.(type) {
	case ir.BinOp:
		return ir.BinOp{Op: v.Op, Left: Simplify(v.Left), Right: Simplify(v.Right)}
	case ir.Func:
		f := ir.Func{Name: v.Name, Args: simplifyAll(v.Args)}
		if l, ok := AsLength(f); ok {
			return l
		}
		return f
	case ir.Arr:
		return ir.Arr{Elements: simplifyAll(v.Elements)}
	default:
		return n
	}
}

// AsLength reports whether n is length(ref) and returns the folded node.
func AsLength(n ir.Node) (ir.Length, bool) {
	f, ok := n.(ir.Func)
	if !ok || f.Name != LengthFunc || len(f.Args) != 1 {
		return ir.Length{}, false
	}
	ref, ok := f.Args[0].(ir.Ref)
	if !ok {
		return ir.Length{}, false
	}
	return ir.Length{Column: ref.Name}, true
}

func simplifyAll(nodes []ir.Node) []ir.Node {
	if nodes == nil {
		return nil
	}
	out := make([]ir.Node, len(nodes))
	for i, c := range nodes {
		out[i] = Simplify(c)
	}
	return out
}
