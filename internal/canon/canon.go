// Package canon maps raw pg_query trees onto the canonical expression tree.
//
// Dispatch is on the node's tag. Every recognized shape has exactly one
// canonical form; anything else is a StructuralError carrying the raw node.
// The pass is a pure recursive descent with output linear in input size.
package canon

import (
	"fmt"
	"strings"

	"github.com/roach88/pgcheck/internal/ir"
	"github.com/roach88/pgcheck/internal/pgast"
)

// Like operators as pg_query names them.
const (
	opLike    = "~~"
	opNotLike = "!~~"
)

// Canonicalize converts one raw node into a canonical tree.
func Canonicalize(n *pgast.Node) (ir.Node, error) {
	if n == nil {
		return nil, &StructuralError{Reason: "missing node"}
	}

	switch e := n.Expr.(type) {
	case *pgast.AConst:
		return constant(n, e)
	case *pgast.TypeCast:
		// Casts are transparent for constraint purposes.
		if e.Arg == nil {
			return nil, fail(n, "type cast without argument")
		}
		return Canonicalize(e.Arg)
	case *pgast.AExpr:
		return operator(n, e)
	case *pgast.BoolExpr:
		return connective(n, e)
	case *pgast.FuncCall:
		name, err := joinNames(n, e.Funcname, "function name")
		if err != nil {
			return nil, err
		}
		args, err := canonicalizeAll(e.Args)
		if err != nil {
			return nil, err
		}
		return ir.Func{Name: name, Args: args}, nil
	case *pgast.ColumnRef:
		name, err := joinNames(n, e.Fields, "column reference")
		if err != nil {
			return nil, err
		}
		return ir.Ref{Name: name}, nil
	case *pgast.AArrayExpr:
		elems, err := canonicalizeAll(e.Elements)
		if err != nil {
			return nil, err
		}
		return ir.Arr{Elements: elems}, nil
	case *pgast.Unknown:
		return nil, fail(n, "unsupported node: "+e.Reason)
	case nil:
		return nil, fail(n, "empty node")
	default:
		return nil, fail(n, "unsupported node type "+e.Tag())
	}
}

// CanonicalizeJSON decodes a pg_query JSON node and canonicalizes it.
// Invalid JSON is reported as a StructuralError.
func CanonicalizeJSON(data []byte) (ir.Node, error) {
	n, err := pgast.Decode(data)
	if err != nil {
		return nil, &StructuralError{Reason: err.Error(), Raw: data}
	}
	return Canonicalize(n)
}

func constant(n *pgast.Node, c *pgast.AConst) (ir.Node, error) {
	switch {
	case c.Ival != nil:
		return ir.IntConst{Value: c.Ival.Ival}, nil
	case c.Sval != nil:
		return ir.StrConst{Value: c.Sval.Sval}, nil
	default:
		return nil, fail(n, "unsupported constant type")
	}
}

func operator(n *pgast.Node, e *pgast.AExpr) (ir.Node, error) {
	opName, err := joinNames(n, e.Name, "operator name")
	if err != nil {
		return nil, err
	}

	var op ir.Operator
	switch e.Kind {
	case pgast.AExprOp, pgast.AExprOpAny:
		op = ir.Operator(opName)
		if !ir.ValidOperators[op] || op == ir.OpAnd || op == ir.OpOr || op == ir.OpLike {
			return nil, fail(n, fmt.Sprintf("unsupported operator %q", opName))
		}
	case pgast.AExprLike:
		if opName != opLike {
			return nil, fail(n, fmt.Sprintf("unsupported LIKE operator %q", opName))
		}
		op = ir.OpLike
	default:
		return nil, fail(n, fmt.Sprintf("unsupported A_Expr kind %q", e.Kind))
	}

	if e.Lexpr == nil || e.Rexpr == nil {
		return nil, fail(n, "operator "+opName+" is missing an operand")
	}
	left, err := Canonicalize(e.Lexpr)
	if err != nil {
		return nil, err
	}
	right, err := Canonicalize(e.Rexpr)
	if err != nil {
		return nil, err
	}

	if e.Kind == pgast.AExprOpAny {
		right = ir.Func{Name: ir.FuncAny, Args: []ir.Node{right}}
	}
	return ir.BinOp{Op: op, Left: left, Right: right}, nil
}

// connective folds Postgres' flattened operand list pairwise from the left:
// a AND b AND c becomes ((a AND b) AND c).
func connective(n *pgast.Node, e *pgast.BoolExpr) (ir.Node, error) {
	var op ir.Operator
	switch e.Boolop {
	case pgast.BoolAnd:
		op = ir.OpAnd
	case pgast.BoolOr:
		op = ir.OpOr
	default:
		return nil, fail(n, fmt.Sprintf("unsupported BoolExpr op %q", e.Boolop))
	}
	if len(e.Args) < 2 {
		return nil, fail(n, fmt.Sprintf("%s needs at least two operands, got %d", op, len(e.Args)))
	}

	args, err := canonicalizeAll(e.Args)
	if err != nil {
		return nil, err
	}
	acc := args[0]
	for _, arg := range args[1:] {
		acc = ir.BinOp{Op: op, Left: acc, Right: arg}
	}
	return acc, nil
}

func canonicalizeAll(nodes []*pgast.Node) ([]ir.Node, error) {
	out := make([]ir.Node, 0, len(nodes))
	for _, child := range nodes {
		c, err := Canonicalize(child)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// joinNames joins String name parts with '.'. Anything else in the list,
// including A_Star, is rejected.
func joinNames(n *pgast.Node, parts []*pgast.Node, what string) (string, error) {
	if len(parts) == 0 {
		return "", fail(n, "empty "+what)
	}
	names := make([]string, len(parts))
	for i, p := range parts {
		var s *pgast.String
		if p != nil {
			s, _ = p.Expr.(*pgast.String)
		}
		if s == nil {
			return "", fail(n, fmt.Sprintf("unsupported %s part %s", what, partTag(p)))
		}
		names[i] = s.Sval
	}
	return strings.Join(names, "."), nil
}

func partTag(p *pgast.Node) string {
	if p == nil {
		return "null"
	}
	if tag := p.Tag(); tag != "" {
		return tag
	}
	return "unknown"
}

func fail(n *pgast.Node, reason string) *StructuralError {
	return &StructuralError{Reason: reason, Raw: n.Raw()}
}
