package testutil

import "github.com/roach88/pgcheck/internal/pgast"

// Builders for raw pg_query trees, so tests can describe CHECK bodies
// without a cgo parser. Each returns the shape pg_query emits for the
// corresponding SQL.

// Int is an integer literal. Zero is encoded with an empty payload, as pg_query does.
func Int(v int64) *pgast.Node {
	return pgast.New(&pgast.AConst{Ival: &pgast.Integer{Ival: v}})
}

// Str is a string literal.
func Str(s string) *pgast.Node {
	return pgast.New(&pgast.AConst{Sval: &pgast.String{Sval: s}})
}

// Null is the NULL literal.
func Null() *pgast.Node {
	return pgast.New(&pgast.AConst{Isnull: true})
}

// Col is a column reference; parts form a qualified name.
func Col(parts ...string) *pgast.Node {
	return pgast.New(&pgast.ColumnRef{Fields: names(parts)})
}

// Star is `tbl.*`-style reference ending in A_Star.
func Star(parts ...string) *pgast.Node {
	fields := append(names(parts), pgast.New(&pgast.AStar{}))
	return pgast.New(&pgast.ColumnRef{Fields: fields})
}

// Op is `l op r`.
func Op(op string, l, r *pgast.Node) *pgast.Node {
	return aExpr(pgast.AExprOp, op, l, r)
}

// Any is `l op ANY (r)`.
func Any(op string, l, r *pgast.Node) *pgast.Node {
	return aExpr(pgast.AExprOpAny, op, l, r)
}

// Like is `l LIKE r`.
func Like(l, r *pgast.Node) *pgast.Node {
	return aExpr(pgast.AExprLike, "~~", l, r)
}

// NotLike is `l NOT LIKE r`.
func NotLike(l, r *pgast.Node) *pgast.Node {
	return aExpr(pgast.AExprLike, "!~~", l, r)
}

// And is an n-ary conjunction, flattened the way Postgres emits it.
func And(args ...*pgast.Node) *pgast.Node {
	return pgast.New(&pgast.BoolExpr{Boolop: pgast.BoolAnd, Args: args})
}

// Or is an n-ary disjunction.
func Or(args ...*pgast.Node) *pgast.Node {
	return pgast.New(&pgast.BoolExpr{Boolop: pgast.BoolOr, Args: args})
}

// Not is NOT arg.
func Not(arg *pgast.Node) *pgast.Node {
	return pgast.New(&pgast.BoolExpr{Boolop: pgast.BoolNot, Args: []*pgast.Node{arg}})
}

// Call is a function call. name may be dot-qualified ("pg_catalog.extract").
func Call(name []string, args ...*pgast.Node) *pgast.Node {
	return pgast.New(&pgast.FuncCall{Funcname: names(name), Args: args})
}

// Fn is Call with an unqualified name.
func Fn(name string, args ...*pgast.Node) *pgast.Node {
	return Call([]string{name}, args...)
}

// Array is ARRAY[elems...].
func Array(elems ...*pgast.Node) *pgast.Node {
	return pgast.New(&pgast.AArrayExpr{Elements: elems})
}

// Cast is arg::typ.
func Cast(arg *pgast.Node, typ string) *pgast.Node {
	typeName := []byte(`{"names":[{"String":{"sval":"` + typ + `"}}]}`)
	return pgast.New(&pgast.TypeCast{Arg: arg, TypeName: typeName})
}

func aExpr(kind, op string, l, r *pgast.Node) *pgast.Node {
	return pgast.New(&pgast.AExpr{
		Kind:  kind,
		Name:  names([]string{op}),
		Lexpr: l,
		Rexpr: r,
	})
}

func names(parts []string) []*pgast.Node {
	out := make([]*pgast.Node, len(parts))
	for i, p := range parts {
		out[i] = pgast.New(&pgast.String{Sval: p})
	}
	return out
}
