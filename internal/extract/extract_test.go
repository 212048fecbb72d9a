package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgcheck/internal/ir"
)

func ref(name string) ir.Node { return ir.Ref{Name: name} }
func num(v int64) ir.Node { return ir.IntConst{Value: v} }
func str(s string) ir.Node { return ir.StrConst{Value: s} }
func length(col string) ir.Node { return ir.Length{Column: col} }
func bin(op ir.Operator, l, r ir.Node) ir.Node { return ir.BinOp{Op: op, Left: l, Right: r} }

func anyOf(col string, elems ...ir.Node) ir.Node {
	return bin(ir.OpEqual, ref(col), ir.Func{Name: ir.FuncAny, Args: []ir.Node{ir.Arr{Elements: elems}}})
}

func TestExtractReduces(t *testing.T) {
	tests := []struct {
		name   string
		node   ir.Node
		column string
		want   ir.Constraints
	}{
		{"length less", bin(ir.OpLess, length("bio"), num(10000)), "bio", ir.Constraints{ExclusiveMax: ir.Int(10000)}},
		{"length less equal", bin(ir.OpLessEqual, length("bio"), num(10)), "bio", ir.Constraints{MaxLength: ir.Int(10)}},
		{"length greater", bin(ir.OpGreater, length("bio"), num(5)), "bio", ir.Constraints{ExclusiveMin: ir.Int(5)}},
		{"length greater equal", bin(ir.OpGreaterEqual, length("bio"), num(5)), "bio", ir.Constraints{MinLength: ir.Int(5)}},
		{"length equal", bin(ir.OpEqual, length("bio"), num(5)), "bio", ir.Constraints{MinLength: ir.Int(5), MaxLength: ir.Int(5)}},
		{
			"unsimplified length call",
			bin(ir.OpLess, ir.Func{Name: "length", Args: []ir.Node{ref("bio")}}, num(10000)),
			"bio",
			ir.Constraints{ExclusiveMax: ir.Int(10000)},
		},
		{"regex", bin(ir.OpRegexIMatch, ref("email"), str(`^.+@.+\..+$`)), "email", ir.Constraints{Pattern: ir.Str(`^.+@.+\..+$`)}},
		{"non-empty", bin(ir.OpNotEqual, ref("name"), str("")), "name", ir.Constraints{MinLength: ir.Int(1)}},
		{"value less", bin(ir.OpLess, ref("age"), num(150)), "age", ir.Constraints{ExclusiveMax: ir.Int(150)}},
		{"value less equal", bin(ir.OpLessEqual, ref("age"), num(150)), "age", ir.Constraints{Max: ir.Int(150)}},
		{"value greater", bin(ir.OpGreater, ref("age"), num(3)), "age", ir.Constraints{ExclusiveMin: ir.Int(3)}},
		{"value greater equal", bin(ir.OpGreaterEqual, ref("age"), num(0)), "age", ir.Constraints{Min: ir.Int(0)}},
		{"value equal", bin(ir.OpEqual, ref("n"), num(13)), "n", ir.Constraints{Equals: ir.Int(13)}},
		{"value negative", bin(ir.OpGreater, ref("t"), num(-273)), "t", ir.Constraints{ExclusiveMin: ir.Int(-273)}},
		{"like prefix", bin(ir.OpLike, ref("number"), str("+1%")), "number", ir.Constraints{StartsWith: ir.Str("+1")}},
		{"like suffix", bin(ir.OpLike, ref("plurals"), str("%s")), "plurals", ir.Constraints{EndsWith: ir.Str("s")}},
		{"like only wildcard", bin(ir.OpLike, ref("s"), str("%")), "s", ir.Constraints{StartsWith: ir.Str("")}},
		{"one of", anyOf("value", str("YES"), str("NO")), "value", ir.Constraints{OneOf: []string{"YES", "NO"}}},
		{"one of empty", anyOf("value"), "value", ir.Constraints{OneOf: []string{}}},
		{
			"qualified column",
			bin(ir.OpGreater, ref("users.age"), num(0)),
			"users.age",
			ir.Constraints{ExclusiveMin: ir.Int(0)},
		},
		{
			"length range",
			bin(ir.OpAnd,
				bin(ir.OpGreaterEqual, length("code"), num(2)),
				bin(ir.OpLessEqual, length("code"), num(8))),
			"code",
			ir.Constraints{MinLength: ir.Int(2), MaxLength: ir.Int(8)},
		},
		{
			"non-empty and bounded",
			bin(ir.OpAnd,
				bin(ir.OpNotEqual, ref("name"), str("")),
				bin(ir.OpLess, length("name"), num(256))),
			"name",
			ir.Constraints{MinLength: ir.Int(1), ExclusiveMax: ir.Int(256)},
		},
		{
			"nested conjunctions tighten",
			bin(ir.OpAnd,
				bin(ir.OpAnd,
					bin(ir.OpGreater, ref("n"), num(5)),
					bin(ir.OpGreater, ref("n"), num(10))),
				bin(ir.OpLess, ref("n"), num(100))),
			"n",
			ir.Constraints{ExclusiveMin: ir.Int(10), ExclusiveMax: ir.Int(100)},
		},
		{
			"pattern and length",
			bin(ir.OpAnd,
				bin(ir.OpRegexIMatch, ref("slug"), str("^[a-z-]+$")),
				bin(ir.OpLessEqual, length("slug"), num(64))),
			"slug",
			ir.Constraints{Pattern: ir.Str("^[a-z-]+$"), MaxLength: ir.Int(64)},
		},
		{
			"same pattern twice",
			bin(ir.OpAnd,
				bin(ir.OpRegexIMatch, ref("s"), str("^a")),
				bin(ir.OpRegexIMatch, ref("s"), str("^a"))),
			"s",
			ir.Constraints{Pattern: ir.Str("^a")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.node, tt.column)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestExtractUnreduced(t *testing.T) {
	tests := []struct {
		name   string
		node   ir.Node
		column string
	}{
		{"other column", bin(ir.OpLess, length("other"), num(10)), "bio"},
		{"other column value", bin(ir.OpGreater, ref("other"), num(0)), "bio"},
		{"length not equal", bin(ir.OpNotEqual, length("bio"), num(10)), "bio"},
		{"value not equal", bin(ir.OpNotEqual, ref("n"), num(10)), "n"},
		{"reversed operands", bin(ir.OpGreater, num(10), ref("n")), "n"},
		{"non-empty other literal", bin(ir.OpNotEqual, ref("s"), str("x")), "s"},
		{"word = reverse(word)", bin(ir.OpEqual, ref("word"), ir.Func{Name: "reverse", Args: []ir.Node{ref("word")}}), "word"},
		{
			"function equality",
			bin(ir.OpEqual,
				ir.Func{Name: "pg_catalog.extract", Args: []ir.Node{str("day"), ref("event_date")}},
				num(13)),
			"event_date",
		},
		{
			"or is never merged",
			bin(ir.OpOr, bin(ir.OpEqual, ref("n"), num(1)), bin(ir.OpEqual, ref("n"), num(2))),
			"n",
		},
		{
			"and with unreduced side",
			bin(ir.OpAnd, bin(ir.OpGreater, ref("n"), num(0)), bin(ir.OpGreater, ref("m"), num(0))),
			"n",
		},
		{
			"conflicting patterns",
			bin(ir.OpAnd, bin(ir.OpRegexIMatch, ref("s"), str("^a")), bin(ir.OpRegexIMatch, ref("s"), str("b$"))),
			"s",
		},
		{
			"conflicting equals",
			bin(ir.OpAnd, bin(ir.OpEqual, ref("n"), num(1)), bin(ir.OpEqual, ref("n"), num(2))),
			"n",
		},
		{"like infix", bin(ir.OpLike, ref("s"), str("%a%")), "s"},
		{"like middle", bin(ir.OpLike, ref("s"), str("a%b")), "s"},
		{"like underscore", bin(ir.OpLike, ref("s"), str("a_%")), "s"},
		{"like no wildcard", bin(ir.OpLike, ref("s"), str("abc")), "s"},
		{"like escape", bin(ir.OpLike, ref("s"), str(`100\%%`)), "s"},
		{"one of mixed", anyOf("v", str("a"), num(1)), "v"},
		{"any not equal", bin(ir.OpNotEqual, ref("v"), ir.Func{Name: ir.FuncAny, Args: []ir.Node{ir.Arr{Elements: []ir.Node{str("a")}}}}), "v"},
		{"bare column", ref("n"), "n"},
		{"bare literal", num(1), "n"},
		{"regex with int", bin(ir.OpRegexIMatch, ref("s"), num(1)), "s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.node, tt.column)
			require.Error(t, err)
			assert.True(t, IsUnreduced(err))
			assert.True(t, got.IsEmpty(), "no partial constraints on failure")

			var ue *UnreducedError
			require.ErrorAs(t, err, &ue)
			assert.NotNil(t, ue.Residual)
			assert.Equal(t, tt.column, ue.Column)
		})
	}
}

func TestUnreducedErrorNamesResidual(t *testing.T) {
	node := bin(ir.OpEqual, ref("word"), ir.Func{Name: "reverse", Args: []ir.Node{ref("word")}})

	_, err := Extract(node, "word")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"name":"reverse"`)
	assert.Contains(t, err.Error(), `column "word"`)
}

func TestUnreducedResidualKeepsReducedParts(t *testing.T) {
	// The reducible side is folded even though the whole tree is not.
	node := bin(ir.OpOr, bin(ir.OpGreater, ref("n"), num(0)), bin(ir.OpGreater, ref("m"), num(0)))

	_, err := Extract(node, "n")
	var ue *UnreducedError
	require.ErrorAs(t, err, &ue)

	residual, ok := ue.Residual.(ir.BinOp)
	require.True(t, ok)
	assert.Equal(t, ir.ConstraintExpr{Constraints: ir.Constraints{ExclusiveMin: ir.Int(0)}}, residual.Left)
	assert.Equal(t, node.(ir.BinOp).Right, residual.Right)
}

func TestExtractNil(t *testing.T) {
	_, err := Extract(nil, "x")
	require.Error(t, err)
	assert.True(t, IsUnreduced(err))
}

func TestExtractDoesNotMutateInput(t *testing.T) {
	inner := bin(ir.OpGreater, ref("n"), num(0))
	args := []ir.Node{inner}
	node := ir.Func{Name: "f", Args: args}

	_, _ = Extract(node, "n")
	assert.Equal(t, inner, args[0])
}
