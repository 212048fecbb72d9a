package ir

import (
	"strconv"
	"strings"
)

// Node is a sealed interface over the canonical expression tree.
// Only IntConst, StrConst, BoolConst, Ref, Arr, BinOp, Func, Length and
// ConstraintExpr implement it.
//
// Backends switch exhaustively on the concrete type:
//
//	switch n := node.(type) {
//	case BinOp:
//	    // ...
//	case Func:
//	    // ...
//	}
type Node interface {
	irNode() // Sealed - only these types implement it
	String() string
}

// Operator is a binary operator or boolean connective in the canonical tree.
type Operator string

// Recognized operators. Anything else is rejected during canonicalization.
const (
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
	OpEqual        Operator = "="
	OpNotEqual     Operator = "<>"
	OpAnd          Operator = "AND"
	OpOr           Operator = "OR"
	OpRegexIMatch  Operator = "~*"
	OpLike         Operator = "LIKE"
)

// ValidOperators lists the operators a BinOp may carry.
var ValidOperators = map[Operator]bool{
	OpLess:         true,
	OpGreater:      true,
	OpLessEqual:    true,
	OpGreaterEqual: true,
	OpEqual:        true,
	OpNotEqual:     true,
	OpAnd:          true,
	OpOr:           true,
	OpRegexIMatch:  true,
	OpLike:         true,
}

// FuncAny is the synthetic function name used for `x op ANY (array)`.
const FuncAny = "ANY"

// IntConst is an integer literal.
type IntConst struct {
	Value int64
}

func (IntConst) irNode() {}

func (n IntConst) String() string { return strconv.FormatInt(n.Value, 10) }

// StrConst is a string literal.
type StrConst struct {
	Value string
}

func (StrConst) irNode() {}

func (n StrConst) String() string {
	return "'" + strings.ReplaceAll(n.Value, "'", "''") + "'"
}

// BoolConst is a boolean literal. Reserved: no current rule produces or
// consumes it.
type BoolConst struct {
	Value bool
}

func (BoolConst) irNode() {}

func (n BoolConst) String() string {
	if n.Value {
		return "true"
	}
	return "false"
}

// Ref is a column reference. Multi-part names are joined with '.'.
type Ref struct {
	Name string
}

func (Ref) irNode() {}

func (n Ref) String() string { return n.Name }

// Arr is an array literal.
type Arr struct {
	Elements []Node
}

func (Arr) irNode() {}

func (n Arr) String() string {
	return "ARRAY[" + joinNodes(n.Elements) + "]"
}

// BinOp is a binary operator application, including AND/OR.
type BinOp struct {
	Op    Operator
	Left  Node
	Right Node
}

func (BinOp) irNode() {}

func (n BinOp) String() string {
	return "(" + nodeString(n.Left) + " " + string(n.Op) + " " + nodeString(n.Right) + ")"
}

// Func is a function call. Qualified names are joined with '.'.
type Func struct {
	Name string
	Args []Node
}

func (Func) irNode() {}

func (n Func) String() string {
	if n.Name == FuncAny {
		return "ANY (" + joinNodes(n.Args) + ")"
	}
	return n.Name + "(" + joinNodes(n.Args) + ")"
}

// Length is the character length of a column. Derived from length(column).
type Length struct {
	Column string
}

func (Length) irNode() {}

func (n Length) String() string { return "length(" + n.Column + ")" }

// ConstraintExpr marks a subtree that extraction has fully reduced.
// Canonicalization never produces it.
type ConstraintExpr struct {
	Constraints Constraints
}

func (ConstraintExpr) irNode() {}

func (n ConstraintExpr) String() string { return "CONSTRAINT " + n.Constraints.String() }

func nodeString(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = nodeString(n)
	}
	return strings.Join(parts, ", ")
}
