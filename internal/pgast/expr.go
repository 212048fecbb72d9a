package pgast

import "encoding/json"

// Node tags recognized by the decoder.
const (
	TagAConst     = "A_Const"
	TagTypeCast   = "TypeCast"
	TagAExpr      = "A_Expr"
	TagBoolExpr   = "BoolExpr"
	TagFuncCall   = "FuncCall"
	TagColumnRef  = "ColumnRef"
	TagAArrayExpr = "A_ArrayExpr"
	TagString     = "String"
	TagAStar      = "A_Star"
)

// A_Expr kinds.
const (
	AExprOp    = "AEXPR_OP"
	AExprOpAny = "AEXPR_OP_ANY"
	AExprLike  = "AEXPR_LIKE"
)

// BoolExpr operators.
const (
	BoolAnd = "AND_EXPR"
	BoolOr  = "OR_EXPR"
	BoolNot = "NOT_EXPR"
)

// Expr is a sealed interface over the recognized node payloads.
// Only the types in this file implement it.
type Expr interface {
	pgExpr() // Sealed
	Tag() string
}

// AConst is a literal. pg_query sets exactly one of the payload fields and
// omits zero-valued payloads entirely, so {"ival":{}} is the integer 0 and
// {"sval":{}} is the empty string.
type AConst struct {
	Ival    *Integer `json:"ival,omitempty"`
	Sval    *String  `json:"sval,omitempty"`
	Boolval *Boolean `json:"boolval,omitempty"`
	Fval    *Float   `json:"fval,omitempty"`
	Isnull  bool     `json:"isnull,omitempty"`
}

// Integer is the payload of an integer constant.
type Integer struct {
	Ival int64 `json:"ival,omitempty"`
}

// Boolean is the payload of a boolean constant.
type Boolean struct {
	Boolval bool `json:"boolval,omitempty"`
}

// Float is the payload of a numeric constant. pg_query keeps the source text.
type Float struct {
	Fval string `json:"fval,omitempty"`
}

// TypeCast is `arg::type`. The type is kept opaque.
type TypeCast struct {
	Arg      *Node           `json:"arg,omitempty"`
	TypeName json.RawMessage `json:"typeName,omitempty"`
}

// AExpr is an operator application. Name holds the operator as String nodes.
type AExpr struct {
	Kind  string  `json:"kind,omitempty"`
	Name  []*Node `json:"name,omitempty"`
	Lexpr *Node   `json:"lexpr,omitempty"`
	Rexpr *Node   `json:"rexpr,omitempty"`
}

// BoolExpr is an n-ary AND/OR or a unary NOT.
type BoolExpr struct {
	Boolop string  `json:"boolop,omitempty"`
	Args   []*Node `json:"args,omitempty"`
}

// FuncCall is a function call. Funcname holds the qualified name as String nodes.
type FuncCall struct {
	Funcname []*Node `json:"funcname,omitempty"`
	Args     []*Node `json:"args,omitempty"`
}

// ColumnRef is a possibly qualified column name. Fields are String or A_Star nodes.
type ColumnRef struct {
	Fields []*Node `json:"fields,omitempty"`
}

// AArrayExpr is ARRAY[...].
type AArrayExpr struct {
	Elements []*Node `json:"elements,omitempty"`
}

// String is an identifier part, or the payload of a string constant.
type String struct {
	Sval string `json:"sval,omitempty"`
}

// AStar is `*` in a column reference.
type AStar struct{}

// Unknown is any object the decoder does not recognize: zero or several
// tag keys, an unrecognized tag, a non-object value, or a payload of the
// wrong shape. Decoding never fails on it; consumers reject it.
type Unknown struct {
	Tags   []string
	Reason string
}

func (*AConst) pgExpr()     {}
func (*TypeCast) pgExpr()   {}
func (*AExpr) pgExpr()      {}
func (*BoolExpr) pgExpr()   {}
func (*FuncCall) pgExpr()   {}
func (*ColumnRef) pgExpr()  {}
func (*AArrayExpr) pgExpr() {}
func (*String) pgExpr()     {}
func (*AStar) pgExpr()      {}
func (*Unknown) pgExpr()    {}

func (*AConst) Tag() string     { return TagAConst }
func (*TypeCast) Tag() string   { return TagTypeCast }
func (*AExpr) Tag() string      { return TagAExpr }
func (*BoolExpr) Tag() string   { return TagBoolExpr }
func (*FuncCall) Tag() string   { return TagFuncCall }
func (*ColumnRef) Tag() string  { return TagColumnRef }
func (*AArrayExpr) Tag() string { return TagAArrayExpr }
func (*String) Tag() string     { return TagString }
func (*AStar) Tag() string      { return TagAStar }
func (*Unknown) Tag() string    { return "" }

// newExpr returns an empty payload for tag, or nil if the tag is unknown.
func newExpr(tag string) Expr {
	switch tag {
	case TagAConst:
		return &AConst{}
	case TagTypeCast:
		return &TypeCast{}
	case TagAExpr:
		return &AExpr{}
	case TagBoolExpr:
		return &BoolExpr{}
	case TagFuncCall:
		return &FuncCall{}
	case TagColumnRef:
		return &ColumnRef{}
	case TagAArrayExpr:
		return &AArrayExpr{}
	case TagString:
		return &String{}
	case TagAStar:
		return &AStar{}
	default:
		return nil
	}
}
