package ir

import "fmt"

// Node kinds used in the encoded form.
const (
	KindInt        = "int"
	KindStr        = "str"
	KindBool       = "bool"
	KindRef        = "ref"
	KindArr        = "arr"
	KindOp         = "op"
	KindFunc       = "func"
	KindLength     = "len"
	KindConstraint = "constraint"
)

// EncodeNode converts a canonical tree into nested maps and slices that
// MarshalCanonical accepts. Each node becomes an object with a "kind" key.
//
// Example: length(bio) < 10 encodes as
//
//	{"kind":"op","left":{"column":"bio","kind":"len"},"op":"<","right":{"kind":"int","value":10}}
func EncodeNode(n Node) (map[string]any, error) {
	switch v := n.(type) {
	case IntConst:
		return map[string]any{"kind": KindInt, "value": v.Value}, nil
	case StrConst:
		return map[string]any{"kind": KindStr, "value": v.Value}, nil
	case BoolConst:
		return map[string]any{"kind": KindBool, "value": v.Value}, nil
	case Ref:
		return map[string]any{"kind": KindRef, "name": v.Name}, nil
	case Length:
		return map[string]any{"kind": KindLength, "column": v.Column}, nil
	case Arr:
		elems, err := encodeNodes(v.Elements)
		if err != nil {
			return nil, fmt.Errorf("arr: %w", err)
		}
		return map[string]any{"kind": KindArr, "elements": elems}, nil
	case Func:
		args, err := encodeNodes(v.Args)
		if err != nil {
			return nil, fmt.Errorf("func %s: %w", v.Name, err)
		}
		return map[string]any{"kind": KindFunc, "name": v.Name, "args": args}, nil
	case BinOp:
		left, err := EncodeNode(v.Left)
		if err != nil {
			return nil, fmt.Errorf("op %s left: %w", v.Op, err)
		}
		right, err := EncodeNode(v.Right)
		if err != nil {
			return nil, fmt.Errorf("op %s right: %w", v.Op, err)
		}
		return map[string]any{"kind": KindOp, "op": string(v.Op), "left": left, "right": right}, nil
	case ConstraintExpr:
		return map[string]any{"kind": KindConstraint, "constraints": v.Constraints.Fields()}, nil
	default:
		return nil, fmt.Errorf("unknown node type: %T", n)
	}
}

func encodeNodes(nodes []Node) ([]any, error) {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		enc, err := EncodeNode(n)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = enc
	}
	return out, nil
}

// MarshalNode produces the canonical JSON form of a tree.
// Used for diagnostics and golden snapshots.
func MarshalNode(n Node) ([]byte, error) {
	enc, err := EncodeNode(n)
	if err != nil {
		return nil, err
	}
	return MarshalCanonical(enc)
}
