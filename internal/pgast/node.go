// Package pgast models the pg_query JSON syntax tree as a closed
// discriminated union.
//
// Every pg_query node is a JSON object with exactly one key naming its type,
// e.g. {"ColumnRef":{"fields":[{"String":{"sval":"bio"}}]}}. A Node wraps the
// decoded payload for that key as an Expr variant. Shapes the decoder does
// not recognize become *Unknown rather than errors, so that consumers can
// reject them with the offending JSON attached.
package pgast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Node is one raw syntax tree node.
type Node struct {
	Expr Expr

	// raw is the JSON the node was decoded from; nil for nodes built in Go.
	raw json.RawMessage
}

// New wraps a payload in a Node.
func New(e Expr) *Node {
	return &Node{Expr: e}
}

// Decode parses one node from JSON. Malformed JSON is the only error;
// unrecognized shapes decode into *Unknown.
func Decode(data []byte) (*Node, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("pgast: invalid JSON")
	}
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("pgast: %w", err)
	}
	return &n, nil
}

// Tag returns the variant's tag, or "" for Unknown.
func (n *Node) Tag() string {
	if n == nil || n.Expr == nil {
		return ""
	}
	return n.Expr.Tag()
}

// Raw returns the node's JSON form. Decoded nodes return their original
// bytes; nodes built in Go are marshaled.
func (n *Node) Raw() []byte {
	if n == nil {
		return []byte("null")
	}
	if n.raw != nil {
		return n.raw
	}
	data, err := json.Marshal(n)
	if err != nil {
		return []byte(fmt.Sprintf("%q", err.Error()))
	}
	return data
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	n.raw = append(json.RawMessage(nil), data...)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		n.Expr = &Unknown{Reason: "not an object"}
		return nil
	}

	tags := make([]string, 0, len(fields))
	for k := range fields {
		tags = append(tags, k)
	}
	slices.Sort(tags)

	switch len(tags) {
	case 0:
		n.Expr = &Unknown{Reason: "no node tag"}
		return nil
	case 1:
	default:
		n.Expr = &Unknown{Tags: tags, Reason: "multiple node tags"}
		return nil
	}

	tag := tags[0]
	expr := newExpr(tag)
	if expr == nil {
		n.Expr = &Unknown{Tags: tags, Reason: "unknown node tag " + tag}
		return nil
	}
	if err := json.Unmarshal(fields[tag], expr); err != nil {
		n.Expr = &Unknown{Tags: tags, Reason: fmt.Sprintf("malformed %s: %v", tag, err)}
		return nil
	}
	n.Expr = expr
	return nil
}

// MarshalJSON implements json.Marshaler. Decoded nodes round-trip their
// original bytes.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.raw != nil {
		return n.raw, nil
	}
	switch e := n.Expr.(type) {
	case nil, *Unknown:
		return []byte("{}"), nil
	default:
		var buf bytes.Buffer
		buf.WriteByte('{')
		key, err := json.Marshal(e.Tag())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Tag(), err)
		}
		buf.Write(payload)
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
}
