// Package pgparse turns CHECK clause text into a raw pg_query tree.
//
// A bare CHECK definition is not a statement Postgres can parse on its own,
// so it is wrapped in an ALTER TABLE ... ADD CONSTRAINT statement and the
// constraint's raw expression is unwrapped from the result.
package pgparse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/roach88/pgcheck/internal/pgast"
)

const (
	checkKeyword = "CHECK"
	contypeCheck = "CONSTR_CHECK"
)

// Parser parses CHECK clauses with the Postgres parser.
//
// Thread-safety: Parser is stateless and safe for concurrent use.
type Parser struct{}

// New creates a Parser.
func New() *Parser {
	return &Parser{}
}

// ParseCheck parses def and returns the boolean expression inside its CHECK.
// def may be a full definition ("CHECK (length(bio) < 10000)") or just the
// expression ("length(bio) < 10000").
func (p *Parser) ParseCheck(ctx context.Context, def string) (*pgast.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stmt := WrapCheck(def)
	out, err := pg_query.ParseToJSON(stmt)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", def, err)
	}

	node, err := unwrapCheck([]byte(out))
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", def, err)
	}
	return node, nil
}

// WrapCheck builds the statement ParseCheck hands to the parser.
func WrapCheck(def string) string {
	def = strings.TrimSpace(def)
	if !HasCheckPrefix(def) {
		def = checkKeyword + " (" + def + ")"
	}
	return "ALTER TABLE x ADD CONSTRAINT y " + def + ";"
}

// HasCheckPrefix reports whether def starts with the CHECK keyword.
func HasCheckPrefix(def string) bool {
	def = strings.TrimSpace(def)
	if len(def) < len(checkKeyword) || !strings.EqualFold(def[:len(checkKeyword)], checkKeyword) {
		return false
	}
	rest := def[len(checkKeyword):]
	return rest == "" || rest[0] == ' ' || rest[0] == '(' || rest[0] == '\t' || rest[0] == '\n'
}

// parseResult is the slice of pg_query's output for
// ALTER TABLE x ADD CONSTRAINT y CHECK (...).
type parseResult struct {
	Stmts []struct {
		Stmt struct {
			AlterTableStmt *struct {
				Cmds []struct {
					AlterTableCmd *struct {
						Def *struct {
							Constraint *struct {
								Contype string      `json:"contype"`
								RawExpr *pgast.Node `json:"raw_expr"`
							} `json:"Constraint"`
						} `json:"def"`
					} `json:"AlterTableCmd"`
				} `json:"cmds"`
			} `json:"AlterTableStmt"`
		} `json:"stmt"`
	} `json:"stmts"`
}

func unwrapCheck(data []byte) (*pgast.Node, error) {
	var res parseResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode parse tree: %w", err)
	}

	if len(res.Stmts) != 1 {
		return nil, fmt.Errorf("not a CHECK constraint: expected 1 statement, got %d", len(res.Stmts))
	}
	alter := res.Stmts[0].Stmt.AlterTableStmt
	if alter == nil || len(alter.Cmds) != 1 {
		return nil, fmt.Errorf("not a CHECK constraint: unexpected statement shape")
	}
	cmd := alter.Cmds[0].AlterTableCmd
	if cmd == nil || cmd.Def == nil || cmd.Def.Constraint == nil {
		return nil, fmt.Errorf("not a CHECK constraint: missing constraint definition")
	}
	c := cmd.Def.Constraint
	if c.Contype != contypeCheck {
		return nil, fmt.Errorf("not a CHECK constraint: got %s", c.Contype)
	}
	if c.RawExpr == nil {
		return nil, fmt.Errorf("not a CHECK constraint: missing expression")
	}
	return c.RawExpr, nil
}
