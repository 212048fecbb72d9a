package querysql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoOrder is returned for a Select without OrderBy keys.
var ErrNoOrder = errors.New("query has no ORDER BY keys")

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Compile converts q to parameterized SQL.
// Returns (sql, params, error).
func Compile(q Query) (string, []any, error) {
	switch query := q.(type) {
	case Select:
		return compileSelect(query)
	case *Select:
		if query == nil {
			return "", nil, fmt.Errorf("cannot compile nil query")
		}
		return compileSelect(*query)
	case nil:
		return "", nil, fmt.Errorf("cannot compile nil query")
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func compileSelect(q Select) (string, []any, error) {
	if err := checkIdent(q.From); err != nil {
		return "", nil, fmt.Errorf("from: %w", err)
	}
	if len(q.Columns) == 0 {
		return "", nil, fmt.Errorf("select from %s: no columns", q.From)
	}
	for _, col := range q.Columns {
		if err := checkIdent(col); err != nil {
			return "", nil, fmt.Errorf("column: %w", err)
		}
	}

	orderBy, err := orderClause(q.OrderBy)
	if err != nil {
		return "", nil, fmt.Errorf("select from %s: %w", q.From, err)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.From)

	var params []any
	if q.Filter != nil {
		where, whereParams, err := compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = whereParams
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(orderBy)
	return b.String(), params, nil
}

// orderClause renders keys with COLLATE BINARY so text ordering does not
// depend on the connection's default collation.
func orderClause(keys []string) (string, error) {
	if len(keys) == 0 {
		return "", ErrNoOrder
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		if err := checkIdent(k); err != nil {
			return "", fmt.Errorf("order by: %w", err)
		}
		parts[i] = k + " COLLATE BINARY ASC"
	}
	return strings.Join(parts, ", "), nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		return compileEquals(pred)
	case *Equals:
		return compileEquals(*pred)
	case And:
		return compileAnd(pred)
	case *And:
		return compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq Equals) (string, []any, error) {
	if err := checkIdent(eq.Field); err != nil {
		return "", nil, fmt.Errorf("field: %w", err)
	}
	param, err := toParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", eq.Field, err)
	}
	return eq.Field + " = ?", []any{param}, nil
}

func compileAnd(and And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, predParams, err := compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, predParams...)
	}
	return strings.Join(parts, " AND "), params, nil
}

func toParam(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case bool:
		return val, nil
	case nil:
		return nil, fmt.Errorf("NULL cannot be compared with =")
	default:
		return nil, fmt.Errorf("unsupported parameter type %T", v)
	}
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}
