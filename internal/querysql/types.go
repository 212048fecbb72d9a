// Package querysql compiles small read queries over the store tables to
// parameterized SQLite SQL.
//
// Every compiled query carries an ORDER BY so reads are deterministic,
// and values are always bound as ? parameters.
package querysql

// Query is a sealed interface for compilable queries.
type Query interface {
	queryNode()
}

// Predicate is a sealed interface for WHERE clause fragments.
type Predicate interface {
	predicateNode()
}

// Select reads Columns from a single table.
//
// OrderBy lists the sort columns in priority order and must not be empty.
// Each key is compared with COLLATE BINARY.
type Select struct {
	From    string
	Columns []string
	Filter  Predicate
	OrderBy []string
}

func (Select) queryNode() {}

// Equals matches rows where Field equals Value.
// Value must be a string, int, int64 or bool.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// And is the conjunction of Predicates. An empty And matches every row.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Where builds an And from the non-nil predicates, or returns nil when
// none remain.
func Where(preds ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
