package ir

// CheckKind says where a CHECK clause is declared.
type CheckKind string

const (
	// KindTable is a CHECK on a table column.
	KindTable CheckKind = "table"
	// KindDomain is a CHECK on a domain; it references the pseudo-column "value".
	KindDomain CheckKind = "domain"
)

// DomainColumn is the column name domain checks are extracted against.
const DomainColumn = "value"

// ColumnCheck is one CHECK clause to analyze for one column.
type ColumnCheck struct {
	Kind     CheckKind `json:"kind"`
	Relation string    `json:"relation"` // table or domain name
	Column   string    `json:"column"`
	Check    string    `json:"check"` // e.g. "CHECK (length(bio) < 10000)"
}

// Outcome classifies an analysis.
type Outcome string

const (
	// OutcomeReduced means the clause collapsed to one constraint record.
	OutcomeReduced Outcome = "reduced"
	// OutcomeUnreduced means the clause has no declarative equivalent.
	// Callers generate no validation for the column.
	OutcomeUnreduced Outcome = "unreduced"
	// OutcomeError means the clause could not be parsed or canonicalized.
	OutcomeError Outcome = "error"
)

// Analysis is the result of running one ColumnCheck through the pipeline.
type Analysis struct {
	ColumnCheck
	Outcome     Outcome     `json:"outcome"`
	Constraints Constraints `json:"constraints"`
	Diagnostic  string      `json:"diagnostic,omitempty"` // residual or error text
	Cached      bool        `json:"cached,omitempty"`
}
