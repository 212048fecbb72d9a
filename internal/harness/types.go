package harness

import "github.com/roach88/pgcheck/internal/ir"

// Case outcomes. Reduced and unreduced match ir.Outcome; structural and
// error split ir.OutcomeError by cause.
const (
	OutcomeReduced    = string(ir.OutcomeReduced)
	OutcomeUnreduced  = string(ir.OutcomeUnreduced)
	OutcomeStructural = "structural"
	OutcomeError      = "error"
)

// CaseResult is what one case actually produced.
type CaseResult struct {
	Name        string         `json:"name"`
	Column      string         `json:"column"`
	Outcome     string         `json:"outcome"`
	Constraints ir.Constraints `json:"constraints"`
	Diagnostic  string         `json:"diagnostic,omitempty"`
	Pass        bool           `json:"pass"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every case matched its expectation.
	Pass bool `json:"pass"`

	// Cases holds one entry per scenario case, in order.
	Cases []CaseResult `json:"cases"`

	// Errors contains mismatch messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a mismatch message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
