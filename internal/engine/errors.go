package engine

import (
	"errors"
	"fmt"
)

// AnalysisError is returned by Analyze when a clause cannot be analyzed.
//
// Unreduced clauses are not errors; they come back as an Analysis with
// Outcome unreduced.
type AnalysisError struct {
	// Code identifies the error category.
	Code AnalysisErrorCode

	// Relation and Column identify the check being analyzed.
	Relation string
	Column   string

	// Err is the underlying parse, canonicalization or store error.
	Err error
}

// AnalysisErrorCode categorizes analysis errors.
type AnalysisErrorCode string

const (
	// ErrCodeParseFailed indicates the CHECK text is not valid Postgres or
	// not a CHECK constraint.
	ErrCodeParseFailed AnalysisErrorCode = "PARSE_FAILED"

	// ErrCodeStructural indicates the parsed tree uses a shape the
	// canonicalizer does not support.
	ErrCodeStructural AnalysisErrorCode = "STRUCTURAL"

	// ErrCodeStoreFailed indicates the memo cache could not be read or written.
	ErrCodeStoreFailed AnalysisErrorCode = "STORE_FAILED"
)

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.Relation != "" {
		return fmt.Sprintf("%s: %s.%s: %v", e.Code, e.Relation, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Column, e.Err)
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if the error is a parse failure.
// Uses errors.As to handle wrapped errors.
func IsParseError(err error) bool {
	return hasCode(err, ErrCodeParseFailed)
}

// IsStoreError returns true if the error came from the memo cache.
func IsStoreError(err error) bool {
	return hasCode(err, ErrCodeStoreFailed)
}

func hasCode(err error, code AnalysisErrorCode) bool {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
