package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed keys.
// Version suffix enables future algorithm migration.
const (
	DomainAnalysis = "pgcheck/analysis/v1"
	DomainTree     = "pgcheck/tree/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// AnalysisKey computes the memoization key for one (CHECK text, column) pair.
// The pipeline is deterministic, so equal keys always yield equal analyses.
func AnalysisKey(check, column string) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"check":  check,
		"column": column,
	})
	if err != nil {
		return "", fmt.Errorf("AnalysisKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAnalysis, canonical), nil
}

// TreeHash computes a content hash of a canonical tree.
// Structurally equal trees hash equally regardless of how they were built.
func TreeHash(n Node) (string, error) {
	canonical, err := MarshalNode(n)
	if err != nil {
		return "", fmt.Errorf("TreeHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTree, canonical), nil
}

// MustAnalysisKey is like AnalysisKey but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustAnalysisKey(check, column string) string {
	key, err := AnalysisKey(check, column)
	if err != nil {
		panic(err)
	}
	return key
}
