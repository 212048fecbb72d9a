// Package ir provides the canonical intermediate representation for pgcheck.
//
// This package contains the canonical expression tree, the constraint record
// and the batch analysis types. All other internal packages import ir; ir
// imports nothing internal. This keeps IR the foundational layer with no
// circular dependencies.
//
// Key design constraints:
//   - Node is sealed: only the variants in node.go implement it
//   - Trees and records are immutable values; passes build new ones
//   - Constraints fields are pointers: unset never means zero
//   - NO float types anywhere - numbers are int64
package ir
