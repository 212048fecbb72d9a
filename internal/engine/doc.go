// Package engine runs CHECK clauses through the conversion pipeline.
//
// A single conversion is three pure passes over a parsed clause:
//
//  1. canon.Canonicalize turns the raw pg_query tree into a canonical tree
//  2. simplify.Simplify rewrites length(col) into Length nodes
//  3. extract.Extract reduces the tree to one constraint record
//
// Convert exposes the passes directly. Engine wraps them with parsing,
// memoization in the SQLite store and a bounded worker pool for batches.
//
// Determinism:
// The passes never consult wall-clock time or randomness. Cached analyses
// are stamped with a logical clock (Clock.Next) so the store orders them
// the same way on every run. Batch results keep input order regardless of
// which worker finished first.
package engine
