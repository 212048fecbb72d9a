// Package store provides the SQLite-backed memo cache for CHECK analyses.
//
// Canonicalize, simplify and extract are pure, so an analysis is fully
// determined by its (check text, column) pair. The store keeps:
//   - Analyses: reduced and unreduced outcomes keyed by ir.AnalysisKey
//   - Runs: one summary row per batch run
//
// Errors are never cached; a failed parse is retried on the next run.
//
// # Versioning
//
// Each analysis records the engine and IR versions that produced it.
// Rows written by a different ir.EngineVersion are treated as misses and
// overwritten on the next write.
//
// # Ordering
//
//   - All ordering uses seq INTEGER (logical clock), never timestamps
//   - List queries are built with querysql, which refuses a SELECT without
//     ORDER BY; listings sort by seq, then key or id, COLLATE BINARY
//
// # Database Configuration
//
// Set through go-sqlite3 DSN parameters so every connection gets them:
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - One open connection: database/sql serializes concurrent callers
//
// Schema upgrades are numbered migrations tracked in PRAGMA user_version.
package store
