// Package store provides SQLite-backed persistence for scored matches.
//
// Tables:
//   - tournaments, teams, players, fixtures: roster records
//   - matches: match headers (lifecycle, targets, result)
//   - innings: snapshots of each innings fold, keyed by (match_id, number)
//   - deliveries: the append-only delivery log, one row per ball
//   - edits: the audit trail of corrections and lifecycle changes
//
// # Ordering
//
// Every delivery and edit carries a seq from the engine's logical clock.
// Queries over the log order by seq ASC, id ASC COLLATE BINARY so that
// replays see the same order regardless of wall time.
//
// # Atomicity
//
// Commit writes everything one engine operation changed in a single
// transaction. A failed commit leaves the database as it was.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
