// Package engine runs scoring operations against stored matches.
//
// The engine is the only writer of match state. Each call is routed to its
// match's lane and runs there after every earlier call for that match.
//
// ARCHITECTURE:
//
// Lane Per Match:
// A lane is a FIFO of calls drained by one goroutine. Calls against one
// match never interleave; calls against different matches run in parallel.
//
// Operation Cycle:
// 1. Load the live match (cache, or header + snapshots + log replayed from the store)
// 2. Clone it and apply the operation to the clone
// 3. Build one store.Batch: header, innings snapshots, log changes, audit entry, fixture
// 4. Commit the batch in a single transaction
// 5. Swap the clone into the cache
//
// A rejected operation stops at step 2 and a failed commit at step 4; in
// both cases the cached match is the one from before the call.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Deliveries and audit entries take their seq from Clock.Next(). The clock
// resumes after the highest seq in the store. Wall-clock time is recorded
// but never used for ordering.
//
// Derived State:
// Innings aggregates are never patched. Undo and DeleteBall remove a
// delivery and re-fold the remaining log; Verify re-folds the stored log and
// reports any field where the stored snapshot disagrees.
package engine
