// Package repositories implements SQLite persistence for processing history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
//
// Key Implementations:
//   - [BatchRepository] : One row per analysis invocation with aggregate outcome counts
//   - [RecordRepository] : Per-file outcomes belonging to a batch, queryable by subject and outcome
//
// Sequence numbers provide stable, human-readable ordering (e.g., batch #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
