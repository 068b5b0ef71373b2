// Package models defines domain entities and persistence interfaces for the
// processing history store.
//
// The package contains two categories of types:
//
// 1. Value types shared across packages:
//   - [Outcome] : Per-file processing disposition (processed, skipped, failed)
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Batch] : One processing invocation with analysis level, dataset root and aggregate counts
//   - [FileRecord] : One candidate file considered by a batch, with its disposition
//
// All persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
