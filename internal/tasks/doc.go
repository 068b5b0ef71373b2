// Package tasks orchestrates motion-parameter filtering across a BIDS study tree with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines five operations:
//
//  1. [Engine.ProcessRun] : Filter a single subject/session/run
//     - Resolves candidate inputs for both filename patterns
//     - Projects motion columns into canonical TSV outputs
//     - Skips files whose input is absent or whose output already exists
//
//  2. [Engine.ProcessPair] : Filter every run of a subject/session pair
//     - Enumerates runs from the session's dense timeseries artifact
//     - Accumulates per-file outcomes into a pair result
//
//  3. [Engine.RunParticipant] : Filter selected subject/session pairs
//     - Crosses the requested subject and session labels
//     - Returns a batch result with per-pair breakdowns
//
//  4. [Engine.RunGroup] : Filter the whole study
//     - Discovers subjects and the union of their sessions
//     - Processes every discovered pair
//
//  5. [Engine.EnumerateRuns] : List the runs recorded for a pair
//     - Derives the run count from the dense timeseries leading axis
//
// # Progress Reporting
//
// All operations accept a progress channel and never block on it.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [ProcessEngine] implements [Engine] with dependencies on:
//   - [bids.Layout] : Study tree discovery and validation
//   - [bids.Resolver] : Candidate input and output path construction
//   - [Transformer] : Motion column projection (motion.Transformer)
package tasks
