package models

import (
	"fmt"
	"time"
)

// AnalysisLevel names the iteration scope of a batch.
type AnalysisLevel string

const (
	LevelRun         AnalysisLevel = "run"
	LevelParticipant AnalysisLevel = "participant"
	LevelGroup       AnalysisLevel = "group"
)

// Valid reports whether l is one of the defined analysis levels.
func (l AnalysisLevel) Valid() bool {
	switch l {
	case LevelRun, LevelParticipant, LevelGroup:
		return true
	}
	return false
}

// Batch is one processing invocation recorded in the history store.
//
// StartedAt doubles as the creation timestamp; FinishedAt is nil while the
// batch is in flight.
type Batch struct {
	id         string
	sequence   int
	level      AnalysisLevel
	root       string
	task       string
	startedAt  time.Time
	finishedAt *time.Time
	processed  int
	skipped    int
	failed     int
}

// NewBatch creates a Batch for the given level, dataset root and task label,
// stamped with the current time.
func NewBatch(sequence int, level AnalysisLevel, root, task string) *Batch {
	return &Batch{
		sequence:  sequence,
		level:     level,
		root:      root,
		task:      task,
		startedAt: time.Now(),
	}
}

func (b *Batch) ID() string             { return b.id }
func (b *Batch) Sequence() int          { return b.sequence }
func (b *Batch) Level() AnalysisLevel   { return b.level }
func (b *Batch) Root() string           { return b.root }
func (b *Batch) Task() string           { return b.task }
func (b *Batch) StartedAt() time.Time   { return b.startedAt }
func (b *Batch) FinishedAt() *time.Time { return b.finishedAt }
func (b *Batch) Processed() int         { return b.processed }
func (b *Batch) Skipped() int           { return b.skipped }
func (b *Batch) Failed() int            { return b.failed }

func (b *Batch) CreatedAt() time.Time { return b.startedAt }

func (b *Batch) UpdatedAt() time.Time {
	if b.finishedAt != nil {
		return *b.finishedAt
	}
	return b.startedAt
}

func (b *Batch) SetID(id string)             { b.id = id }
func (b *Batch) SetStartedAt(t time.Time)    { b.startedAt = t }
func (b *Batch) SetFinishedAt(t *time.Time)  { b.finishedAt = t }
func (b *Batch) SetSequence(n int)           { b.sequence = n }

// Finish stamps the batch with its completion time and final counts.
func (b *Batch) Finish(processed, skipped, failed int) {
	now := time.Now()
	b.finishedAt = &now
	b.processed = processed
	b.skipped = skipped
	b.failed = failed
}

// SetCounts overwrites the aggregate counts without finishing the batch.
func (b *Batch) SetCounts(processed, skipped, failed int) {
	b.processed = processed
	b.skipped = skipped
	b.failed = failed
}

// Validate checks that the batch has a valid level and a dataset root.
func (b *Batch) Validate() error {
	if !b.level.Valid() {
		return fmt.Errorf("invalid analysis level: %q", b.level)
	}
	if b.root == "" {
		return fmt.Errorf("batch root cannot be empty")
	}
	if b.task == "" {
		return fmt.Errorf("batch task cannot be empty")
	}
	return nil
}
