// package tasks implements motion-table processing over a study tree.
//
// The core abstraction is Engine, which expands an analysis request into
// subject/session pairs, enumerates runs, and applies the column projection
// to every candidate file. Operations emit progress updates via channels
// for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/fmriprep-tools/motiontsv/internal/bids"
	"github.com/fmriprep-tools/motiontsv/internal/models"
	"github.com/fmriprep-tools/motiontsv/internal/nifti"
	"github.com/fmriprep-tools/motiontsv/internal/shared"
)

// samplesPerRun is the fixed number of time samples one run contributes to
// the filtered timeseries artifact. Run counts are derived by integer
// division of the artifact's leading axis by this constant.
const samplesPerRun = 383

// FileResult records the outcome of one candidate transform.
type FileResult struct {
	Candidate bids.Candidate // Resolved input/output paths with run and pattern
	Outcome   models.Outcome // Processed, skipped or failed
	Rows      int            // Data rows written when processed
	Detail    string         // Skip or failure explanation
}

// PairResult aggregates the candidate outcomes for one subject/session.
type PairResult struct {
	Subject   string
	Session   string
	Runs      []string     // Run identifiers considered for this pair
	Files     []FileResult // One entry per run and pattern
	Processed int
	Skipped   int
	Failed    int
}

// BatchResult aggregates pair results for a whole analysis invocation.
type BatchResult struct {
	Level     models.AnalysisLevel
	Pairs     []PairResult
	Processed int
	Skipped   int
	Failed    int
}

func (b *BatchResult) add(pr PairResult) {
	b.Pairs = append(b.Pairs, pr)
	b.Processed += pr.Processed
	b.Skipped += pr.Skipped
	b.Failed += pr.Failed
}

// Transformer converts one motion table into its projected form.
// This abstraction allows for easier testing and decoupling from concrete
// implementation.
type Transformer interface {
	Transform(inputPath, outputPath string) (rows, cols int, err error)
}

// Engine defines the processing operations over a study tree.
type Engine interface {
	// ProcessRun processes one explicit run for a subject/session, applying
	// every filename pattern.
	ProcessRun(ctx context.Context, progress chan<- ProgressUpdate, subject, session, run string) (*PairResult, error)

	// ProcessPair enumerates runs for a subject/session and processes every
	// resulting candidate.
	ProcessPair(ctx context.Context, progress chan<- ProgressUpdate, subject, session string) (*PairResult, error)

	// RunParticipant processes the cross product of explicit subject and
	// session label lists.
	RunParticipant(ctx context.Context, progress chan<- ProgressUpdate, subjects, sessions []string) (*BatchResult, error)

	// RunGroup discovers subjects and sessions from the study tree and
	// processes every pair.
	RunGroup(ctx context.Context, progress chan<- ProgressUpdate) (*BatchResult, error)

	// EnumerateRuns reports the run identifiers available for a
	// subject/session.
	EnumerateRuns(subject, session string) ([]string, error)
}

// ProcessEngine implements Engine over a layout, a resolver and a table
// transformer.
type ProcessEngine struct {
	layout      *bids.Layout
	resolver    *bids.Resolver
	transformer Transformer
	logger      *log.Logger
}

// NewProcessEngine creates a ProcessEngine with the provided dependencies.
// A nil logger falls back to the default stderr logger.
func NewProcessEngine(layout *bids.Layout, resolver *bids.Resolver, transformer Transformer, logger *log.Logger) *ProcessEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ProcessEngine{
		layout:      layout,
		resolver:    resolver,
		transformer: transformer,
		logger:      logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ProcessEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// EnumerateRuns derives the run identifiers for a subject/session from the
// filtered timeseries artifact. A missing or unreadable artifact yields an
// empty list; the caller skips the pair.
func (e *ProcessEngine) EnumerateRuns(subject, session string) ([]string, error) {
	path := e.resolver.TimeseriesPath(subject, session)
	shape, err := nifti.Shape(path)
	if err != nil {
		e.logger.Warn("timeseries artifact unavailable", "subject", subject, "session", session, "error", err)
		return nil, nil
	}

	count := shape[0] / samplesPerRun
	runs := make([]string, 0, count)
	for i := int64(1); i <= count; i++ {
		runs = append(runs, fmt.Sprintf("run-%02d", i))
	}
	return runs, nil
}

// processCandidate applies the skip logic and transform for one candidate.
// Failures are captured in the result, never returned; a bad file must not
// abort the surrounding batch.
func (e *ProcessEngine) processCandidate(c bids.Candidate) FileResult {
	if _, err := os.Stat(c.Input); os.IsNotExist(err) {
		e.logger.Debug("input missing, skipping", "path", c.Input, "pattern", c.Pattern.Label)
		return FileResult{Candidate: c, Outcome: models.OutcomeSkippedInputMissing, Detail: "input not found"}
	}
	if _, err := os.Stat(c.Output); err == nil {
		e.logger.Debug("output exists, skipping", "path", c.Output, "pattern", c.Pattern.Label)
		return FileResult{Candidate: c, Outcome: models.OutcomeSkippedOutputExists, Detail: "output already exists"}
	}

	rows, cols, err := e.transformer.Transform(c.Input, c.Output)
	if err != nil {
		e.logger.Error("transform failed", "input", c.Input, "pattern", c.Pattern.Label, "error", err)
		return FileResult{Candidate: c, Outcome: models.OutcomeFailed, Detail: err.Error()}
	}

	e.logger.Info("wrote filtered table", "output", c.Output, "rows", rows, "columns", cols)
	return FileResult{Candidate: c, Outcome: models.OutcomeProcessed, Rows: rows}
}

// processCandidates runs every candidate sequentially, tallying outcomes
// into result.
func (e *ProcessEngine) processCandidates(ctx context.Context, progress chan<- ProgressUpdate, candidates []bids.Candidate, result *PairResult) error {
	total := len(candidates)
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.sendProgress(progress, processFileUpdate(i+1, total, c))

		fr := e.processCandidate(c)
		result.Files = append(result.Files, fr)
		switch {
		case fr.Outcome == models.OutcomeProcessed:
			result.Processed++
		case fr.Outcome.Skipped():
			result.Skipped++
		default:
			result.Failed++
		}
		e.sendProgress(progress, fileOutcomeUpdate(i+1, total, fr))
	}
	return nil
}

// logPairSummary emits the per-pair completion line.
func (e *ProcessEngine) logPairSummary(result *PairResult) {
	if result.Processed > 0 {
		e.logger.Infof("Successfully processed %d file(s) for %s %s", result.Processed, result.Subject, result.Session)
	} else {
		e.logger.Infof("No files needed processing for %s %s", result.Subject, result.Session)
	}
}

// ProcessRun processes a single explicit run, applying both filename
// patterns. Skip logic matches the batch path: missing inputs and existing
// outputs are recorded, not errors.
func (e *ProcessEngine) ProcessRun(ctx context.Context, progress chan<- ProgressUpdate, subject, session, run string) (*PairResult, error) {
	result := &PairResult{Subject: subject, Session: session, Runs: []string{run}}

	candidates := e.resolver.Candidates(subject, session, []string{run})
	if err := e.processCandidates(ctx, progress, candidates, result); err != nil {
		return result, err
	}

	e.logPairSummary(result)
	return result, nil
}

// ProcessPair enumerates runs for a subject/session and processes every
// candidate. A missing subject directory or an empty enumeration yields an
// empty result, never an error.
func (e *ProcessEngine) ProcessPair(ctx context.Context, progress chan<- ProgressUpdate, subject, session string) (*PairResult, error) {
	result := &PairResult{Subject: subject, Session: session}

	if !e.layout.HasSubject(subject) {
		e.logger.Warn("subject directory missing, skipping", "subject", subject)
		e.sendProgress(progress, subjectMissingUpdate(subject))
		return result, nil
	}

	e.sendProgress(progress, enumerateUpdate(subject, session))
	runs, err := e.EnumerateRuns(subject, session)
	if err != nil {
		return result, err
	}
	result.Runs = runs

	if len(runs) == 0 {
		e.logger.Info("no runs found", "subject", subject, "session", session)
		e.sendProgress(progress, noRunsUpdate(subject, session))
		return result, nil
	}
	e.sendProgress(progress, runsFoundUpdate(subject, session, runs))

	candidates := e.resolver.Candidates(subject, session, runs)
	if err := e.processCandidates(ctx, progress, candidates, result); err != nil {
		return result, err
	}

	e.logPairSummary(result)
	return result, nil
}

// RunParticipant processes the cross product of the supplied subject and
// session labels. Both lists are required; an empty list is a fatal
// argument error.
func (e *ProcessEngine) RunParticipant(ctx context.Context, progress chan<- ProgressUpdate, subjects, sessions []string) (*BatchResult, error) {
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: participant level requires subject labels", shared.ErrMissingArgument)
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("%w: participant level requires session labels", shared.ErrMissingArgument)
	}

	result := &BatchResult{Level: models.LevelParticipant}
	return result, e.runPairs(ctx, progress, subjects, sessions, result)
}

// RunGroup discovers subjects from the study tree and sessions as the
// union across subjects, then processes every pair.
func (e *ProcessEngine) RunGroup(ctx context.Context, progress chan<- ProgressUpdate) (*BatchResult, error) {
	e.sendProgress(progress, discoverUpdate())

	subjects, err := e.layout.Subjects()
	if err != nil {
		return nil, err
	}
	sessions, err := e.layout.SessionUnion(subjects)
	if err != nil {
		return nil, err
	}
	e.logger.Info("discovered study members", "subjects", len(subjects), "sessions", len(sessions))

	result := &BatchResult{Level: models.LevelGroup}
	return result, e.runPairs(ctx, progress, subjects, sessions, result)
}

// runPairs iterates the subject/session cross product sequentially,
// aggregating pair results into result.
func (e *ProcessEngine) runPairs(ctx context.Context, progress chan<- ProgressUpdate, subjects, sessions []string, result *BatchResult) error {
	total := len(subjects) * len(sessions)
	step := 0
	for _, subject := range subjects {
		for _, session := range sessions {
			step++
			if err := ctx.Err(); err != nil {
				return err
			}
			e.sendProgress(progress, pairUpdate(step, total, subject, session))

			pr, err := e.ProcessPair(ctx, progress, subject, session)
			if err != nil {
				return err
			}
			result.add(*pr)
		}
	}

	e.logger.Infof("Batch complete: %d processed, %d skipped, %d failed", result.Processed, result.Skipped, result.Failed)
	e.sendProgress(progress, finalizeUpdate(result))
	return nil
}
