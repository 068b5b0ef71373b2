package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fmriprep-tools/motiontsv/internal/models"
	"github.com/fmriprep-tools/motiontsv/internal/repositories"
	"github.com/fmriprep-tools/motiontsv/internal/shared"
	"github.com/fmriprep-tools/motiontsv/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Run processes the motion tables of exactly one run.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	dataDir := cmd.StringArg("data_dir")
	subject := cmd.StringArg("subject")
	session := cmd.StringArg("session")
	task := cmd.StringArg("task")
	run := cmd.StringArg("run")

	if dataDir == "" || subject == "" || session == "" || task == "" || run == "" {
		return fmt.Errorf("%w: usage is run <data_dir> <subject> <session> <task> <run>", shared.ErrMissingArgument)
	}
	if _, err := os.Stat(dataDir); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrMissingDataset, dataDir)
	}

	r.logger.Info("processing single run", "subject", subject, "session", session, "task", task, "run", run)

	_, _, engine := r.newEngine(dataDir, task)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		r.drainProgress(progressCh)
		close(done)
	}()

	result, err := engine.ProcessRun(ctx, progressCh, subject, session, run)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if result.Processed > 0 {
		r.writePlain("Processed %d file(s)\n", result.Processed)
	}
	r.writePlain("Motion filtering complete\n")

	r.recordBatch(dataDir, task, &tasks.BatchResult{
		Level:     models.LevelRun,
		Pairs:     []tasks.PairResult{*result},
		Processed: result.Processed,
		Skipped:   result.Skipped,
		Failed:    result.Failed,
	})

	return nil
}

// App processes a study tree at the participant or group analysis level.
func (r *Runner) App(ctx context.Context, cmd *cli.Command) error {
	bidsDir := cmd.StringArg("bids_dir")
	level := cmd.StringArg("analysis_level")
	subjects := cmd.StringSlice("participant_label")
	sessions := cmd.StringSlice("session_label")
	task := cmd.String("task")
	if task == "" {
		task = r.config.Processing.Task
	}

	if bidsDir == "" || level == "" {
		return fmt.Errorf("%w: usage is app <bids_dir> <analysis_level>", shared.ErrMissingArgument)
	}
	if _, err := os.Stat(bidsDir); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrMissingDataset, bidsDir)
	}

	layout, _, engine := r.newEngine(bidsDir, task)

	if cmd.Bool("skip_bids_validator") {
		r.logger.Warn("dataset validation skipped")
	} else if err := layout.Validate(); err != nil {
		return err
	}

	r.logger.Info("starting analysis", "level", level, "root", bidsDir, "task", task)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		r.drainProgress(progressCh)
		close(done)
	}()

	var result *tasks.BatchResult
	var err error

	switch models.AnalysisLevel(level) {
	case models.LevelParticipant:
		result, err = engine.RunParticipant(ctx, progressCh, subjects, sessions)
	case models.LevelGroup:
		result, err = engine.RunGroup(ctx, progressCh)
	default:
		err = fmt.Errorf("%w: analysis level must be participant or group, got %q", shared.ErrInvalidArgument, level)
	}
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Analysis Complete!")
	r.writePlain("Level: %s\n", result.Level)
	r.writePlain("Pairs: %d\n", len(result.Pairs))
	r.writePlain("Processed: %d\n", result.Processed)
	r.writePlain("Skipped: %d\n", result.Skipped)
	r.writePlain("Failed: %d\n", result.Failed)

	r.recordBatch(bidsDir, task, result)

	return nil
}

// drainProgress prints progress updates until the channel closes.
func (r *Runner) drainProgress(ch <-chan tasks.ProgressUpdate) {
	for update := range ch {
		switch update.Phase {
		case tasks.Discover:
			r.writePlain("🔍 %s\n", update.Message)
		case tasks.Enumerate:
			r.writePlain("\n📂 %s\n", update.Message)
		case tasks.Process:
			r.writePlain("   %s\n", update.Message)
		case tasks.Finalize:
			r.writePlain("\n✓ %s\n", update.Message)
		}
	}
}

// recordBatch persists a finished batch and its file outcomes when history
// recording is enabled. Store failures are logged, never fatal.
func (r *Runner) recordBatch(root, task string, result *tasks.BatchResult) {
	if !r.config.Processing.Record {
		return
	}

	db, err := r.openStore()
	if err != nil {
		r.logger.Warn("history not recorded", "error", err)
		return
	}
	defer db.Close()

	batch := models.NewBatch(0, result.Level, root, task)
	batch.Finish(result.Processed, result.Skipped, result.Failed)

	if err := repositories.NewBatchRepository(db).Create(batch); err != nil {
		r.logger.Warn("history not recorded", "error", err)
		return
	}

	records := repositories.NewRecordRepository(db)
	total := 0
	for _, pair := range result.Pairs {
		for _, f := range pair.Files {
			record := models.NewFileRecord(batch.ID(), pair.Subject, pair.Session, f.Candidate.Run, f.Candidate.Pattern.Label, f.Outcome)
			record.SetDetail(f.Detail)
			record.SetRowCount(f.Rows)
			if err := records.Create(record); err != nil {
				r.logger.Warn("file outcome not recorded", "run", f.Candidate.Run, "error", err)
				continue
			}
			total++
		}
	}

	r.logger.Info("history recorded", "batch", batch.Sequence(), "files", total)
}
