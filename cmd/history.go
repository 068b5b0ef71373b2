package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fmriprep-tools/motiontsv/internal/models"
	"github.com/fmriprep-tools/motiontsv/internal/repositories"
	"github.com/fmriprep-tools/motiontsv/internal/shared"
	"github.com/urfave/cli/v3"
)

// batchView is the JSON projection of a recorded batch.
type batchView struct {
	ID         string     `json:"id"`
	Sequence   int        `json:"sequence"`
	Level      string     `json:"level"`
	Root       string     `json:"root"`
	Task       string     `json:"task"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Processed  int        `json:"processed"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
}

// recordView is the JSON projection of a recorded file outcome.
type recordView struct {
	Subject  string `json:"subject"`
	Session  string `json:"session"`
	Run      string `json:"run"`
	Pattern  string `json:"pattern"`
	Outcome  string `json:"outcome"`
	Detail   string `json:"detail,omitempty"`
	RowCount int    `json:"row_count"`
}

func newBatchView(b *models.Batch) batchView {
	return batchView{
		ID:         b.ID(),
		Sequence:   b.Sequence(),
		Level:      string(b.Level()),
		Root:       b.Root(),
		Task:       b.Task(),
		StartedAt:  b.StartedAt(),
		FinishedAt: b.FinishedAt(),
		Processed:  b.Processed(),
		Skipped:    b.Skipped(),
		Failed:     b.Failed(),
	}
}

func newRecordView(rec *models.FileRecord) recordView {
	return recordView{
		Subject:  rec.Subject(),
		Session:  rec.Session(),
		Run:      rec.Run(),
		Pattern:  rec.Pattern(),
		Outcome:  string(rec.Outcome()),
		Detail:   rec.Detail(),
		RowCount: rec.RowCount(),
	}
}

// HistoryList lists recent processing batches.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if level := cmd.String("level"); level != "" {
		criteria["level"] = level
	}

	batches, err := repositories.NewBatchRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]batchView, len(batches))
		for i, b := range batches {
			views[i] = newBatchView(b)
		}
		return r.writeJSON(views, true)
	}

	if len(batches) == 0 {
		r.writePlain("No batches recorded yet\n")
		return nil
	}

	r.writePlainHeader("Processing History")
	for _, b := range batches {
		r.writePlain("#%d  %s  %s  task-%s\n", b.Sequence(), b.Level(), b.Root(), b.Task())
		r.writePlain("    started %s", b.StartedAt().Format("2006-01-02 15:04:05"))
		if t := b.FinishedAt(); t != nil {
			r.writePlain(", finished %s", t.Format("2006-01-02 15:04:05"))
		}
		r.writePlain("\n    %d processed, %d skipped, %d failed  (id %s)\n", b.Processed(), b.Skipped(), b.Failed(), b.ID())
	}

	return nil
}

// HistoryShow prints the file outcomes of one batch.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	batchID := cmd.StringArg("batch_id")
	if batchID == "" {
		return fmt.Errorf("%w: usage is history show <batch_id>", shared.ErrMissingArgument)
	}

	db, err := r.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	batch, err := repositories.NewBatchRepository(db).Get(batchID)
	if err != nil {
		return err
	}

	recordRepo := repositories.NewRecordRepository(db)
	records, err := recordRepo.List(map[string]any{"batch_id": batchID})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := struct {
			Batch   batchView    `json:"batch"`
			Records []recordView `json:"records"`
		}{Batch: newBatchView(batch)}
		for _, rec := range records {
			views.Records = append(views.Records, newRecordView(rec))
		}
		return r.writeJSON(views, true)
	}

	tally, err := recordRepo.TallyByOutcome(batchID)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Batch #%d (%s)", batch.Sequence(), batch.Level()))
	r.writePlain("Root: %s\n", batch.Root())
	r.writePlain("Task: %s\n", batch.Task())
	for _, outcome := range []models.Outcome{
		models.OutcomeProcessed, models.OutcomeSkippedInputMissing, models.OutcomeSkippedOutputExists, models.OutcomeFailed,
	} {
		if n := tally[outcome]; n > 0 {
			r.writePlain("%s: %d\n", outcome, n)
		}
	}
	r.writePlain("\n")

	for _, rec := range records {
		r.writePlain("%s %s %s (%s): %s", rec.Subject(), rec.Session(), rec.Run(), rec.Pattern(), rec.Outcome())
		if rec.Outcome() == models.OutcomeProcessed {
			r.writePlain(" [%d rows]", rec.RowCount())
		}
		if rec.Detail() != "" {
			r.writePlain(" - %s", rec.Detail())
		}
		r.writePlain("\n")
	}

	return nil
}
