package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fmriprep-tools/motiontsv/internal/report"
	"github.com/fmriprep-tools/motiontsv/internal/shared"
	"github.com/urfave/cli/v3"
)

// Report scans a study tree and writes a processing-state report.
func (r *Runner) Report(ctx context.Context, cmd *cli.Command) error {
	bidsDir := cmd.StringArg("bids_dir")
	if bidsDir == "" {
		return fmt.Errorf("%w: usage is report <bids_dir>", shared.ErrMissingArgument)
	}
	if _, err := os.Stat(bidsDir); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrMissingDataset, bidsDir)
	}

	task := cmd.String("task")
	if task == "" {
		task = r.config.Processing.Task
	}
	format := cmd.String("format")
	if format == "" {
		format = r.config.Report.Format
	}
	dir := cmd.String("output")
	if dir == "" {
		dir = r.config.Report.Directory
	}

	layout, resolver, engine := r.newEngine(bidsDir, task)

	r.logger.Info("scanning study tree", "root", bidsDir, "task", task)

	rep, err := report.Build(layout, resolver, engine)
	if err != nil {
		return err
	}

	path, err := report.Write(rep, dir, format)
	if err != nil {
		return err
	}

	r.writePlain("Report written to %s\n", path)
	r.writePlain("Complete: %d  Ready: %d  Missing: %d\n", rep.Complete, rep.Ready, rep.Missing)

	return nil
}
