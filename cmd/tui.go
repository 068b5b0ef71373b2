package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fmriprep-tools/motiontsv/internal/shared"
	"github.com/fmriprep-tools/motiontsv/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for study processing.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	bidsDir := cmd.StringArg("bids_dir")
	if bidsDir == "" {
		return fmt.Errorf("%w: usage is tui <bids_dir>", shared.ErrMissingArgument)
	}
	if _, err := os.Stat(bidsDir); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrMissingDataset, bidsDir)
	}

	task := cmd.String("task")
	if task == "" {
		task = r.config.Processing.Task
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/motiontsv-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	layout, resolver, engine := r.newEngine(bidsDir, task)

	model := ui.NewModel(ctx, engine, layout, resolver)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
