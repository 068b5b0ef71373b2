// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// runCommand handles single-run processing
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Process the motion tables of a single run",
		ArgsUsage: "<data_dir> <subject> <session> <task> <run>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "data_dir"},
			&cli.StringArg{Name: "subject"},
			&cli.StringArg{Name: "session"},
			&cli.StringArg{Name: "task"},
			&cli.StringArg{Name: "run"},
		},
		Action: r.Run,
	}
}

// appCommand handles participant and group level batch processing
func appCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "app",
		Usage:     "Process a study tree at the participant or group level",
		ArgsUsage: "<bids_dir> <analysis_level>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "bids_dir"},
			&cli.StringArg{Name: "analysis_level"},
		},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "participant_label",
				Usage: "Subject label to process, e.g. sub-01 (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "session_label",
				Usage: "Session label to process, e.g. ses-01 (repeatable)",
			},
			&cli.StringFlag{
				Name:  "task",
				Usage: "Task label used in filenames (defaults to the configured task)",
			},
			&cli.BoolFlag{
				Name:  "skip_bids_validator",
				Usage: "Skip dataset structure validation",
			},
		},
		Action: r.App,
	}
}

// reportCommand summarizes the processing state of a study tree
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Write a processing-state report for a study tree",
		ArgsUsage: "<bids_dir>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "bids_dir"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format: text, markdown, csv or xlsx (defaults to the configured format)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory to write the report into (defaults to the configured directory)",
			},
			&cli.StringFlag{
				Name:  "task",
				Usage: "Task label used in filenames (defaults to the configured task)",
			},
		},
		Action: r.Report,
	}
}

// historyCommand inspects recorded processing batches
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded processing batches",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent batches",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of batches to show",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "level",
						Usage: "Filter by analysis level (run, participant or group)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:      "show",
				Usage:     "Show the file outcomes of one batch",
				ArgsUsage: "<batch_id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "batch_id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the history database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "motiontsv.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a configuration file from the embedded template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Destination for the configuration file",
						Value: "motiontsv.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive processing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Launch interactive TUI for study processing",
		ArgsUsage: "<bids_dir>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "bids_dir"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "task",
				Usage: "Task label used in filenames (defaults to the configured task)",
			},
		},
		Action: r.TUI,
	}
}
