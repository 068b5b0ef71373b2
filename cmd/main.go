package main

import (
	"context"
	"os"

	"github.com/fmriprep-tools/motiontsv/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config, err := shared.FindConfig("")
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}

	if config.Logging.File != "" {
		if fileLogger, err := shared.NewFileLogger(config.Logging.File); err == nil {
			logger = fileLogger
		} else {
			logger.Warn("failed to open log file, logging to stderr", "path", config.Logging.File, "error", err)
		}
	}
	if err := shared.ApplyLogLevel(logger, config.Logging.Level); err != nil {
		logger.Warn("invalid log level in config", "level", config.Logging.Level)
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "motiontsv",
		Usage:    "Filter fMRIPrep motion parameter tables into canonical TSVs",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
