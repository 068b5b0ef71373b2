package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fmriprep-tools/motiontsv/internal/bids"
	"github.com/fmriprep-tools/motiontsv/internal/motion"
	"github.com/fmriprep-tools/motiontsv/internal/shared"
	"github.com/fmriprep-tools/motiontsv/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	logger      *log.Logger
	output      io.Writer
	transformer tasks.Transformer
	configPath  string
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Logger      *log.Logger
	Output      io.Writer
	Transformer tasks.Transformer
	ConfigPath  string
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Transformer == nil {
		opts.Transformer = motion.NewTransformer()
	}

	return &Runner{
		config:      opts.Config,
		logger:      opts.Logger,
		output:      opts.Output,
		transformer: opts.Transformer,
		configPath:  opts.ConfigPath,
	}
}

// SetLogger swaps the runner's logger. Engines built afterwards inherit it.
func (r *Runner) SetLogger(l *log.Logger) { r.logger = l }

// newEngine builds the study access objects for one root directory and task.
func (r *Runner) newEngine(root, task string) (*bids.Layout, *bids.Resolver, *tasks.ProcessEngine) {
	layout := bids.NewLayout(root)
	resolver := bids.NewResolver(root, task)
	engine := tasks.NewProcessEngine(layout, resolver, r.transformer, r.logger)
	return layout, resolver, engine
}

// openStore opens the history database and ensures the schema exists.
func (r *Runner) openStore() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}

	return db, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, appCommand, reportCommand, historyCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
