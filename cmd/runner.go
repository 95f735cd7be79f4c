package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"packtrack/internal/repositories"
	"packtrack/internal/services"
	"packtrack/internal/shared"
	"packtrack/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.CatalogService
	checker    services.ReleaseChecker
	db         *sql.DB
	series     *repositories.SeriesRepository
	songs      *repositories.SongRepository
	overrides  *repositories.OverrideRepository
	flags      *repositories.FlagRepository
	engine     *tasks.ReconcileEngine
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.CatalogService
	Checker    services.ReleaseChecker
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
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

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		checker:    opts.Checker,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	if opts.DB != nil {
		r.attachDatabase(opts.DB)
	}

	return r
}

// SetLogger replaces the runner's logger and propagates it to the engine.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.db != nil {
		r.attachDatabase(r.db)
	}
}

// ensureDatabase opens the configured database on first use and wires the
// repository layer and the reconciliation engine.
func (r *Runner) ensureDatabase() error {
	if r.db != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.attachDatabase(db)
	return nil
}

func (r *Runner) attachDatabase(db *sql.DB) {
	r.db = db
	r.series = repositories.NewSeriesRepository(db)
	r.songs = repositories.NewSongRepository(db)
	r.overrides = repositories.NewOverrideRepository(db)
	r.flags = repositories.NewFlagRepository(db)
	r.engine = tasks.NewReconcileEngine(
		r.catalog, r.checker,
		r.series, r.songs, r.overrides, r.flags,
		r.logger, r.config.Matching.FuzzyThreshold,
	)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, seriesCommand, songCommand, tracklistCommand, overrideCommand, flagCommand, discCommand, serveCommand, tuiCommand,
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
