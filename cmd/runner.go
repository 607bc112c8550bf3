package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"sunwave/internal/repositories"
	"sunwave/internal/services"
	"sunwave/internal/session"
	"sunwave/internal/shared"
	"sunwave/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	provider   services.Provider
	store      *repositories.Store
	reconciler *tasks.Reconciler
	controller *session.Controller
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Provider   services.Provider
	Store      *repositories.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// When a provider is available the reconciler and session controller are
// built on top of the store; without one, only the store-backed song
// commands work.
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		provider:   opts.Provider,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	if opts.Store != nil {
		r.store = opts.Store
	} else {
		r.store = r.openStore()
	}

	if r.provider != nil {
		r.reconciler = tasks.NewReconciler(r.provider, r.store, r.logger, tasks.Options{
			Interval:    r.config.Polling.Interval(),
			MaxAttempts: r.config.Polling.MaxAttempts,
		})
		r.controller = session.NewController(r.provider, r.store, r.reconciler, r.config.Credits, r.logger)
	}

	return r
}

// openStore opens the configured database, falling back to an unconfigured
// store when the database has not been initialized yet.
func (r *Runner) openStore() *repositories.Store {
	path := r.config.Database.Path
	if path == "" {
		return repositories.NewStore(nil, r.logger)
	}
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			r.logger.Debug("database not initialized, run setup first", "path", path)
			return repositories.NewStore(nil, r.logger)
		}
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		r.logger.Warn("failed to open database, store disabled", "path", path, "error", err)
		return repositories.NewStore(nil, r.logger)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if path == ":memory:" {
		if err := shared.RunMigrations(db); err != nil {
			r.logger.Warn("failed to migrate in-memory database", "error", err)
		}
	}
	return repositories.NewStore(repositories.NewSongRepository(db), r.logger)
}

// Close releases the runner's long-lived resources.
func (r *Runner) Close() {
	if r.controller != nil {
		r.controller.Close()
	}
	if r.reconciler != nil {
		r.reconciler.Stop()
	}
}

// SetLogger swaps the runner's logger (used when the TUI redirects logs to a file).
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// requireController guards commands that need a configured provider.
func (r *Runner) requireController() (*session.Controller, error) {
	if r.controller == nil {
		return nil, fmt.Errorf("%w: set provider.api_key in config.toml", shared.ErrMissingAPIKey)
	}
	return r.controller, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, generateCommand, extendCommand, coverCommand, personaCommand, songsCommand, watchCommand, tuiCommand,
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
