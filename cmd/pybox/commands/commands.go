package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/vidtree/pybox/internal/conventions"
	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/storage"
	"github.com/vidtree/pybox/internal/storage/memory"
	"github.com/vidtree/pybox/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// ExitCodeError asks main to exit with Code without printing anything else,
// the command already rendered the failure.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitCodeError) Unwrap() error { return e.Err }

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DBPath     string
	NoHistory  bool
	EnvFile    string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDBPath := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir, conventions.DefaultDBFile)
	app.Flag("db-path", "Path to the run history SQLite database file.").Envar("PYBOX_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)
	app.Flag("no-history", "Do not persist run history.").BoolVar(&c.NoHistory)
	app.Flag("env-file", "Dotenv file loaded before reading flags from the environment.").Default(DefaultEnvFile).StringVar(&c.EnvFile)

	return c
}

// newRunRepository returns the run history repository and its close func.
func (r *RootCommand) newRunRepository(ctx context.Context) (storage.RunRepository, func(), error) {
	if r.NoHistory {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: r.Logger})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create memory repository: %w", err)
		}
		return repo, func() {}, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: r.DBPath,
		Logger: r.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create repository: %w", err)
	}

	closeRepo := func() {
		if err := repo.Close(); err != nil {
			r.Logger.Warningf("Could not close repository: %s", err)
		}
	}

	return repo, closeRepo, nil
}
