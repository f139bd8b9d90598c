package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/vidtree/pybox/internal/app/check"
	"github.com/vidtree/pybox/internal/conventions"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/storage/sqlite"
	"github.com/vidtree/pybox/internal/supervisor"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	targetDir     string
	pthFile       string
	noInterpreter bool
	format        string
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run health checks on an installation.")
	c.Cmd.Flag("dir", "Installation directory.").Short('d').Default(conventions.DefaultInstallDir).StringVar(&c.targetDir)
	c.Cmd.Flag("pth-file", "Path config file name, detected when empty.").StringVar(&c.pthFile)
	c.Cmd.Flag("no-interpreter", "Do not start the interpreter.").BoolVar(&c.noInterpreter)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg := check.ServiceConfig{Logger: logger}
	if !c.noInterpreter {
		runner, err := supervisor.NewSupervisor(supervisor.SupervisorConfig{Logger: logger})
		if err != nil {
			return fmt.Errorf("could not create supervisor: %w", err)
		}
		cfg.Runner = runner
	}

	svc, err := check.NewService(cfg)
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	results, err := svc.Run(ctx, check.Request{Root: c.targetDir, PathConfigFile: c.pthFile})
	if err != nil {
		return fmt.Errorf("could not check installation: %w", err)
	}
	if !c.rootCmd.NoHistory {
		results = append(results, c.checkHistoryDB(ctx))
	}

	if err := newPrinter(c.format, c.rootCmd).PrintChecks(results); err != nil {
		return fmt.Errorf("could not print checks: %w", err)
	}

	if summary := model.SummarizeChecks(results); !summary.Healthy() {
		return fmt.Errorf("health checks failed with %d error(s)", summary.Errors)
	}

	return nil
}

// checkHistoryDB checks the run history database without creating it.
func (c DoctorCommand) checkHistoryDB(ctx context.Context) model.CheckResult {
	const id = "history_db"

	if _, err := os.Stat(c.rootCmd.DBPath); err != nil {
		return model.CheckResult{ID: id, Status: model.CheckStatusWarning, Message: fmt.Sprintf("%s not created yet", c.rootCmd.DBPath)}
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: c.rootCmd.DBPath, Logger: c.rootCmd.Logger})
	if err != nil {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: err.Error()}
	}
	defer repo.Close()

	version, err := repo.SchemaVersion(ctx)
	if err != nil {
		return model.CheckResult{ID: id, Status: model.CheckStatusError, Message: err.Error()}
	}

	return model.CheckResult{ID: id, Status: model.CheckStatusOK, Message: fmt.Sprintf("%s (schema v%d)", c.rootCmd.DBPath, version)}
}
