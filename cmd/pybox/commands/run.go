package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/vidtree/pybox/internal/app/run"
	"github.com/vidtree/pybox/internal/conventions"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/sink"
	"github.com/vidtree/pybox/internal/supervisor"
	utilsenv "github.com/vidtree/pybox/internal/utils/env"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	targetDir string
	workDir   string
	envSpecs  []string
	args      []string
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run the interpreter with the given arguments (use -- before interpreter flags).")
	c.Cmd.Flag("dir", "Installation directory.").Short('d').Default(conventions.DefaultInstallDir).StringVar(&c.targetDir)
	c.Cmd.Flag("workdir", "Working directory for the interpreter.").Short('w').StringVar(&c.workDir)
	c.Cmd.Flag("env", "Environment variables (KEY=VALUE or KEY from current environment). Can be repeated.").Short('e').StringsVar(&c.envSpecs)
	c.Cmd.Arg("args", "Interpreter arguments, joined with spaces.").StringsVar(&c.args)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	svc, closeRepo, err := newRunService(ctx, c.rootCmd, c.workDir, c.envSpecs)
	if err != nil {
		return err
	}
	defer closeRepo()

	rec, err := svc.Run(ctx, run.Request{
		Installation: model.Installation{Root: c.targetDir},
		Args:         strings.Join(c.args, " "),
		Sink:         sink.NewWriterSink(c.rootCmd.Stdout),
	})

	return runResult(rec, err)
}

// newRunService wires the run service with the supervisor and the history
// repository.
func newRunService(ctx context.Context, rootCmd *RootCommand, workDir string, envSpecs []string) (*run.Service, func(), error) {
	logger := rootCmd.Logger

	env, err := utilsenv.ParseSpecs(envSpecs)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --env value: %w", err)
	}

	runner, err := supervisor.NewSupervisor(supervisor.SupervisorConfig{
		WorkDir: workDir,
		Env:     utilsenv.List(env),
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create supervisor: %w", err)
	}

	repo, closeRepo, err := rootCmd.newRunRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	svc, err := run.NewService(run.ServiceConfig{
		Runner:     runner,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		closeRepo()
		return nil, nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc, closeRepo, nil
}

// runResult maps a finished run to the command result. Errors were already
// rendered on the output sink.
func runResult(rec *model.RunRecord, err error) error {
	if err != nil {
		return &ExitCodeError{Code: 1, Err: err}
	}
	if rec.ExitCode != 0 {
		return &ExitCodeError{Code: rec.ExitCode}
	}
	return nil
}
