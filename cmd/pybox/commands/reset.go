package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/vidtree/pybox/internal/app/reset"
	"github.com/vidtree/pybox/internal/conventions"
	"github.com/vidtree/pybox/internal/provision"
)

type ResetCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	targetDir string
	force     bool
}

// NewResetCommand returns the reset command.
func NewResetCommand(rootCmd *RootCommand, app *kingpin.Application) *ResetCommand {
	c := &ResetCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("reset", "Remove an installation so the next setup provisions it again.")
	c.Cmd.Flag("dir", "Installation directory.").Short('d').Default(conventions.DefaultInstallDir).StringVar(&c.targetDir)
	c.Cmd.Flag("force", "Remove partial installations too.").Short('f').BoolVar(&c.force)

	return c
}

func (c ResetCommand) Name() string { return c.Cmd.FullCommand() }

func (c ResetCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	installer, err := provision.NewRuntimeInstaller(provision.RuntimeInstallerConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create installer: %w", err)
	}

	svc, err := reset.NewService(reset.ServiceConfig{
		Installer: installer,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if err := svc.Run(ctx, reset.Request{TargetDir: c.targetDir, Force: c.force}); err != nil {
		return err
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Removed %s\n", c.targetDir)
	return nil
}
