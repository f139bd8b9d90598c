package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/vidtree/pybox/internal/app/setup"
	"github.com/vidtree/pybox/internal/conventions"
	"github.com/vidtree/pybox/internal/provision"
	"github.com/vidtree/pybox/internal/sink"
	storageio "github.com/vidtree/pybox/internal/storage/io"
	"github.com/vidtree/pybox/internal/supervisor"
)

type SetupCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	configPath       string
	targetDir        string
	bootstrapScript  string
	skipVersionCheck bool
}

// NewSetupCommand returns the setup command.
func NewSetupCommand(rootCmd *RootCommand, app *kingpin.Application) *SetupCommand {
	c := &SetupCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("setup", "Provision the Python runtime and run the startup scripts.")
	c.Cmd.Flag("config", "Provisioning config file (JSON or YAML).").Short('c').Default(conventions.DefaultConfigFile).StringVar(&c.configPath)
	c.Cmd.Flag("dir", "Installation directory.").Short('d').Default(conventions.DefaultInstallDir).StringVar(&c.targetDir)
	c.Cmd.Flag("bootstrap-script", "Script run after the install, relative to the working directory.").StringVar(&c.bootstrapScript)
	c.Cmd.Flag("skip-version-check", "Do not run the interpreter version check.").BoolVar(&c.skipVersionCheck)

	return c
}

func (c SetupCommand) Name() string { return c.Cmd.FullCommand() }

func (c SetupCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := sink.NewWriterSink(c.rootCmd.Stdout)

	configRepo, configName, err := newConfigRepository(c.configPath)
	if err != nil {
		return err
	}

	installer, err := provision.NewRuntimeInstaller(provision.RuntimeInstallerConfig{
		StatusWriter: c.rootCmd.Stderr,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create installer: %w", err)
	}

	runner, err := supervisor.NewSupervisor(supervisor.SupervisorConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create supervisor: %w", err)
	}

	svc, err := setup.NewService(setup.ServiceConfig{
		ConfigRepository: configRepo,
		Installer:        installer,
		Runner:           runner,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, setup.Request{
		ConfigPath:       configName,
		TargetDir:        c.targetDir,
		SkipVersionCheck: c.skipVersionCheck,
		BootstrapScript:  c.bootstrapScript,
		Sink:             out,
	})
	if err != nil {
		sink.WriteError(out, err)
		return &ExitCodeError{Code: 1, Err: err}
	}

	if res.AlreadyInstalled {
		logger.Infof("Runtime already installed at %s", res.Installation.Root)
	} else {
		logger.Infof("Runtime installed at %s", res.Installation.Root)
	}

	if res.BootstrapStatus != nil && !res.BootstrapStatus.Success() {
		return &ExitCodeError{Code: res.BootstrapStatus.Code}
	}

	return nil
}

// newConfigRepository returns a config repository rooted at the config file
// directory and the file name inside it.
func newConfigRepository(path string) (*storageio.ConfigRepository, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("invalid config path %q: %w", path, err)
	}

	dir, name := filepath.Split(abs)
	return storageio.NewConfigRepository(os.DirFS(dir)), name, nil
}
