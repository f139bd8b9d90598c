package setup

import (
	"context"
	"fmt"

	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/provision"
	"github.com/vidtree/pybox/internal/sink"
	"github.com/vidtree/pybox/internal/storage"
	"github.com/vidtree/pybox/internal/supervisor"
)

// ServiceConfig is the configuration for the setup service.
type ServiceConfig struct {
	ConfigRepository storage.ConfigRepository
	Installer        provision.Installer
	Runner           supervisor.Runner
	Logger           log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.ConfigRepository == nil {
		return fmt.Errorf("config repository is required")
	}
	if c.Installer == nil {
		return fmt.Errorf("installer is required")
	}
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Setup"})
	return nil
}

// Service provisions the runtime and runs the startup scripts.
type Service struct {
	configRepo storage.ConfigRepository
	installer  provision.Installer
	runner     supervisor.Runner
	logger     log.Logger
}

// NewService creates a new setup service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		configRepo: cfg.ConfigRepository,
		installer:  cfg.Installer,
		runner:     cfg.Runner,
		logger:     cfg.Logger,
	}, nil
}

// Request contains the parameters for a setup.
type Request struct {
	// ConfigPath is the provisioning config file path.
	ConfigPath string
	// TargetDir is the installation root.
	TargetDir string
	// SkipVersionCheck disables the `--version` sanity run.
	SkipVersionCheck bool
	// BootstrapScript is run after the install when set, e.g. `Scripts/setup.py`.
	// It may carry extra arguments separated by spaces.
	BootstrapScript string
	// Sink receives the child output. Optional.
	Sink sink.Sink
}

// Result is the outcome of a setup.
type Result struct {
	Installation     model.Installation
	AlreadyInstalled bool
	// Version is the interpreter version line, empty when the check is skipped.
	Version string
	// BootstrapStatus is nil when no bootstrap script ran.
	BootstrapStatus *model.ExitStatus
}

// Run ensures the runtime is installed and runs the startup scripts.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.TargetDir == "" {
		return nil, fmt.Errorf("target directory is required: %w", model.ErrNotValid)
	}
	if req.ConfigPath == "" {
		return nil, fmt.Errorf("config path is required: %w", model.ErrNotValid)
	}
	out := req.Sink
	if out == nil {
		out = sink.Discard
	}

	cfg, err := s.configRepo.GetConfig(ctx, req.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("could not load provisioning config: %w", err)
	}

	res := &Result{AlreadyInstalled: s.installer.Installed(req.TargetDir)}
	inst, err := s.installer.EnsureInstalled(ctx, req.TargetDir, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not provision runtime: %w", err)
	}
	res.Installation = *inst

	if !req.SkipVersionCheck {
		version, err := s.versionCheck(ctx, *inst, out)
		if err != nil {
			return nil, err
		}
		res.Version = version
		s.logger.Infof("Interpreter ready: %s", version)
	}

	if req.BootstrapScript != "" {
		s.logger.Infof("Running bootstrap script %s", req.BootstrapScript)
		status, err := s.runner.Run(ctx, *inst, req.BootstrapScript, out)
		if err != nil {
			return nil, fmt.Errorf("could not run bootstrap script: %w", err)
		}
		res.BootstrapStatus = status
		if !status.Success() {
			s.logger.Warningf("Bootstrap script exited with code %d", status.Code)
		}
	}

	return res, nil
}

func (s *Service) versionCheck(ctx context.Context, inst model.Installation, out sink.Sink) (string, error) {
	buf := sink.NewBuffer()
	status, err := s.runner.Run(ctx, inst, "--version", sink.Multi(buf, out))
	if err != nil {
		return "", fmt.Errorf("could not run interpreter version check: %w", err)
	}
	if !status.Success() {
		return "", fmt.Errorf("interpreter version check exited with code %d: %w", status.Code, model.ErrNotValid)
	}

	var version string
	if lines := buf.Lines(); len(lines) > 0 {
		version = lines[0]
	}

	return version, nil
}
