package reset

import (
	"context"
	"fmt"

	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/provision"
)

// ServiceConfig is the configuration for the reset service.
type ServiceConfig struct {
	Installer provision.Installer
	Logger    log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Installer == nil {
		return fmt.Errorf("installer is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Reset"})
	return nil
}

// Service removes installations so they can be provisioned again.
type Service struct {
	installer provision.Installer
	logger    log.Logger
}

// NewService creates a new reset service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		installer: cfg.Installer,
		logger:    cfg.Logger,
	}, nil
}

// Request contains the parameters for a reset.
type Request struct {
	TargetDir string
	// Force removes the directory even if it does not hold a valid installation.
	Force bool
}

// Run removes the installation directory.
func (s *Service) Run(ctx context.Context, req Request) error {
	if req.TargetDir == "" {
		return fmt.Errorf("target directory is required: %w", model.ErrNotValid)
	}

	if !req.Force && !s.installer.Installed(req.TargetDir) {
		return fmt.Errorf("%s is not a complete installation, use force to remove it: %w", req.TargetDir, model.ErrNotValid)
	}

	if err := s.installer.Remove(req.TargetDir); err != nil {
		return fmt.Errorf("could not remove installation: %w", err)
	}

	s.logger.Infof("Installation %s removed", req.TargetDir)

	return nil
}
