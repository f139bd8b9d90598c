package history

import (
	"context"
	"fmt"

	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/storage"
)

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.RunRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service queries past script runs.
type Service struct {
	repo   storage.RunRepository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// ListRequest represents the list request parameters.
type ListRequest struct {
	// Limit caps the number of returned runs, 0 means no limit.
	Limit int
	// StatusFilter is an optional filter to only show runs with this status.
	StatusFilter *model.RunStatus
}

// List lists runs newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, req ListRequest) ([]model.RunRecord, error) {
	s.logger.Debugf("listing runs with filter: %v", req.StatusFilter)

	// With a filter the limit applies after filtering.
	limit := req.Limit
	if req.StatusFilter != nil {
		limit = 0
	}

	runs, err := s.repo.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	if req.StatusFilter != nil {
		filtered := make([]model.RunRecord, 0, len(runs))
		for _, r := range runs {
			if r.Status == *req.StatusFilter {
				filtered = append(filtered, r)
			}
		}
		runs = filtered

		if req.Limit > 0 && len(runs) > req.Limit {
			runs = runs[:req.Limit]
		}
	}

	s.logger.Debugf("found %d runs", len(runs))
	return runs, nil
}

// Get returns a single run.
func (s *Service) Get(ctx context.Context, id string) (*model.RunRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("run id is required: %w", model.ErrNotValid)
	}

	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	return run, nil
}
