package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.RunRepository.
type Repository struct {
	runs   map[string]model.RunRecord
	mu     sync.RWMutex
	logger log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		runs:   make(map[string]model.RunRecord),
		logger: cfg.Logger,
	}, nil
}

// CreateRun stores a new run record.
func (r *Repository) CreateRun(ctx context.Context, run model.RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required: %w", model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; ok {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrAlreadyExists)
	}

	r.runs[run.ID] = copyRun(run)
	r.logger.Debugf("Created run in repository: %s", run.ID)

	return nil
}

// GetRun retrieves a run by ID.
func (r *Repository) GetRun(ctx context.Context, id string) (*model.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, model.ErrNotFound)
	}

	runCopy := copyRun(run)
	return &runCopy, nil
}

// ListRuns returns runs newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, copyRun(run))
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID > runs[j].ID
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

// UpdateRun replaces a stored run.
func (r *Repository) UpdateRun(ctx context.Context, run model.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; !ok {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}

	r.runs[run.ID] = copyRun(run)
	r.logger.Debugf("Updated run in repository: %s", run.ID)

	return nil
}

// DeleteRun deletes a run.
func (r *Repository) DeleteRun(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[id]; !ok {
		return fmt.Errorf("run %s: %w", id, model.ErrNotFound)
	}

	delete(r.runs, id)
	r.logger.Debugf("Deleted run from repository: %s", id)

	return nil
}

// copyRun detaches the FinishedAt pointer from the caller's record.
func copyRun(run model.RunRecord) model.RunRecord {
	if run.FinishedAt != nil {
		t := *run.FinishedAt
		run.FinishedAt = &t
	}
	return run
}
