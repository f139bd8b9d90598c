package storage

import (
	"context"

	"github.com/vidtree/pybox/internal/model"
)

// RunRepository is the interface for run history persistence.
type RunRepository interface {
	CreateRun(ctx context.Context, r model.RunRecord) error
	GetRun(ctx context.Context, id string) (*model.RunRecord, error)
	// ListRuns returns runs newest first. A limit of 0 or less returns all.
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	UpdateRun(ctx context.Context, r model.RunRecord) error
	DeleteRun(ctx context.Context, id string) error
}

// ConfigRepository loads the provisioning configuration.
type ConfigRepository interface {
	GetConfig(ctx context.Context, path string) (model.ProvisioningConfig, error)
}
