package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.RunRepository.
type Repository struct {
	db       *sql.DB
	migrator *migrations.Migrator
	logger   log.Logger
}

// NewRepository opens (creating if needed) the database at cfg.DBPath and
// applies pending migrations.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, migrator: migrator, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// SchemaVersion returns the applied migration version.
func (r *Repository) SchemaVersion(ctx context.Context) (uint, error) {
	v, dirty, err := r.migrator.Version(ctx)
	if err != nil {
		return 0, err
	}
	if dirty {
		return v, fmt.Errorf("schema version %d is dirty: %w", v, model.ErrNotValid)
	}
	return v, nil
}

// CreateRun stores a new run record.
func (r *Repository) CreateRun(ctx context.Context, run model.RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("run id is required: %w", model.ErrNotValid)
	}

	query := `
		INSERT INTO runs (
			id, root, args, status,
			exit_code, error, lines,
			started_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		run.ID,
		run.Root,
		run.Args,
		run.Status,
		run.ExitCode,
		run.Error,
		run.Lines,
		run.StartedAt.UnixMilli(),
		unixMilliOrNil(run.FinishedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: runs.") {
			return fmt.Errorf("run %s: %w", run.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert run: %w", err)
	}

	r.logger.Debugf("Created run in repository: %s", run.ID)
	return nil
}

// GetRun retrieves a run by ID.
func (r *Repository) GetRun(ctx context.Context, id string) (*model.RunRecord, error) {
	query := `
		SELECT
			id, root, args, status,
			exit_code, error, lines,
			started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query run: %w", err)
	}

	return &run, nil
}

// ListRuns returns runs newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT
			id, root, args, status,
			exit_code, error, lines,
			started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("could not query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

// UpdateRun replaces a stored run.
func (r *Repository) UpdateRun(ctx context.Context, run model.RunRecord) error {
	query := `
		UPDATE runs
		SET
			root = ?,
			args = ?,
			status = ?,
			exit_code = ?,
			error = ?,
			lines = ?,
			started_at = ?,
			finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		run.Root,
		run.Args,
		run.Status,
		run.ExitCode,
		run.Error,
		run.Lines,
		run.StartedAt.UnixMilli(),
		unixMilliOrNil(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated run in repository: %s", run.ID)
	return nil
}

// DeleteRun deletes a run.
func (r *Repository) DeleteRun(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run %s: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted run from repository: %s", id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (model.RunRecord, error) {
	var run model.RunRecord
	var status string
	var startedAt int64
	var finishedAt sql.NullInt64

	err := s.Scan(
		&run.ID,
		&run.Root,
		&run.Args,
		&status,
		&run.ExitCode,
		&run.Error,
		&run.Lines,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return model.RunRecord{}, err
	}

	run.Status = model.RunStatus(status)
	run.StartedAt = timeFromUnixMilli(startedAt)
	if finishedAt.Valid {
		t := timeFromUnixMilli(finishedAt.Int64)
		run.FinishedAt = &t
	}

	return run, nil
}

func unixMilliOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.UnixMilli()
	return &u
}

func timeFromUnixMilli(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
