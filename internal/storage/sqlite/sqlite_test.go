package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/storage/sqlite"
)

func runFixture(id string, startedAt time.Time) model.RunRecord {
	return model.RunRecord{
		ID:        id,
		Root:      "/opt/pybox/Python",
		Args:      "Scripts/main.py --data_dir data",
		Status:    model.RunStatusRunning,
		StartedAt: startedAt.UTC().Truncate(time.Millisecond),
	}
}

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "nested", "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	now := time.Now()

	run := runFixture("01J0000000000000000000000A", now)
	require.NoError(t, repo.CreateRun(ctx, run))

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))
	got.StartedAt = run.StartedAt
	assert.Equal(t, run, *got)
	assert.Nil(t, got.FinishedAt)

	finished := now.Add(2 * time.Second).UTC().Truncate(time.Millisecond)
	run.Status = model.RunStatusFailed
	run.ExitCode = 2
	run.Lines = 42
	run.Error = ""
	run.FinishedAt = &finished
	require.NoError(t, repo.UpdateRun(ctx, run))

	got, err = repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, 2, got.ExitCode)
	assert.Equal(t, 42, got.Lines)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, finished.Equal(*got.FinishedAt))

	require.NoError(t, repo.DeleteRun(ctx, run.ID))
	_, err = repo.GetRun(ctx, run.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	run := runFixture("01J0000000000000000000000A", time.Now())
	require.NoError(t, repo.CreateRun(ctx, run))

	tests := map[string]struct {
		do     func() error
		expErr error
	}{
		"Creating a duplicated run should fail.": {
			do:     func() error { return repo.CreateRun(ctx, run) },
			expErr: model.ErrAlreadyExists,
		},
		"Creating a run without ID should fail.": {
			do:     func() error { return repo.CreateRun(ctx, model.RunRecord{}) },
			expErr: model.ErrNotValid,
		},
		"Getting a missing run should fail.": {
			do: func() error {
				_, err := repo.GetRun(ctx, "missing")
				return err
			},
			expErr: model.ErrNotFound,
		},
		"Updating a missing run should fail.": {
			do:     func() error { return repo.UpdateRun(ctx, runFixture("missing", time.Now())) },
			expErr: model.ErrNotFound,
		},
		"Deleting a missing run should fail.": {
			do:     func() error { return repo.DeleteRun(ctx, "missing") },
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.do()
			assert.ErrorIs(t, err, test.expErr)
		})
	}
}

func TestRepositoryListRuns(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	base := time.Now().Add(-time.Hour)

	ids := []string{"01J000000000000000000000A1", "01J000000000000000000000A2", "01J000000000000000000000A3"}
	for i, id := range ids {
		require.NoError(t, repo.CreateRun(ctx, runFixture(id, base.Add(time.Duration(i)*time.Minute))))
	}

	tests := map[string]struct {
		limit  int
		expIDs []string
	}{
		"No limit should return every run newest first.": {
			limit:  0,
			expIDs: []string{ids[2], ids[1], ids[0]},
		},
		"A limit should return the newest runs.": {
			limit:  2,
			expIDs: []string{ids[2], ids[1]},
		},
		"A limit bigger than the history should return every run.": {
			limit:  10,
			expIDs: []string{ids[2], ids[1], ids[0]},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			runs, err := repo.ListRuns(ctx, test.limit)
			require.NoError(t, err)

			var gotIDs []string
			for _, r := range runs {
				gotIDs = append(gotIDs, r.ID)
			}
			assert.Equal(t, test.expIDs, gotIDs)
		})
	}
}

func TestRepositoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "pybox.db")

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: dbPath})
	require.NoError(t, err)
	require.NoError(t, repo.CreateRun(ctx, runFixture("01J0000000000000000000000A", time.Now())))
	require.NoError(t, repo.Close())

	repo, err = sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: dbPath})
	require.NoError(t, err)
	defer repo.Close()

	runs, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	v, err := repo.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}

func TestNewRepositoryRequiresPath(t *testing.T) {
	_, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{})
	assert.Error(t, err)
}
