package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rashkid-n/datagenesis-53/internal/archive"
	"github.com/rashkid-n/datagenesis-53/internal/domain"
)

func newTestRepository(t *testing.T) *JobRepository {
	t.Helper()
	db, err := NewMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewJobRepository(db)
}

func completedJob(id string) domain.Job {
	started := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(90 * time.Second)
	return domain.Job{
		ID:          id,
		Status:      domain.StatusCompleted,
		Progress:    100,
		Message:     "Generation completed successfully",
		StartedAt:   &started,
		CompletedAt: &completed,
		Result: &domain.Result{
			Rows: []domain.Row{{"age": float64(42)}},
			Metadata: domain.Metadata{
				JobID:        id,
				RowCount:     1,
				ColumnCount:  1,
				ProviderUsed: "deterministic-synthesizer",
			},
			QualityScore: 94,
			PrivacyScore: 85,
			BiasScore:    88,
		},
	}
}

func TestNewDB_CreatesDirectoryAndSchema(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "archive.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err, "NewDB should create nested directories")
	defer db.Close()

	var tableName string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='jobs'`).Scan(&tableName)
	require.NoError(t, err)
	require.Equal(t, "jobs", tableName)
}

func TestJobRepository_PersistAndFind(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	job := completedJob("job-1")
	require.NoError(t, repo.Persist(ctx, job))

	found, err := repo.Find(ctx, "job-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, found.Status)
	require.Equal(t, 100, found.Progress)
	require.NotNil(t, found.Result)
	require.Len(t, found.Result.Rows, 1)
	require.Equal(t, "deterministic-synthesizer", found.Result.Metadata.ProviderUsed)
	require.Equal(t, job.StartedAt.Unix(), found.StartedAt.Unix())
	require.Equal(t, job.CompletedAt.Unix(), found.CompletedAt.Unix())
}

func TestJobRepository_PersistFailedJob(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	job := domain.Job{
		ID:           "job-2",
		Status:       domain.StatusFailed,
		Progress:     domain.ProgressFailed,
		ErrorMessage: "all generators failed or returned no rows",
	}
	require.NoError(t, repo.Persist(ctx, job))

	found, err := repo.Find(ctx, "job-2")
	require.NoError(t, err)
	require.Equal(t, domain.StatusFailed, found.Status)
	require.Equal(t, domain.ProgressFailed, found.Progress)
	require.Equal(t, job.ErrorMessage, found.ErrorMessage)
	require.Nil(t, found.Result)
}

func TestJobRepository_FindMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Find(context.Background(), "nope")
	require.ErrorIs(t, err, archive.ErrNotFound)
}

func TestJobRepository_PersistIsUpsert(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	job := completedJob("job-1")
	job.Status = domain.StatusRunning
	job.Progress = 50
	require.NoError(t, repo.Persist(ctx, job))

	job.Status = domain.StatusCompleted
	job.Progress = 100
	require.NoError(t, repo.Persist(ctx, job))

	found, err := repo.Find(ctx, "job-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, found.Status)
	require.Equal(t, 100, found.Progress)

	jobs, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1, "upsert must not duplicate records")
}

func TestJobRepository_List(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Persist(ctx, completedJob(id)))
	}

	jobs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	jobs, err = repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 3, "non-positive limit falls back to the default")
}
