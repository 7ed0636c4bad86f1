package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rashkid-n/datagenesis-53/internal/archive"
	"github.com/rashkid-n/datagenesis-53/internal/domain"
)

// jobColumns is the list of columns to select for job queries.
const jobColumns = `id, status, progress, message, error_message, result, started_at, completed_at, archived_at`

// JobRepository implements archive.JobArchive using SQLite.
type JobRepository struct {
	db *sql.DB
}

var _ archive.JobArchive = (*JobRepository)(nil)

// NewJobRepository creates a repository over an open archive database.
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// scanJob scans a row into a JobModel.
func scanJob(scanner interface{ Scan(...any) error }) (*JobModel, error) {
	var model JobModel
	err := scanner.Scan(
		&model.ID, &model.Status, &model.Progress, &model.Message,
		&model.ErrorMessage, &model.Result,
		&model.StartedAt, &model.CompletedAt, &model.ArchivedAt,
	)
	return &model, err
}

// Persist stores job, replacing any previous record with the same id.
func (r *JobRepository) Persist(ctx context.Context, job domain.Job) error {
	model, err := toJobModel(job, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("encoding job %s: %w", job.ID, err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, status, progress, message, error_message, result, started_at, completed_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			progress = excluded.progress,
			message = excluded.message,
			error_message = excluded.error_message,
			result = excluded.result,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at,
			archived_at = excluded.archived_at`,
		model.ID, model.Status, model.Progress, model.Message,
		model.ErrorMessage, model.Result,
		model.StartedAt, model.CompletedAt, model.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to persist job: %w", err)
	}
	return nil
}

// Find returns the archived record for id.
func (r *JobRepository) Find(ctx context.Context, id string) (domain.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	model, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, archive.ErrNotFound
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("failed to find job: %w", err)
	}
	return model.toDomain()
}

// List returns up to limit archived records, most recently archived first.
func (r *JobRepository) List(ctx context.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY archived_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		model, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		job, err := model.toDomain()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
