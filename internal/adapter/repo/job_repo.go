package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mediastudio/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	query := `
INSERT INTO jobs (id, status, request_image_ref, request_prompt, include_music, music_prompt, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Status,
		job.RequestImageRef,
		job.RequestPrompt,
		job.IncludeMusic,
		nullableText(job.MusicPrompt),
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
SELECT id, status, request_image_ref, request_prompt, include_music,
       COALESCE(music_prompt, ''), COALESCE(music_url, ''),
       COALESCE(result_ref, ''), COALESCE(result_public_url, ''),
       COALESCE(error_message, ''), created_at, updated_at
FROM jobs
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, jobID)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// List returns all jobs ordered newest created first.
func (r *JobRepositoryPG) List(ctx context.Context) ([]domain.Job, error) {
	query := `
SELECT id, status, request_image_ref, request_prompt, include_music,
       COALESCE(music_prompt, ''), COALESCE(music_url, ''),
       COALESCE(result_ref, ''), COALESCE(result_public_url, ''),
       COALESCE(error_message, ''), created_at, updated_at
FROM jobs
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// MarkProcessing transitions a queued job into processing.
func (r *JobRepositoryPG) MarkProcessing(ctx context.Context, jobID string) error {
	query := `
UPDATE jobs
SET status = $2, updated_at = NOW()
WHERE id = $1 AND status = $3;
`
	_, err := r.pool.Exec(ctx, query, jobID, domain.JobStatusProcessing, domain.JobStatusQueued)
	return err
}

// MarkCompleted persists the terminal completed state together with the
// artifact references.
func (r *JobRepositoryPG) MarkCompleted(ctx context.Context, jobID, resultRef, resultPublicURL string) error {
	query := `
UPDATE jobs
SET status = $2, result_ref = $3, result_public_url = $4, updated_at = NOW()
WHERE id = $1 AND status = $5;
`
	_, err := r.pool.Exec(ctx, query, jobID, domain.JobStatusCompleted, resultRef, resultPublicURL, domain.JobStatusProcessing)
	return err
}

// MarkFailed persists the terminal failed state with the causing error.
func (r *JobRepositoryPG) MarkFailed(ctx context.Context, jobID, errMsg string) error {
	query := `
UPDATE jobs
SET status = $2, error_message = $3, updated_at = NOW()
WHERE id = $1 AND status = $4;
`
	_, err := r.pool.Exec(ctx, query, jobID, domain.JobStatusFailed, errMsg, domain.JobStatusProcessing)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.Status,
		&job.RequestImageRef,
		&job.RequestPrompt,
		&job.IncludeMusic,
		&job.MusicPrompt,
		&job.MusicURL,
		&job.ResultRef,
		&job.ResultPublicURL,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
