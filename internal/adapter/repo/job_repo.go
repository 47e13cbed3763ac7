package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository on PostgreSQL.
//
// Image refs, the brief and the artifact list are stored as jsonb. Artifact
// appends and finalization are guarded by status predicates in SQL so a
// terminal job can never be mutated, regardless of how many workers race.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.GenerationJob) error {
	refs, err := json.Marshal(job.InputImageRefs)
	if err != nil {
		return fmt.Errorf("marshal image refs: %w", err)
	}
	brief, err := json.Marshal(job.Brief)
	if err != nil {
		return fmt.Errorf("marshal brief: %w", err)
	}
	artifacts := job.OutputArtifacts
	if artifacts == nil {
		artifacts = []domain.Artifact{}
	}
	arts, err := json.Marshal(artifacts)
	if err != nil {
		return fmt.Errorf("marshal artifacts: %w", err)
	}

	query := `
INSERT INTO generation_jobs (id, owner_id, input_image_refs, brief, output_artifacts, status, error_message, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW());
`
	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.OwnerID,
		refs,
		brief,
		arts,
		job.Status,
		job.ErrorMessage,
	)
	return err
}

// GetForOwner fetches a job by id, scoped to its owner. A job that exists
// but belongs to someone else is indistinguishable from a missing one.
func (r *JobRepositoryPG) GetForOwner(ctx context.Context, ownerID, jobID string) (*domain.GenerationJob, error) {
	query := `
SELECT id, owner_id, input_image_refs, brief, output_artifacts, status, error_message, created_at, updated_at
FROM generation_jobs
WHERE id = $1 AND owner_id = $2;
`
	row := r.pool.QueryRow(ctx, query, jobID, ownerID)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// List returns a page of the owner's jobs, newest first, with the total
// count for that owner (and status filter, when given).
func (r *JobRepositoryPG) List(ctx context.Context, ownerID string, page, pageSize int, status *domain.JobStatus) ([]domain.GenerationJob, int, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	where := "WHERE owner_id = $1"
	args := []any{ownerID}
	if status != nil {
		where += " AND status = $2"
		args = append(args, *status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM generation_jobs "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
SELECT id, owner_id, input_image_refs, brief, output_artifacts, status, error_message, created_at, updated_at
FROM generation_jobs
%s
ORDER BY created_at DESC
LIMIT %d OFFSET %d;
`, where, pageSize, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := make([]domain.GenerationJob, 0, pageSize)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, total, rows.Err()
}

// DeleteForOwner removes a job, scoped to its owner.
func (r *JobRepositoryPG) DeleteForOwner(ctx context.Context, ownerID, jobID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM generation_jobs WHERE id = $1 AND owner_id = $2;`, jobID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendArtifact atomically appends one artifact to a job that is still
// processing. Appends against a terminal job return ErrJobFinalized.
func (r *JobRepositoryPG) AppendArtifact(ctx context.Context, jobID string, artifact domain.Artifact) error {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	query := `
UPDATE generation_jobs
SET output_artifacts = output_artifacts || $2::jsonb,
    updated_at = NOW()
WHERE id = $1 AND status = 'processing';
`
	tag, err := r.pool.Exec(ctx, query, jobID, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if exists, err := r.exists(ctx, jobID); err != nil {
			return err
		} else if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrJobFinalized
	}
	return nil
}

// Finalize moves a non-terminal job to completed or failed. Finalizing an
// already-terminal job returns ErrJobFinalized; the first writer wins.
func (r *JobRepositoryPG) Finalize(ctx context.Context, jobID string, status domain.JobStatus, errMsg string) error {
	if !status.Terminal() {
		return fmt.Errorf("finalize with non-terminal status %q", status)
	}
	query := `
UPDATE generation_jobs
SET status = $2,
    error_message = $3,
    updated_at = NOW()
WHERE id = $1 AND status NOT IN ('completed', 'failed');
`
	tag, err := r.pool.Exec(ctx, query, jobID, status, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if exists, err := r.exists(ctx, jobID); err != nil {
			return err
		} else if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrJobFinalized
	}
	return nil
}

// FailStale marks processing jobs whose last update is older than
// staleAfter as failed, returning how many were swept.
func (r *JobRepositoryPG) FailStale(ctx context.Context, staleAfter time.Duration) (int, error) {
	query := `
UPDATE generation_jobs
SET status = 'failed',
    error_message = 'Generation timed out.',
    updated_at = NOW()
WHERE status = 'processing' AND updated_at < NOW() - make_interval(secs => $1);
`
	tag, err := r.pool.Exec(ctx, query, staleAfter.Seconds())
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *JobRepositoryPG) exists(ctx context.Context, jobID string) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM generation_jobs WHERE id = $1);`, jobID).Scan(&found)
	return found, err
}

func scanJob(row pgx.Row) (*domain.GenerationJob, error) {
	var (
		job   domain.GenerationJob
		refs  []byte
		brief []byte
		arts  []byte
	)
	if err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&refs,
		&brief,
		&arts,
		&job.Status,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(refs, &job.InputImageRefs); err != nil {
		return nil, fmt.Errorf("unmarshal image refs: %w", err)
	}
	if err := json.Unmarshal(brief, &job.Brief); err != nil {
		return nil, fmt.Errorf("unmarshal brief: %w", err)
	}
	if err := json.Unmarshal(arts, &job.OutputArtifacts); err != nil {
		return nil, fmt.Errorf("unmarshal artifacts: %w", err)
	}
	return &job, nil
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
