package domain

import (
	"context"
	"time"
)

// JobRepository persists generation jobs. Every read and delete is scoped
// to the owning user; implementations must not distinguish a missing job
// from a foreign one.
type JobRepository interface {
	Create(ctx context.Context, job *GenerationJob) error
	GetForOwner(ctx context.Context, ownerID, jobID string) (*GenerationJob, error)
	List(ctx context.Context, ownerID string, page, pageSize int, status *JobStatus) ([]GenerationJob, int, error)
	DeleteForOwner(ctx context.Context, ownerID, jobID string) error

	// AppendArtifact adds one artifact while the job is still processing.
	// Appending to a terminal job returns ErrJobFinalized.
	AppendArtifact(ctx context.Context, jobID string, artifact Artifact) error

	// Finalize moves the job to a terminal status. Finalizing an already
	// terminal job returns ErrJobFinalized.
	Finalize(ctx context.Context, jobID string, status JobStatus, errMsg string) error

	// FailStale marks processing jobs without progress for longer than
	// staleAfter as failed, returning how many were swept.
	FailStale(ctx context.Context, staleAfter time.Duration) (int, error)
}

// DemandRepository persists lead-capture form submissions.
type DemandRepository interface {
	// Upsert inserts or, when the email already exists, updates the
	// submission. It reports whether an existing row was updated.
	Upsert(ctx context.Context, demand *Demand) (updated bool, err error)
}
