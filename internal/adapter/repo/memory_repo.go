package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"server/internal/domain"
)

// MemoryJobRepository is an in-memory domain.JobRepository used in tests
// and local development. It enforces the same terminal-state rules as the
// PostgreSQL implementation.
type MemoryJobRepository struct {
	mu   sync.Mutex
	jobs map[string]*domain.GenerationJob
}

// NewMemoryJobRepository creates an empty in-memory job repository.
func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{jobs: make(map[string]*domain.GenerationJob)}
}

// Create stores a copy of the job record.
func (r *MemoryJobRepository) Create(_ context.Context, job *domain.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	clone := cloneJob(job)
	now := time.Now().UTC()
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	r.jobs[job.ID] = clone
	return nil
}

// GetForOwner returns the owner's job or ErrNotFound.
func (r *MemoryJobRepository) GetForOwner(_ context.Context, ownerID, jobID string) (*domain.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return cloneJob(job), nil
}

// List pages the owner's jobs newest first.
func (r *MemoryJobRepository) List(_ context.Context, ownerID string, page, pageSize int, status *domain.JobStatus) ([]domain.GenerationJob, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*domain.GenerationJob, 0)
	for _, job := range r.jobs {
		if job.OwnerID != ownerID {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		matched = append(matched, job)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return strings.Compare(matched[i].ID, matched[j].ID) > 0
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	out := make([]domain.GenerationJob, 0, end-start)
	for _, job := range matched[start:end] {
		out = append(out, *cloneJob(job))
	}
	return out, total, nil
}

// DeleteForOwner removes the owner's job or returns ErrNotFound.
func (r *MemoryJobRepository) DeleteForOwner(_ context.Context, ownerID, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.jobs, jobID)
	return nil
}

// AppendArtifact appends while the job is processing; terminal jobs are
// frozen.
func (r *MemoryJobRepository) AppendArtifact(_ context.Context, jobID string, artifact domain.Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status != domain.JobStatusProcessing {
		return domain.ErrJobFinalized
	}
	job.OutputArtifacts = append(job.OutputArtifacts, artifact)
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// Finalize applies a terminal status once; the first writer wins.
func (r *MemoryJobRepository) Finalize(_ context.Context, jobID string, status domain.JobStatus, errMsg string) error {
	if !status.Terminal() {
		return fmt.Errorf("finalize with non-terminal status %q", status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status.Terminal() {
		return domain.ErrJobFinalized
	}
	job.Status = status
	job.ErrorMessage = errMsg
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// FailStale fails processing jobs not updated within staleAfter.
func (r *MemoryJobRepository) FailStale(_ context.Context, staleAfter time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().UTC().Add(-staleAfter)
	swept := 0
	for _, job := range r.jobs {
		if job.Status == domain.JobStatusProcessing && job.UpdatedAt.Before(cutoff) {
			job.Status = domain.JobStatusFailed
			job.ErrorMessage = "Generation timed out."
			job.UpdatedAt = time.Now().UTC()
			swept++
		}
	}
	return swept, nil
}

func cloneJob(job *domain.GenerationJob) *domain.GenerationJob {
	clone := *job
	clone.InputImageRefs = append([]string(nil), job.InputImageRefs...)
	clone.OutputArtifacts = append([]domain.Artifact(nil), job.OutputArtifacts...)
	return &clone
}

var _ domain.JobRepository = (*MemoryJobRepository)(nil)
