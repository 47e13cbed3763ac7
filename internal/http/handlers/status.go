package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

// statusProgress maps each lifecycle state to a coarse percentage for
// progress bars.
var statusProgress = map[domain.JobStatus]int{
	domain.JobStatusPending:    0,
	domain.JobStatusProcessing: 50,
	domain.JobStatusCompleted:  100,
	domain.JobStatusFailed:     0,
}

func statusMessage(job *domain.GenerationJob) string {
	switch job.Status {
	case domain.JobStatusPending:
		return "Generation request received, waiting to start..."
	case domain.JobStatusProcessing:
		return "Generating ad materials..."
	case domain.JobStatusCompleted:
		return fmt.Sprintf("Generation completed successfully. %d ads created.", len(job.OutputArtifacts))
	case domain.JobStatusFailed:
		return "Generation failed. Please try again."
	}
	return ""
}

// GenerationStatus is the lightweight polling endpoint: status, coarse
// progress and a human-readable message, without the artifact payload.
func (a *App) GenerationStatus(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}

	job, err := a.Repo.GetForOwner(r.Context(), userID, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("status lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}

	resp := map[string]any{
		"job_id":     job.ID,
		"status":     job.Status,
		"progress":   statusProgress[job.Status],
		"message":    statusMessage(job),
		"updated_at": job.UpdatedAt,
	}
	if job.Status == domain.JobStatusFailed && job.ErrorMessage != "" {
		resp["error"] = job.ErrorMessage
	}
	a.json(w, http.StatusOK, resp)
}
