package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/pkg/zip"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GenerationGet returns the full job record including artifacts.
func (a *App) GenerationGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	job, ok := a.loadOwnedJob(w, r, userID)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, job)
}

// GenerationsList pages the caller's jobs, newest first, with an optional
// status filter.
func (a *App) GenerationsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(r, "page_size", defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var status *domain.JobStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := domain.ParseJobStatus(raw)
		if !ok {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown status filter")
			return
		}
		status = &parsed
	}

	jobs, total, err := a.Repo.List(r.Context(), userID, page, pageSize, status)
	if err != nil {
		a.Logger.Error().Err(err).Msg("job list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list jobs")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"items":     jobs,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// GenerationDelete removes one of the caller's jobs.
func (a *App) GenerationDelete(w http.ResponseWriter, r *http.Request) {
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
	if err := a.Repo.DeleteForOwner(r.Context(), userID, jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("job delete failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete job")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"deleted": true})
}

// GenerationDownload streams every artifact of a completed job as one zip
// archive.
func (a *App) GenerationDownload(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	job, ok := a.loadOwnedJob(w, r, userID)
	if !ok {
		return
	}
	if job.Status != domain.JobStatusCompleted || len(job.OutputArtifacts) == 0 {
		a.error(w, http.StatusConflict, "not_ready", "job has no downloadable artifacts")
		return
	}

	assets := make([]zip.Asset, 0, len(job.OutputArtifacts))
	for i, artifact := range job.OutputArtifacts {
		data, err := a.Store.Fetch(r.Context(), artifact.URL)
		if err != nil {
			a.Logger.Warn().Err(err).Str("url", artifact.URL).Msg("artifact fetch for download failed")
			continue
		}
		assets = append(assets, zip.Asset{
			Filename: fmt.Sprintf("ad-%s-%02d.%s", artifact.SizeTag, i+1, artifact.Format),
			MIME:     "image/jpeg",
			Data:     data,
		})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusInternalServerError, "internal", "failed to collect artifacts")
		return
	}

	archive := zip.ArchiveAssets(assets)
	if archive == nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ads-"+job.ID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) loadOwnedJob(w http.ResponseWriter, r *http.Request, userID string) (*domain.GenerationJob, bool) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return nil, false
	}
	job, err := a.Repo.GetForOwner(r.Context(), userID, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return nil, false
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("job lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return nil, false
	}
	return job, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
