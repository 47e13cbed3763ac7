package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/domain"
)

type brandRequest struct {
	Name    string `json:"name"`
	Slogan  string `json:"slogan"`
	URL     string `json:"url"`
	LogoRef string `json:"logo_ref"`
}

type generateRequest struct {
	ImageRefs []string     `json:"image_refs"`
	Purpose   string       `json:"purpose"`
	Brand     brandRequest `json:"brand"`
}

// GenerationsCreate accepts a generation request, persists the job, and
// returns 202 immediately. Progress is observed by polling the status and
// result endpoints.
func (a *App) GenerationsCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	brief := domain.Brief{
		Purpose: req.Purpose,
		Brand: domain.BrandInfo{
			Name:    req.Brand.Name,
			Slogan:  req.Brand.Slogan,
			URL:     req.Brand.URL,
			LogoRef: req.Brand.LogoRef,
		},
	}
	job, err := a.Jobs.Submit(r.Context(), userID, req.ImageRefs, brief)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("generation submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to accept generation request")
		return
	}

	a.json(w, http.StatusAccepted, map[string]any{
		"job_id":     job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	})
}
