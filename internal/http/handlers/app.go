package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/storage"
)

// Submitter accepts a validated generation request and returns the durable
// job record before the pipeline runs.
type Submitter interface {
	Submit(ctx context.Context, ownerID string, imageRefs []string, brief domain.Brief) (*domain.GenerationJob, error)
}

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	Logger  zerolog.Logger
	Jobs    Submitter
	Repo    domain.JobRepository
	Demands domain.DemandRepository
	Store   storage.Store
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"success": false,
		"error":   map[string]string{"code": errCode, "message": message},
	})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
