package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/middleware"
)

// Response texts for the public demand form, keyed by locale. The form is
// served to Indonesian SMEs, so "id" gets first-class copy.
var demandMessages = map[string]map[string]string{
	"en": {
		"received": "Thanks! We have recorded your submission.",
		"updated":  "Thanks! We have updated your earlier submission.",
	},
	"id": {
		"received": "Terima kasih! Jawaban Anda sudah kami catat.",
		"updated":  "Terima kasih! Jawaban Anda sebelumnya sudah kami perbarui.",
	},
}

func demandMessage(locale, key string) string {
	if texts, ok := demandMessages[locale]; ok {
		if msg, ok := texts[key]; ok {
			return msg
		}
	}
	return demandMessages["en"][key]
}

type demandRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Challenges      string `json:"challenges"`
	VideoTypes      string `json:"video_types"`
	Benefits        string `json:"benefits"`
	Budget          string `json:"budget"`
	InterestInTrial string `json:"interest_in_trial"`
}

// DemandsCreate records a lead-capture submission. Resubmitting with the
// same email overwrites the previous answers.
func (a *App) DemandsCreate(w http.ResponseWriter, r *http.Request) {
	var req demandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		a.error(w, http.StatusBadRequest, "bad_request", "a valid email is required")
		return
	}

	demand := &domain.Demand{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Email:           req.Email,
		Challenges:      req.Challenges,
		VideoTypes:      req.VideoTypes,
		Benefits:        req.Benefits,
		Budget:          req.Budget,
		InterestInTrial: req.InterestInTrial,
	}
	updated, err := a.Demands.Upsert(r.Context(), demand)
	if err != nil {
		a.Logger.Error().Err(err).Msg("demand upsert failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to record submission")
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	code := http.StatusCreated
	key := "received"
	if updated {
		code = http.StatusOK
		key = "updated"
	}
	a.json(w, code, map[string]any{"updated": updated, "message": demandMessage(locale, key)})
}
