package copygen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"server/internal/domain"
)

const expectedVariants = 3

type copiesPayload struct {
	Copies []domain.CopyVariant `json:"copies"`
}

// parseCopies decodes a provider response into exactly three copy
// variants. Anything else, including empty or blank variants, is an error
// so the caller falls back.
func parseCopies(raw string) ([]domain.CopyVariant, error) {
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return nil, errors.New("empty payload")
	}
	var payload copiesPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("decode copies: %w", err)
	}
	if len(payload.Copies) != expectedVariants {
		return nil, fmt.Errorf("expected %d copy variants, got %d", expectedVariants, len(payload.Copies))
	}
	for i := range payload.Copies {
		c := &payload.Copies[i]
		c.Title = strings.TrimSpace(c.Title)
		c.Description = strings.TrimSpace(c.Description)
		c.CTA = strings.TrimSpace(c.CTA)
		if c.Title == "" || c.Description == "" || c.CTA == "" {
			return nil, fmt.Errorf("copy variant %d has blank fields", i)
		}
	}
	return payload.Copies, nil
}

// extractJSONFragment trims markdown code fences and any chatter around
// the outermost JSON value.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
