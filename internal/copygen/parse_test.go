package copygen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseCopiesAcceptsFencedJSON(t *testing.T) {
	raw := "```json\n" + validPayload + "\n```"
	copies, err := parseCopies(raw)
	if err != nil {
		t.Fatalf("parseCopies returned error: %v", err)
	}
	if len(copies) != 3 || copies[1].Title != "B" {
		t.Fatalf("unexpected copies: %#v", copies)
	}
}

func TestParseCopiesTrimsChatter(t *testing.T) {
	raw := "Sure! Here are your variants:\n" + validPayload + "\nHope that helps."
	copies, err := parseCopies(raw)
	if err != nil {
		t.Fatalf("parseCopies returned error: %v", err)
	}
	if len(copies) != 3 {
		t.Fatalf("len = %d, want 3", len(copies))
	}
}

func TestParseCopiesRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "   "},
		{name: "not json", raw: "three great slogans coming right up"},
		{name: "two variants", raw: `{"copies":[{"title":"a","description":"d","cta":"c"},{"title":"b","description":"d","cta":"c"}]}`},
		{name: "four variants", raw: `{"copies":[{"title":"a","description":"d","cta":"c"},{"title":"b","description":"d","cta":"c"},{"title":"c","description":"d","cta":"c"},{"title":"e","description":"d","cta":"c"}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseCopies(tc.raw); err == nil {
				t.Fatalf("parseCopies(%q) expected error", tc.raw)
			}
		})
	}
}

func TestOpenAIProviderComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req openAIChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "advertising copywriter") {
			t.Errorf("unexpected prompt: %#v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": validPayload}}},
		})
	}))
	defer srv.Close()

	provider, err := NewOpenAIProvider(OpenAIOptions{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIProvider returned error: %v", err)
	}
	text, err := provider.Complete(context.Background(), buildPrompt(testBrief("increase signups")))
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if _, err := parseCopies(text); err != nil {
		t.Fatalf("response did not parse: %v", err)
	}
}

func TestOpenAIProviderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	provider, err := NewOpenAIProvider(OpenAIOptions{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIProvider returned error: %v", err)
	}
	if _, err := provider.Complete(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestGeminiProviderComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/gemini-1.5-flash:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("x-goog-api-key = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": validPayload}},
				},
			}},
		})
	}))
	defer srv.Close()

	provider, err := NewGeminiProvider(GeminiOptions{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewGeminiProvider returned error: %v", err)
	}
	text, err := provider.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if _, err := parseCopies(text); err != nil {
		t.Fatalf("response did not parse: %v", err)
	}
}

func TestProvidersRequireAPIKey(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIOptions{}); err == nil {
		t.Fatalf("NewOpenAIProvider expected error without key")
	}
	if _, err := NewGeminiProvider(GeminiOptions{}); err == nil {
		t.Fatalf("NewGeminiProvider expected error without key")
	}
}
