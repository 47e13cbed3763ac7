package copygen

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// Source values reported on generation results.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

const defaultDeadline = 45 * time.Second

// Result is the outcome of one copy generation call.
type Result struct {
	Copies []domain.CopyVariant
	Source string
}

// Generator produces ad-copy variants for a brief. It selects exactly one
// provider per call (first configured wins), races it against a hard
// wall-clock deadline, and falls back to deterministic templated copy on
// any failure. Generate never returns an error.
type Generator struct {
	providers []Provider
	deadline  time.Duration
	logger    zerolog.Logger
}

// NewGenerator builds a Generator over the given providers in priority
// order. A zero deadline selects the default 45 s budget.
func NewGenerator(providers []Provider, deadline time.Duration, logger zerolog.Logger) *Generator {
	if deadline <= 0 {
		deadline = defaultDeadline
	}
	return &Generator{providers: providers, deadline: deadline, logger: logger}
}

type completion struct {
	text string
	err  error
}

// Generate returns exactly three copy variants. The provider call runs in
// its own goroutine against a cancellable deadline context; when the
// deadline wins the race the losing call is cancelled and its eventual
// result discarded.
func (g *Generator) Generate(ctx context.Context, brief domain.Brief) Result {
	if len(g.providers) == 0 {
		g.logger.Debug().Msg("copygen: no provider configured, using fallback copy")
		return Result{Copies: FallbackCopies(brief), Source: SourceFallback}
	}

	provider := g.providers[0]
	prompt := buildPrompt(brief)

	callCtx, cancel := context.WithTimeout(ctx, g.deadline)
	defer cancel()

	// Buffered so the provider goroutine never blocks after the deadline
	// has won and nobody is receiving.
	ch := make(chan completion, 1)
	go func() {
		text, err := provider.Complete(callCtx, prompt)
		ch <- completion{text: text, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			g.logger.Warn().Err(res.err).Str("provider", provider.Name()).Msg("copygen: provider failed, using fallback copy")
			return Result{Copies: FallbackCopies(brief), Source: SourceFallback}
		}
		copies, err := parseCopies(res.text)
		if err != nil {
			g.logger.Warn().Err(err).Str("provider", provider.Name()).Msg("copygen: unusable provider response, using fallback copy")
			return Result{Copies: FallbackCopies(brief), Source: SourceFallback}
		}
		return Result{Copies: copies, Source: SourceAI}
	case <-callCtx.Done():
		g.logger.Warn().Str("provider", provider.Name()).Dur("deadline", g.deadline).Msg("copygen: deadline reached, using fallback copy")
		return Result{Copies: FallbackCopies(brief), Source: SourceFallback}
	}
}
