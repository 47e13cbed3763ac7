package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// Sweeper periodically fails processing jobs whose last update is older
// than the stale threshold. It is the safety net for jobs orphaned by a
// crash between pickup and terminal write.
type Sweeper struct {
	repo       domain.JobRepository
	interval   time.Duration
	staleAfter time.Duration
	logger     zerolog.Logger
}

// NewSweeper builds a sweeper; zero durations select one-minute sweeps and
// a fifteen-minute stale threshold.
func NewSweeper(repo domain.JobRepository, interval, staleAfter time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}
	return &Sweeper{repo: repo, interval: interval, staleAfter: staleAfter, logger: logger}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	swept, err := s.repo.FailStale(ctx, s.staleAfter)
	if err != nil {
		s.logger.Error().Err(err).Msg("stale job sweep failed")
		return
	}
	if swept > 0 {
		s.logger.Warn().Int("count", swept).Msg("failed stale processing jobs")
	}
}
