package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vip-content-platform/internal/usecase"
)

// PublishWorker flips scheduled posts live once their publish time passes.
type PublishWorker struct {
	interval time.Duration
	feedUC   usecase.FeedUseCase
	log      *zerolog.Logger
}

func NewPublishWorker(interval time.Duration, feedUC usecase.FeedUseCase, logger *zerolog.Logger) *PublishWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	wLog := logger.With().Str("component", "PublishWorker").Logger()
	return &PublishWorker{
		interval: interval,
		feedUC:   feedUC,
		log:      &wLog,
	}
}

func (w *PublishWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting publish worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping publish worker")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.feedUC.PublishDue(ctx, time.Now()); err != nil {
				w.log.Error().Err(err).Msg("publish worker error")
			}
		}
	}
}
