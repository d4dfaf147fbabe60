package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/domain/ports/repository"
	"vip-content-platform/internal/infra/metrics"
)

// StalePaymentWorker periodically fails pending payments that never received
// a terminal webhook. It covers abandoned invoices and lost callbacks; a
// late Paid delivery for a swept payment is refused by the conditional
// status update and shows up as a rejected-duplicate in the metrics.
type StalePaymentWorker struct {
	interval   time.Duration
	staleAfter time.Duration
	payments   repository.PaymentRepository
	log        *zerolog.Logger
}

func NewStalePaymentWorker(interval, staleAfter time.Duration, payments repository.PaymentRepository, logger *zerolog.Logger) *StalePaymentWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	wLog := logger.With().Str("component", "StalePaymentWorker").Logger()
	return &StalePaymentWorker{
		interval:   interval,
		staleAfter: staleAfter,
		payments:   payments,
		log:        &wLog,
	}
}

func (w *StalePaymentWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting stale payment worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stale payment worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *StalePaymentWorker) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	stale, err := w.payments.ListPendingOlderThan(ctx, repository.NoTX, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("list stale pending payments")
		return
	}
	for _, p := range stale {
		applied, err := w.payments.UpdateStatusIfPending(ctx, repository.NoTX, p.ID, model.PaymentStatusFailed)
		if err != nil {
			w.log.Error().Err(err).Str("payment_id", p.ID).Msg("sweep stale payment")
			continue
		}
		if !applied {
			continue // a webhook won the race, leave it alone
		}
		_ = w.payments.MergeMeta(ctx, repository.NoTX, p.ID, map[string]any{
			"swept_at": time.Now().Format(time.RFC3339),
		})
		metrics.IncPayment(string(model.PaymentStatusFailed))
		w.log.Info().Str("payment_id", p.ID).Msg("stale pending payment failed")
	}
}
