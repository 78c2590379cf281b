package service

import (
	"context"
	"sync"

	"payment-engine/internal/core/domain"
	"payment-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// AttemptAuditor implements ports.AttemptRecorder.
type AttemptAuditor struct {
	repo ports.AttemptRepository
	log  zerolog.Logger
	wg   sync.WaitGroup
}

// NewAttemptAuditor creates a new attempt auditor.
// If repo is nil, attempts are only written to the logger.
func NewAttemptAuditor(repo ports.AttemptRepository, log zerolog.Logger) *AttemptAuditor {
	return &AttemptAuditor{repo: repo, log: log}
}

// Record writes the attempt asynchronously (fire-and-forget).
func (a *AttemptAuditor) Record(ctx context.Context, attempt *domain.PaymentAttempt) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		a.log.Info().
			Str("attempt_id", attempt.ID.String()).
			Str("account_id", attempt.AccountID).
			Str("amount", attempt.Amount.String()).
			Str("currency", attempt.Currency.String()).
			Bool("accepted", attempt.Accepted).
			Str("reason", string(attempt.Reason)).
			Str("reached", string(attempt.Reached)).
			Dur("latency", attempt.Latency).
			Msg("payment attempt")

		if a.repo != nil {
			if err := a.repo.Create(context.WithoutCancel(ctx), attempt); err != nil {
				a.log.Warn().Err(err).Str("attempt_id", attempt.ID.String()).Msg("failed to persist payment attempt")
			}
		}
	}()
}

// Wait blocks until every pending write has finished. Used on shutdown.
func (a *AttemptAuditor) Wait() {
	a.wg.Wait()
}
