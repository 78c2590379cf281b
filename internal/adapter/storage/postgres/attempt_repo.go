package postgres

import (
	"context"
	"fmt"

	"payment-engine/internal/core/domain"
)

// AttemptRepo persists payment attempts to the payment_attempts table.
type AttemptRepo struct {
	pool Pool
}

// NewAttemptRepo creates a PostgreSQL-backed attempt repository.
func NewAttemptRepo(pool Pool) *AttemptRepo {
	return &AttemptRepo{pool: pool}
}

// Create inserts a single attempt row.
func (r *AttemptRepo) Create(ctx context.Context, a *domain.PaymentAttempt) error {
	const query = `
		INSERT INTO payment_attempts
			(id, account_id, amount, currency, amount_ref, accepted,
			 reason_code, stage, reached_stage, new_balance, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.AccountID, a.Amount, string(a.Currency), a.AmountRef, a.Accepted,
		string(a.Reason), string(a.Stage), string(a.Reached), a.NewBalance, a.Latency.Milliseconds(), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment attempt: %w", err)
	}
	return nil
}
