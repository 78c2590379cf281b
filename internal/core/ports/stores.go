package ports

//go:generate mockgen -source=stores.go -destination=mocks/mock_stores.go -package=mocks

import (
	"context"
	"time"

	"payment-engine/internal/core/domain"
)

// FraudWindowStore holds the per-account sliding window of large transactions.
// Implementations must make Observe atomic per account.
type FraudWindowStore interface {
	// Observe drops every record of the account that occurred at or before
	// cutoff, appends rec when it is non-nil, and returns the resulting count.
	Observe(ctx context.Context, accountID string, rec *domain.TransactionRecord, cutoff time.Time) (int, error)
	// Count returns the number of records that occurred after cutoff without pruning.
	Count(ctx context.Context, accountID string, cutoff time.Time) (int, error)
}

// AttemptRepository persists payment attempt audit entries.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *domain.PaymentAttempt) error
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
	// Name is the dependency label used in /health output.
	Name() string
}
