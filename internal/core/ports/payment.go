package ports

//go:generate mockgen -source=payment.go -destination=mocks/mock_payment.go -package=mocks

import (
	"context"
	"time"

	"payment-engine/internal/core/domain"

	"github.com/shopspring/decimal"
)

// CurrencyConverter converts amounts to the reference currency using a fixed rate table.
type CurrencyConverter interface {
	Supports(currency domain.Currency) bool
	ToReference(amount decimal.Decimal, currency domain.Currency) (decimal.Decimal, error)
}

// FraudDetector decides whether a transaction should be blocked.
// Evaluate mutates the account's window as a side effect.
type FraudDetector interface {
	Evaluate(ctx context.Context, accountID string, amountRef decimal.Decimal, now time.Time) (domain.FraudDecision, error)
	Snapshot(ctx context.Context, accountID string, now time.Time) (*domain.RiskSnapshot, error)
}

// AccountLocker is a per-account fail-fast mutex.
type AccountLocker interface {
	// TryAcquire returns false immediately if the account is already held.
	TryAcquire(ctx context.Context, accountID string) (bool, error)
	// Release frees the account. Releasing a free account is a no-op.
	Release(ctx context.Context, accountID string) error
}

// GatewayClient wraps the external charge-authorization call.
// A returned error means the gateway could not be reached or answered
// malformed data; a decline is a non-nil result with Approved=false.
type GatewayClient interface {
	Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error)
}

// PaymentProcessor orchestrates a single payment attempt.
// The error return is reserved for environment failures; every business
// outcome is reported through the result.
type PaymentProcessor interface {
	Process(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResult, error)
	Risk(ctx context.Context, accountID string) (*domain.RiskSnapshot, error)
}

// AttemptRecorder records processed attempts for audit (fire-and-forget).
type AttemptRecorder interface {
	Record(ctx context.Context, attempt *domain.PaymentAttempt)
}
