package service

import (
	"context"
	"fmt"
	"time"

	"payment-engine/internal/core/domain"
	"payment-engine/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// FraudPolicy holds the sliding-window thresholds.
type FraudPolicy struct {
	// LargeThreshold is exclusive: an amount equal to it is not large.
	LargeThreshold decimal.Decimal
	// MaxLarge is the highest window count that is still allowed.
	MaxLarge int
	Window   time.Duration
}

// DefaultFraudPolicy blocks the 4th transaction above 5000 within 24 hours.
func DefaultFraudPolicy() FraudPolicy {
	return FraudPolicy{
		LargeThreshold: decimal.NewFromInt(5000),
		MaxLarge:       3,
		Window:         24 * time.Hour,
	}
}

// FraudDetectorImpl implements ports.FraudDetector on top of a FraudWindowStore.
type FraudDetectorImpl struct {
	store  ports.FraudWindowStore
	policy FraudPolicy
	log    zerolog.Logger
}

// NewFraudDetector creates a new FraudDetectorImpl.
func NewFraudDetector(store ports.FraudWindowStore, policy FraudPolicy, log zerolog.Logger) *FraudDetectorImpl {
	return &FraudDetectorImpl{
		store:  store,
		policy: policy,
		log:    log,
	}
}

// Evaluate prunes the account window, records the candidate when it is
// large, and blocks a large candidate once the window count exceeds MaxLarge.
// Blocked candidates stay in the window.
func (d *FraudDetectorImpl) Evaluate(ctx context.Context, accountID string, amountRef decimal.Decimal, now time.Time) (domain.FraudDecision, error) {
	var rec *domain.TransactionRecord
	large := amountRef.GreaterThan(d.policy.LargeThreshold)
	if large {
		rec = domain.NewTransactionRecord(accountID, amountRef, now)
	}

	count, err := d.store.Observe(ctx, accountID, rec, now.Add(-d.policy.Window))
	if err != nil {
		return domain.FraudDecision{}, fmt.Errorf("observe fraud window: %w", err)
	}

	decision := domain.FraudDecision{
		Large:       large,
		WindowCount: count,
		Blocked:     large && count > d.policy.MaxLarge,
	}

	if decision.Blocked {
		d.log.Warn().
			Str("account_id", accountID).
			Str("amount_ref", amountRef.String()).
			Int("window_count", count).
			Msg("large transaction velocity exceeded")
	}

	return decision, nil
}

// Snapshot reports the account's current window without mutating it.
func (d *FraudDetectorImpl) Snapshot(ctx context.Context, accountID string, now time.Time) (*domain.RiskSnapshot, error) {
	count, err := d.store.Count(ctx, accountID, now.Add(-d.policy.Window))
	if err != nil {
		return nil, fmt.Errorf("count fraud window: %w", err)
	}
	return &domain.RiskSnapshot{
		AccountID:        accountID,
		LargeInWindow:    count,
		MaxLarge:         d.policy.MaxLarge,
		Window:           d.policy.Window,
		NextLargeBlocked: count+1 > d.policy.MaxLarge,
	}, nil
}
