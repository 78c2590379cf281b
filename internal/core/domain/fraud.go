package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRecord is a large transaction remembered in an account's fraud window.
// Records are never mutated, only pruned once they fall out of the window.
type TransactionRecord struct {
	ID         uuid.UUID       `json:"id"`
	AccountID  string          `json:"account_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	AmountRef  decimal.Decimal `json:"amount_ref"`
}

// NewTransactionRecord creates a record for a transaction evaluated at now.
func NewTransactionRecord(accountID string, amountRef decimal.Decimal, now time.Time) *TransactionRecord {
	return &TransactionRecord{
		ID:         uuid.New(),
		AccountID:  accountID,
		OccurredAt: now,
		AmountRef:  amountRef,
	}
}

// FraudDecision is the verdict of a fraud evaluation.
type FraudDecision struct {
	Blocked bool
	// Large is true when the evaluated amount exceeded the large-transaction threshold.
	Large bool
	// WindowCount is the number of large transactions in the window after evaluation.
	WindowCount int
}

// RiskSnapshot is a read-only view of an account's fraud window.
type RiskSnapshot struct {
	AccountID        string        `json:"account_id"`
	LargeInWindow    int           `json:"large_in_window"`
	MaxLarge         int           `json:"max_large"`
	Window           time.Duration `json:"-"`
	NextLargeBlocked bool          `json:"next_large_blocked"`
}
