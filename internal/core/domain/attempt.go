package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentAttempt is the audit entry written for every processed request.
type PaymentAttempt struct {
	ID         uuid.UUID       `json:"id"`
	AccountID  string          `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   Currency        `json:"currency"`
	AmountRef  decimal.Decimal `json:"amount_ref"`
	Accepted   bool            `json:"accepted"`
	Reason     ReasonCode      `json:"reason_code"`
	Stage      Stage           `json:"stage"`
	// Reached is the last non-terminal stage completed before Stage.
	Reached    Stage           `json:"reached_stage"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Latency    time.Duration   `json:"latency"`
	CreatedAt  time.Time       `json:"created_at"`
}
