package dto

import (
	"math"
	"time"

	"payment-engine/internal/core/domain"

	"github.com/shopspring/decimal"
)

// PayRequest is the request body for POST /pay. Amount and AccountBalance are
// pointers so that a missing field fails binding instead of reading as zero.
// Currency is validated by the processor so unsupported codes get their own
// message.
type PayRequest struct {
	Amount         *float64 `json:"amount" binding:"required"`
	Currency       string   `json:"currency"`
	AccountID      string   `json:"accountId" binding:"required,not_blank,max=128"`
	AccountBalance *float64 `json:"accountBalance" binding:"required"`
}

// ToDomain converts the bound body into a processor request.
func (r *PayRequest) ToDomain() domain.PaymentRequest {
	return domain.PaymentRequest{
		Amount:         deref(r.Amount),
		Currency:       domain.Currency(r.Currency),
		AccountID:      r.AccountID,
		AccountBalance: deref(r.AccountBalance),
	}
}

// Balance returns the caller's balance for echoing in a rejection, or nil
// when it was absent or not a usable number.
func (r *PayRequest) Balance() *decimal.Decimal {
	if r.AccountBalance == nil || math.IsNaN(*r.AccountBalance) || math.IsInf(*r.AccountBalance, 0) {
		return nil
	}
	b := decimal.NewFromFloat(*r.AccountBalance)
	return &b
}

func deref(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}

// RiskResponse is the data of GET /api/v1/accounts/:id/risk.
type RiskResponse struct {
	AccountID        string `json:"accountId"`
	LargeInWindow    int    `json:"largeInWindow"`
	MaxLarge         int    `json:"maxLarge"`
	WindowSeconds    int64  `json:"windowSeconds"`
	NextLargeBlocked bool   `json:"nextLargeBlocked"`
}

// NewRiskResponse converts a domain snapshot.
func NewRiskResponse(s *domain.RiskSnapshot) RiskResponse {
	return RiskResponse{
		AccountID:        s.AccountID,
		LargeInWindow:    s.LargeInWindow,
		MaxLarge:         s.MaxLarge,
		WindowSeconds:    int64(s.Window / time.Second),
		NextLargeBlocked: s.NextLargeBlocked,
	}
}
