package domain

import (
	"github.com/shopspring/decimal"
)

// ReasonCode is the enumerated outcome of a payment attempt.
type ReasonCode string

const (
	ReasonAccepted           ReasonCode = "ACCEPTED"
	ReasonInvalidInput       ReasonCode = "INVALID_INPUT"
	ReasonInsufficientFunds  ReasonCode = "INSUFFICIENT_FUNDS"
	ReasonFraudSuspected     ReasonCode = "FRAUD_SUSPECTED"
	ReasonContended          ReasonCode = "CONTENDED"
	ReasonGatewayUnavailable ReasonCode = "GATEWAY_UNAVAILABLE"
	ReasonGatewayDeclined    ReasonCode = "GATEWAY_DECLINED"
)

// Retryable reports whether the same request may succeed if issued again later.
func (r ReasonCode) Retryable() bool {
	return r == ReasonContended || r == ReasonGatewayUnavailable
}

// Stage is a state of the per-request processing state machine.
type Stage string

const (
	StageReceived          Stage = "RECEIVED"
	StageValidated         Stage = "VALIDATED"
	StageCurrencyConverted Stage = "CURRENCY_CONVERTED"
	StageFraudChecked      Stage = "FRAUD_CHECKED"
	StageLockHeld          Stage = "LOCK_HELD"
	StageGatewayCalled     Stage = "GATEWAY_CALLED"
	StageAccepted          Stage = "ACCEPTED"
	StageDeclined          Stage = "DECLINED"
	StageRejected          Stage = "REJECTED"
)

// IsTerminal returns true if no further transition leaves the stage.
func (s Stage) IsTerminal() bool {
	return s == StageAccepted || s == StageDeclined || s == StageRejected
}

// PaymentRequest is the caller-supplied input for a single attempt.
// Amount and AccountBalance are kept as raw numbers so that non-finite
// values can be rejected before any decimal arithmetic happens.
type PaymentRequest struct {
	Amount         float64
	Currency       Currency
	AccountID      string
	AccountBalance float64
}

// PaymentResult is the typed outcome of a payment attempt.
type PaymentResult struct {
	Accepted   bool            `json:"accepted"`
	Reason     ReasonCode      `json:"reason_code"`
	Message    string          `json:"message"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Stage      Stage           `json:"stage"`
}

// Accept builds the result of an approved attempt.
func Accept(newBalance decimal.Decimal) *PaymentResult {
	return &PaymentResult{
		Accepted:   true,
		Reason:     ReasonAccepted,
		Message:    "Payment processed",
		NewBalance: newBalance,
		Stage:      StageAccepted,
	}
}

// Reject builds a negative result. The balance is returned unchanged.
func Reject(reason ReasonCode, message string, balance decimal.Decimal, stage Stage) *PaymentResult {
	return &PaymentResult{
		Accepted:   false,
		Reason:     reason,
		Message:    message,
		NewBalance: balance,
		Stage:      stage,
	}
}
