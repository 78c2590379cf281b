package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestReasonCode_Retryable(t *testing.T) {
	tests := []struct {
		reason ReasonCode
		want   bool
	}{
		{ReasonAccepted, false},
		{ReasonInvalidInput, false},
		{ReasonInsufficientFunds, false},
		{ReasonFraudSuspected, false},
		{ReasonGatewayDeclined, false},
		{ReasonContended, true},
		{ReasonGatewayUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.reason.Retryable())
		})
	}
}

func TestStage_IsTerminal(t *testing.T) {
	tests := []struct {
		stage Stage
		want  bool
	}{
		{StageReceived, false},
		{StageValidated, false},
		{StageCurrencyConverted, false},
		{StageFraudChecked, false},
		{StageLockHeld, false},
		{StageGatewayCalled, false},
		{StageAccepted, true},
		{StageDeclined, true},
		{StageRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stage.IsTerminal())
		})
	}
}

func TestAccept(t *testing.T) {
	res := Accept(decimal.RequireFromString("900.5"))
	assert.True(t, res.Accepted)
	assert.Equal(t, ReasonAccepted, res.Reason)
	assert.Equal(t, StageAccepted, res.Stage)
	assert.Equal(t, "900.5", res.NewBalance.String())
}

func TestReject_KeepsBalance(t *testing.T) {
	res := Reject(ReasonFraudSuspected, "flagged", decimal.NewFromInt(42), StageRejected)
	assert.False(t, res.Accepted)
	assert.Equal(t, ReasonFraudSuspected, res.Reason)
	assert.Equal(t, "flagged", res.Message)
	assert.Equal(t, "42", res.NewBalance.String())
	assert.Equal(t, StageRejected, res.Stage)
}

func TestNewTransactionRecord(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	a := NewTransactionRecord("u1", decimal.NewFromInt(6000), now)
	b := NewTransactionRecord("u1", decimal.NewFromInt(6000), now)

	assert.Equal(t, "u1", a.AccountID)
	assert.Equal(t, now, a.OccurredAt)
	assert.NotEqual(t, a.ID, b.ID, "records at the same instant stay distinct")
}

func TestCurrency_String(t *testing.T) {
	assert.Equal(t, "EUR", CurrencyEUR.String())
	assert.Equal(t, CurrencyUSD, ReferenceCurrency)
}
