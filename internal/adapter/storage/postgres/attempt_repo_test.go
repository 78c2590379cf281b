package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"payment-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAttempt() *domain.PaymentAttempt {
	return &domain.PaymentAttempt{
		ID:         uuid.New(),
		AccountID:  "u1",
		Amount:     decimal.NewFromInt(100),
		Currency:   domain.CurrencyEUR,
		AmountRef:  decimal.NewFromInt(110),
		Accepted:   true,
		Reason:     domain.ReasonAccepted,
		Stage:      domain.StageAccepted,
		Reached:    domain.StageGatewayCalled,
		NewBalance: decimal.NewFromInt(400),
		Latency:    250 * time.Millisecond,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestAttemptRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAttemptRepo(mock)
	a := newTestAttempt()

	mock.ExpectExec("INSERT INTO payment_attempts").
		WithArgs(
			a.ID, a.AccountID, a.Amount, "EUR", a.AmountRef, true,
			"ACCEPTED", "ACCEPTED", "GATEWAY_CALLED", a.NewBalance, int64(250), a.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepo_Create_Rejected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAttemptRepo(mock)
	a := newTestAttempt()
	a.Accepted = false
	a.Reason = domain.ReasonFraudSuspected
	a.Stage = domain.StageRejected
	a.Reached = domain.StageCurrencyConverted

	mock.ExpectExec("INSERT INTO payment_attempts").
		WithArgs(
			a.ID, a.AccountID, a.Amount, "EUR", a.AmountRef, false,
			"FRAUD_SUSPECTED", "REJECTED", "CURRENCY_CONVERTED", a.NewBalance, int64(250), a.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepo_Create_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAttemptRepo(mock)

	mock.ExpectExec("INSERT INTO payment_attempts").
		WillReturnError(errors.New("relation does not exist"))

	err = repo.Create(context.Background(), newTestAttempt())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert payment attempt")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	hc := NewHealthCheck(mock)
	assert.Equal(t, "postgresql", hc.Name())

	mock.ExpectExec("SELECT 1").WillReturnResult(pgxmock.NewResult("SELECT", 1))
	assert.NoError(t, hc.Ping(context.Background()))

	mock.ExpectExec("SELECT 1").WillReturnError(errors.New("down"))
	assert.Error(t, hc.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
