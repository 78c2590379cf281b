package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"payment-engine/internal/core/domain"
	"payment-engine/internal/core/ports"
	"payment-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultGatewayTimeout bounds a single gateway call when none is configured.
const DefaultGatewayTimeout = 5 * time.Second

// ProcessorConfig tunes the payment processor.
type ProcessorConfig struct {
	// GatewayTimeout is how long the processor waits for the gateway before
	// giving up and releasing the account lock.
	GatewayTimeout time.Duration
}

// PaymentProcessorImpl implements ports.PaymentProcessor.
type PaymentProcessorImpl struct {
	converter ports.CurrencyConverter
	fraud     ports.FraudDetector
	locker    ports.AccountLocker
	gateway   ports.GatewayClient
	recorder  ports.AttemptRecorder
	cfg       ProcessorConfig
	log       zerolog.Logger
	clock     func() time.Time
}

// NewPaymentProcessor creates a new PaymentProcessorImpl. recorder may be nil.
func NewPaymentProcessor(
	converter ports.CurrencyConverter,
	fraud ports.FraudDetector,
	locker ports.AccountLocker,
	gateway ports.GatewayClient,
	recorder ports.AttemptRecorder,
	cfg ProcessorConfig,
	log zerolog.Logger,
) *PaymentProcessorImpl {
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = DefaultGatewayTimeout
	}
	return &PaymentProcessorImpl{
		converter: converter,
		fraud:     fraud,
		locker:    locker,
		gateway:   gateway,
		recorder:  recorder,
		cfg:       cfg,
		log:       log,
		clock:     time.Now,
	}
}

// Process runs a single attempt: validate, check funds, convert, fraud check,
// lock the account, charge through the gateway, and compute the new balance.
// The error return is non-nil only when a backing store fails.
func (p *PaymentProcessorImpl) Process(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResult, error) {
	start := p.clock()

	tr := attemptTrace{reached: domain.StageReceived}
	result, err := p.process(ctx, req, &tr)
	if err != nil {
		p.log.Error().Err(err).
			Str("account_id", req.AccountID).
			Str("reached", string(tr.reached)).
			Msg("payment aborted by environment failure")
		return nil, err
	}

	p.logOutcome(req, result, tr.reached)
	p.record(ctx, req, tr, result, start)
	return result, nil
}

// attemptTrace collects what process learned before reaching a terminal stage.
type attemptTrace struct {
	amountRef decimal.Decimal
	reached   domain.Stage // last non-terminal stage completed
}

func (p *PaymentProcessorImpl) process(ctx context.Context, req domain.PaymentRequest, tr *attemptTrace) (*domain.PaymentResult, error) {
	balance := toDecimal(req.AccountBalance)

	// Received -> Validated
	if !finite(req.Amount) || !finite(req.AccountBalance) || strings.TrimSpace(req.AccountID) == "" {
		return reject(apperror.ErrInvalidInput("Invalid input type"), balance, domain.StageRejected), nil
	}
	if req.Amount <= 0 {
		return reject(apperror.ErrInvalidInput("Amount must be positive"), balance, domain.StageRejected), nil
	}
	if !p.converter.Supports(req.Currency) {
		return reject(apperror.ErrInvalidInput("Unsupported currency"), balance, domain.StageRejected), nil
	}

	amount := decimal.NewFromFloat(req.Amount)
	if balance.LessThan(amount) {
		return reject(apperror.ErrInsufficientFunds(), balance, domain.StageRejected), nil
	}
	tr.reached = domain.StageValidated

	// Validated -> CurrencyConverted
	amountRef, err := p.converter.ToReference(amount, req.Currency)
	if err != nil {
		return reject(apperror.ErrInvalidInput("Unsupported currency"), balance, domain.StageRejected), nil
	}
	tr.amountRef = amountRef
	tr.reached = domain.StageCurrencyConverted

	// CurrencyConverted -> FraudChecked
	decision, err := p.fraud.Evaluate(ctx, req.AccountID, amountRef, p.clock())
	if err != nil {
		return nil, fmt.Errorf("fraud check: %w", err)
	}
	if decision.Blocked {
		return reject(apperror.ErrFraudSuspected(), balance, domain.StageRejected), nil
	}
	tr.reached = domain.StageFraudChecked

	// FraudChecked -> LockHeld
	acquired, err := p.locker.TryAcquire(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("acquire account lock: %w", err)
	}
	if !acquired {
		return reject(apperror.ErrAccountContended(), balance, domain.StageRejected), nil
	}
	defer p.release(ctx, req.AccountID)
	tr.reached = domain.StageLockHeld

	// LockHeld -> GatewayCalled
	charge, err := p.charge(ctx, domain.ChargeRequest{
		Amount:    amount,
		Currency:  req.Currency,
		AccountID: req.AccountID,
	})
	tr.reached = domain.StageGatewayCalled
	if err != nil {
		return reject(apperror.ErrGatewayUnavailable(err), balance, domain.StageDeclined), nil
	}
	if !charge.Approved {
		return reject(apperror.ErrGatewayDeclined(charge.Message), balance, domain.StageDeclined), nil
	}

	return domain.Accept(balance.Sub(amount)), nil
}

// charge calls the gateway and stops waiting once GatewayTimeout elapses or
// ctx ends, even if the client ignores cancellation. A panic inside the
// client is reported as a gateway failure.
func (p *PaymentProcessorImpl) charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.GatewayTimeout)
	defer cancel()

	type outcome struct {
		res *domain.ChargeResult
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("gateway panic: %v", r)}
			}
		}()
		res, err := p.gateway.Charge(ctx, req)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		if o.err == nil && o.res == nil {
			o.err = domain.ErrMalformedGatewayResponse
		}
		return o.res, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("gateway timeout: %w", ctx.Err())
	}
}

// release frees the account even when the request context is already done.
func (p *PaymentProcessorImpl) release(ctx context.Context, accountID string) {
	if err := p.locker.Release(context.WithoutCancel(ctx), accountID); err != nil {
		p.log.Warn().Err(err).Str("account_id", accountID).Msg("failed to release account lock")
	}
}

// Risk reports the account's current fraud window without changing it.
func (p *PaymentProcessorImpl) Risk(ctx context.Context, accountID string) (*domain.RiskSnapshot, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, apperror.ErrInvalidInput("Invalid input type")
	}
	snap, err := p.fraud.Snapshot(ctx, accountID, p.clock())
	if err != nil {
		return nil, fmt.Errorf("risk snapshot: %w", err)
	}
	return snap, nil
}

func (p *PaymentProcessorImpl) logOutcome(req domain.PaymentRequest, res *domain.PaymentResult, reached domain.Stage) {
	ev := p.log.Info()
	if res.Reason == domain.ReasonGatewayUnavailable {
		ev = p.log.Warn()
	}
	ev.Str("account_id", req.AccountID).
		Str("currency", req.Currency.String()).
		Float64("amount", sanitize(req.Amount)).
		Str("reason", string(res.Reason)).
		Str("stage", string(res.Stage)).
		Str("reached", string(reached)).
		Str("new_balance", res.NewBalance.String()).
		Msg(res.Message)
}

func (p *PaymentProcessorImpl) record(ctx context.Context, req domain.PaymentRequest, tr attemptTrace, res *domain.PaymentResult, start time.Time) {
	if p.recorder == nil {
		return
	}
	p.recorder.Record(ctx, &domain.PaymentAttempt{
		ID:         uuid.New(),
		AccountID:  req.AccountID,
		Amount:     toDecimal(req.Amount),
		Currency:   req.Currency,
		AmountRef:  tr.amountRef,
		Accepted:   res.Accepted,
		Reason:     res.Reason,
		Stage:      res.Stage,
		Reached:    tr.reached,
		NewBalance: res.NewBalance,
		Latency:    p.clock().Sub(start),
		CreatedAt:  start,
	})
}

// reject turns a rejection error into a result. AppError codes share their
// values with domain.ReasonCode.
func reject(e *apperror.AppError, balance decimal.Decimal, stage domain.Stage) *domain.PaymentResult {
	return domain.Reject(domain.ReasonCode(e.Code), e.Message, balance, stage)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// toDecimal converts a caller number; non-finite values become zero.
func toDecimal(f float64) decimal.Decimal {
	if !finite(f) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func sanitize(f float64) float64 {
	if !finite(f) {
		return 0
	}
	return f
}
