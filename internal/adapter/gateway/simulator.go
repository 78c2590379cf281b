package gateway

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"payment-engine/internal/core/domain"

	"github.com/shopspring/decimal"
)

// ErrSimulatedFailure is the random transport failure the simulator injects.
var ErrSimulatedFailure = errors.New("payment gateway error")

// SimulatorConfig tunes the in-process gateway.
type SimulatorConfig struct {
	FailureRate  float64
	DeclineAbove decimal.Decimal
	MinLatency   time.Duration
	MaxLatency   time.Duration
}

// Simulator implements ports.GatewayClient without a network. It sleeps for a
// random latency, fails at FailureRate, and declines amounts above DeclineAbove.
type Simulator struct {
	cfg SimulatorConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a Simulator. A nil src seeds from the runtime.
func NewSimulator(cfg SimulatorConfig, src rand.Source) *Simulator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Simulator{cfg: cfg, rng: rand.New(src)}
}

// Charge simulates one authorization round trip.
func (s *Simulator) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	latency, fail := s.roll()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if fail {
		return nil, ErrSimulatedFailure
	}

	if req.Amount.GreaterThan(s.cfg.DeclineAbove) {
		return &domain.ChargeResult{
			Approved: false,
			Code:     domain.GatewayCodeDeclined,
			Message:  "Amount exceeds limit",
		}, nil
	}

	return &domain.ChargeResult{
		Approved: true,
		Code:     domain.GatewayCodeApproved,
		Message:  "Payment successful",
	}, nil
}

func (s *Simulator) roll() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latency := s.cfg.MinLatency
	if spread := s.cfg.MaxLatency - s.cfg.MinLatency; spread > 0 {
		latency += time.Duration(s.rng.Int64N(int64(spread)))
	}
	return latency, s.rng.Float64() < s.cfg.FailureRate
}
