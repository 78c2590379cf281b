package memory

import (
	"context"
	"sync"
	"sync/atomic"
)

// AccountLock implements ports.AccountLocker inside a single process.
// Each account gets its own flag on first reference; flags are never removed.
type AccountLock struct {
	held sync.Map // map[string]*atomic.Bool
}

// NewAccountLock creates an empty AccountLock.
func NewAccountLock() *AccountLock {
	return &AccountLock{}
}

// TryAcquire flips the account flag from free to held.
func (l *AccountLock) TryAcquire(_ context.Context, accountID string) (bool, error) {
	v, _ := l.held.LoadOrStore(accountID, new(atomic.Bool))
	return v.(*atomic.Bool).CompareAndSwap(false, true), nil
}

// Release marks the account free.
func (l *AccountLock) Release(_ context.Context, accountID string) error {
	if v, ok := l.held.Load(accountID); ok {
		v.(*atomic.Bool).Store(false)
	}
	return nil
}
