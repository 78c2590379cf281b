package memory

import (
	"context"
	"sync"
	"time"

	"payment-engine/internal/core/domain"
)

type accountWindow struct {
	mu      sync.Mutex
	records []domain.TransactionRecord // ordered by OccurredAt
}

// FraudWindowStore implements ports.FraudWindowStore in process memory.
// Windows are guarded per account, never by a store-wide lock.
type FraudWindowStore struct {
	windows sync.Map // map[string]*accountWindow
}

// NewFraudWindowStore creates an empty FraudWindowStore.
func NewFraudWindowStore() *FraudWindowStore {
	return &FraudWindowStore{}
}

func (s *FraudWindowStore) window(accountID string) *accountWindow {
	v, _ := s.windows.LoadOrStore(accountID, &accountWindow{})
	return v.(*accountWindow)
}

// Observe prunes records at or before cutoff, appends rec and returns the count.
func (s *FraudWindowStore) Observe(_ context.Context, accountID string, rec *domain.TransactionRecord, cutoff time.Time) (int, error) {
	w := s.window(accountID)
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.records[:0]
	for _, r := range w.records {
		if r.OccurredAt.After(cutoff) {
			kept = append(kept, r)
		}
	}
	// Zero the tail so pruned records can be collected.
	for i := len(kept); i < len(w.records); i++ {
		w.records[i] = domain.TransactionRecord{}
	}
	w.records = kept

	if rec != nil {
		w.records = append(w.records, *rec)
	}
	return len(w.records), nil
}

// Count returns the number of records after cutoff.
func (s *FraudWindowStore) Count(_ context.Context, accountID string, cutoff time.Time) (int, error) {
	v, ok := s.windows.Load(accountID)
	if !ok {
		return 0, nil
	}
	w := v.(*accountWindow)
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for _, r := range w.records {
		if r.OccurredAt.After(cutoff) {
			n++
		}
	}
	return n, nil
}
