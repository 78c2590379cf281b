package redis

import (
	"context"
	"fmt"
	"time"

	"payment-engine/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// observeScript prunes, optionally appends and counts in one round trip.
// KEYS[1] window key; ARGV: cutoff ms, window ms, member ('' for none), score ms.
var observeScript = goredis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if ARGV[3] ~= '' then
	redis.call('ZADD', KEYS[1], ARGV[4], ARGV[3])
end
local n = redis.call('ZCARD', KEYS[1])
if n > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return n
`)

// FraudWindowStore implements ports.FraudWindowStore with one sorted set per
// account, scored by occurrence time in milliseconds.
type FraudWindowStore struct {
	client *goredis.Client
	window time.Duration
}

// NewFraudWindowStore creates a Redis-backed window store. window sets the key
// expiry so idle accounts do not linger.
func NewFraudWindowStore(client *goredis.Client, window time.Duration) *FraudWindowStore {
	return &FraudWindowStore{client: client, window: window}
}

// Observe prunes records at or before cutoff, appends rec and returns the count.
func (s *FraudWindowStore) Observe(ctx context.Context, accountID string, rec *domain.TransactionRecord, cutoff time.Time) (int, error) {
	member, score := "", int64(0)
	if rec != nil {
		member = rec.ID.String() + ":" + rec.AmountRef.String()
		score = rec.OccurredAt.UnixMilli()
	}

	n, err := observeScript.Run(ctx, s.client, []string{fraudPrefix + accountID},
		cutoff.UnixMilli(), s.window.Milliseconds(), member, score).Int()
	if err != nil {
		return 0, fmt.Errorf("redis fraud observe: %w", err)
	}
	return n, nil
}

// Count returns the number of records after cutoff.
func (s *FraudWindowStore) Count(ctx context.Context, accountID string, cutoff time.Time) (int, error) {
	n, err := s.client.ZCount(ctx, fraudPrefix+accountID, fmt.Sprintf("(%d", cutoff.UnixMilli()), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("redis fraud count: %w", err)
	}
	return int(n), nil
}
