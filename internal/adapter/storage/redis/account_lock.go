package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it still carries our token, so a
// holder whose TTL lapsed cannot free a lock someone else now owns.
var releaseScript = goredis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// AccountLock implements ports.AccountLocker across processes sharing one Redis.
// Within a process an account has at most one live acquisition, tracked by
// its token, even after the Redis key has expired underneath it.
type AccountLock struct {
	client *goredis.Client
	ttl    time.Duration
	tokens sync.Map // accountID -> token of the live local acquisition
}

// NewAccountLock creates a Redis-backed account lock. ttl bounds how long a
// lock outlives a crashed holder and must exceed the gateway timeout.
func NewAccountLock(client *goredis.Client, ttl time.Duration) *AccountLock {
	return &AccountLock{client: client, ttl: ttl}
}

// TryAcquire claims the account locally, then sets the lock key if absent.
// It never waits.
func (l *AccountLock) TryAcquire(ctx context.Context, accountID string) (bool, error) {
	token := uuid.NewString()
	if _, loaded := l.tokens.LoadOrStore(accountID, token); loaded {
		return false, nil
	}

	err := l.client.SetArgs(ctx, lockPrefix+accountID, token, goredis.SetArgs{
		Mode: "NX",
		TTL:  l.ttl,
	}).Err()
	if err == nil {
		return true, nil
	}

	l.tokens.CompareAndDelete(accountID, token)
	if err == goredis.Nil {
		return false, nil
	}
	return false, fmt.Errorf("redis lock acquire: %w", err)
}

// Release frees a lock acquired by this process. Releasing an account this
// process does not hold is a no-op. The key is deleted only while it still
// carries this acquisition's token.
func (l *AccountLock) Release(ctx context.Context, accountID string) error {
	v, ok := l.tokens.Load(accountID)
	if !ok {
		return nil
	}
	token := v.(string)
	defer l.tokens.CompareAndDelete(accountID, token)

	if err := releaseScript.Run(ctx, l.client, []string{lockPrefix + accountID}, token).Err(); err != nil {
		return fmt.Errorf("redis lock release: %w", err)
	}
	return nil
}
