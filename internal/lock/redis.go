package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while the caller still owns it.
// Deleting unconditionally could drop a lease that has already expired
// and been re-acquired by another replica.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisManager implements Manager on a shared Redis instance using
// SET NX PX.  The value stored under the key is the fencing token; the
// PX expiry is the lease budget.  Contended acquisition polls until the
// wait budget elapses.
type RedisManager struct {
	rdb  *redis.Client
	poll time.Duration
}

// NewRedisManager returns a RedisManager bound to the provided client.
func NewRedisManager(rdb *redis.Client) *RedisManager {
	return &RedisManager{rdb: rdb, poll: 50 * time.Millisecond}
}

// Acquire attempts SET NX PX every poll interval until it succeeds or
// the wait budget is spent.  Best-effort FIFO only: contended waiters
// race on each poll.
func (m *RedisManager) Acquire(ctx context.Context, key string, wait, lease time.Duration) (string, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := m.rdb.SetNX(ctx, key, token, lease).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
		if time.Now().After(deadline) {
			return "", ErrNotAcquired
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.poll):
		}
	}
}

// Release gives up the lease identified by token.  A release after
// expiry, or with a stale token, is a no-op.
func (m *RedisManager) Release(ctx context.Context, key string, token string) error {
	return releaseScript.Run(ctx, m.rdb, []string{key}, token).Err()
}
