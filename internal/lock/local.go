package lock

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// localLease tracks ownership of one key in the LocalManager.
type localLease struct {
	token   string
	expires time.Time
}

// LocalManager implements Manager with an in-process table of leases.
// It provides the same contract as RedisManager for a single-replica
// deployment: self-expiring ownership and monotonic fencing tokens.
type LocalManager struct {
	mu     sync.Mutex
	leases map[string]localLease
	next   uint64
	poll   time.Duration
}

// NewLocalManager returns an empty LocalManager.
func NewLocalManager() *LocalManager {
	return &LocalManager{
		leases: make(map[string]localLease),
		poll:   5 * time.Millisecond,
	}
}

// Acquire grants the key to the caller if it is free or its current
// lease has expired, polling until the wait budget elapses otherwise.
func (m *LocalManager) Acquire(ctx context.Context, key string, wait, lease time.Duration) (string, error) {
	deadline := time.Now().Add(wait)
	for {
		if token, ok := m.tryAcquire(key, lease); ok {
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

func (m *LocalManager) tryAcquire(key string, lease time.Duration) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if cur, ok := m.leases[key]; ok && cur.expires.After(now) {
		return "", false
	}
	m.next++
	token := strconv.FormatUint(m.next, 10)
	m.leases[key] = localLease{token: token, expires: now.Add(lease)}
	return token, true
}

// Release drops the lease when the token still matches; stale or
// already-expired releases are no-ops.
func (m *LocalManager) Release(_ context.Context, key string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.leases[key]; ok && cur.token == token {
		delete(m.leases, key)
	}
	return nil
}
