// Package lock provides mutually-exclusive, auto-expiring leases on
// named keys.  Two variants exist: a Redis-backed manager that is
// correct across horizontally-scaled replicas, and an in-process
// manager for single-replica deployments and tests.  Callers must not
// depend on which variant is in use.
package lock

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrNotAcquired is returned when no acquisition succeeded within the
// wait budget.  The attempt has no side effects and may be retried.
var ErrNotAcquired = errors.New("lock not acquired")

// Manager grants exclusive ownership of a named key.  Acquire returns
// a fencing token on success; ownership lasts until Release is called
// with the matching token or until lease elapses, whichever comes
// first.  The lease is self-expiring so that holder death cannot
// deadlock other claimants.  Release is idempotent and safe to call
// after the lease has expired.
type Manager interface {
	Acquire(ctx context.Context, key string, wait, lease time.Duration) (string, error)
	Release(ctx context.Context, key string, token string) error
}

// ReservationKey names the critical section serialising reservations
// for one event.  One independent lock per event.
func ReservationKey(eventID int64) string {
	return "ticket:reserve:event:" + strconv.FormatInt(eventID, 10)
}
