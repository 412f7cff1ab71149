// Package worker contains the background expiry reaper.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/tickethub/event-ticket-service/internal/cache"
)

// TicketReleaser reclaims expired reservations.  Implemented by
// repository.TicketRepo.
type TicketReleaser interface {
	ReleaseExpired(ctx context.Context, now time.Time) ([]int64, int64, error)
}

// Reaper periodically reopens tickets whose reservation deadline has
// passed.  It does not take the per-event reservation lock: the lock
// only guards the AVAILABLE→RESERVED direction, and the batch update is
// idempotent so overlapping reapers are safe.  Failures are logged and
// the next tick retries.
type Reaper struct {
	tickets      TicketReleaser
	cache        *cache.Store
	period       time.Duration
	initialDelay time.Duration
}

// New constructs a Reaper with the given cadence.
func New(tickets TicketReleaser, cacheStore *cache.Store, period, initialDelay time.Duration) *Reaper {
	if tickets == nil || cacheStore == nil {
		panic("nil dependency passed to worker.New")
	}
	if period <= 0 {
		period = 5 * time.Minute
	}
	return &Reaper{
		tickets:      tickets,
		cache:        cacheStore,
		period:       period,
		initialDelay: initialDelay,
	}
}

// Start launches the reaper loop on its own goroutine.  The first run
// happens after the initial delay, subsequent runs every period.  The
// loop stops when ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	go func() {
		if r.initialDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.initialDelay):
			}
		}
		if err := r.RunOnce(ctx); err != nil {
			log.Printf("reaper: run failed: %v", err)
		}
		ticker := time.NewTicker(r.period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.RunOnce(ctx); err != nil {
					log.Printf("reaper: run failed: %v", err)
				}
			}
		}
	}()
}

// RunOnce reclaims every reservation whose deadline is at or before
// now and invalidates the availability caches when anything changed.
func (r *Reaper) RunOnce(ctx context.Context) error {
	eventIDs, released, err := r.tickets.ReleaseExpired(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if released == 0 {
		return nil
	}
	log.Printf("reaper: released %d expired reservations across %d events", released, len(eventIDs))
	r.cache.Invalidate(ctx, cache.AllNames...)
	return nil
}
