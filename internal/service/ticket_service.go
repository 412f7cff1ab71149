package service

import (
	"context"
	"log"
	"time"

	"github.com/tickethub/event-ticket-service/internal/cache"
	"github.com/tickethub/event-ticket-service/internal/lock"
	"github.com/tickethub/event-ticket-service/internal/model"
	"github.com/tickethub/event-ticket-service/internal/queue"
	"github.com/tickethub/event-ticket-service/internal/repository"
)

// ReservedPublisher notifies downstream consumers of a successful
// reservation.  Publishing is best-effort: failures never propagate to
// the request path.
type ReservedPublisher func(ctx context.Context, event queue.TicketReservedEvent) error

// TicketService is the reservation engine.  A claim serialises against
// every other claim for the same event through the lock manager, picks
// the smallest AVAILABLE ticket id inside one database transaction and
// invalidates the availability caches afterwards.
type TicketService struct {
	events  EventStore
	tickets TicketStore
	locks   lock.Manager
	cache   *cache.Store
	publish ReservedPublisher

	window time.Duration // how long the reservation holds the ticket
	wait   time.Duration // lock wait budget
	lease  time.Duration // lock lease budget
}

// NewTicketService constructs a TicketService.  publish may be nil to
// disable domain events.
func NewTicketService(events EventStore, tickets TicketStore, locks lock.Manager, cacheStore *cache.Store, publish ReservedPublisher, window, wait, lease time.Duration) *TicketService {
	if events == nil || tickets == nil || locks == nil || cacheStore == nil {
		panic("nil dependency passed to NewTicketService")
	}
	if window <= 0 {
		window = 10 * time.Minute
	}
	if wait <= 0 {
		wait = 3 * time.Second
	}
	if lease <= 0 {
		lease = 10 * time.Second
	}
	return &TicketService{
		events:  events,
		tickets: tickets,
		locks:   locks,
		cache:   cacheStore,
		publish: publish,
		window:  window,
		wait:    wait,
		lease:   lease,
	}
}

// Reserve claims one seat for the customer.  Errors:
// repository.ErrEventNotFound when the event id has no row,
// lock.ErrNotAcquired when the per-event lock cannot be acquired within
// the wait budget, repository.ErrNoAvailableTickets when the inventory
// is exhausted.
//
// The lock is required even though the selection runs in a
// transaction: without it two replicas could both read the same
// smallest AVAILABLE id before either commits the update, and the
// second writer would silently overwrite the first.
func (s *TicketService) Reserve(ctx context.Context, eventID int64, customerEmail string) (*model.Ticket, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	key := lock.ReservationKey(eventID)
	token, err := s.locks.Acquire(ctx, key, s.wait, s.lease)
	if err != nil {
		if err == lock.ErrNotAcquired {
			log.Printf("reserve: lock %s not acquired within %s", key, s.wait)
		}
		return nil, err
	}

	reservedUntil := time.Now().UTC().Add(s.window)
	rec, err := s.tickets.ReserveNext(ctx, eventID, customerEmail, reservedUntil)
	if err != nil {
		s.releaseLock(ctx, key, token)
		return nil, err
	}

	// Invalidation, not update: computing the new count here would race
	// with concurrent reservers. The next reader re-derives it.
	s.cache.Invalidate(ctx, cache.AllNames...)

	// The critical section ends here. Publishing dials the broker, and
	// holding the lock across that wait would serialise the event's
	// claims on broker latency instead of on the database transaction.
	s.releaseLock(ctx, key, token)

	if s.publish != nil {
		event := queue.TicketReservedEvent{
			TicketID:      rec.ID,
			EventID:       eventID,
			EventName:     ev.Name,
			Venue:         ev.Venue,
			CustomerEmail: customerEmail,
			ReservedUntil: reservedUntil.Format(time.RFC3339),
			ReservedAt:    time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.publish(ctx, event); err != nil {
			log.Printf("reserve: publish ticket.reserved failed: %v", err)
		}
	}

	log.Printf("ticket %d reserved for %s on event %d until %s", rec.ID, customerEmail, eventID, reservedUntil.Format(time.RFC3339))
	ticket := toTicket(*rec)
	return &ticket, nil
}

// releaseLock gives the per-event lock back.  Lease self-expires if
// this fails; nothing to recover.
func (s *TicketService) releaseLock(ctx context.Context, key, token string) {
	if err := s.locks.Release(ctx, key, token); err != nil {
		log.Printf("reserve: release %s failed: %v", key, err)
	}
}

// ListAvailableTickets returns all currently AVAILABLE tickets for an
// event, smallest id first.  The event must exist.
func (s *TicketService) ListAvailableTickets(ctx context.Context, eventID int64) ([]model.Ticket, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	recs, err := s.tickets.ListAvailableByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return toTickets(recs), nil
}

// ListByCustomer returns every ticket associated with the email,
// regardless of status.
func (s *TicketService) ListByCustomer(ctx context.Context, email string) ([]model.Ticket, error) {
	recs, err := s.tickets.ListByCustomer(ctx, email)
	if err != nil {
		return nil, err
	}
	return toTickets(recs), nil
}

func toTicket(rec repository.TicketRecord) model.Ticket {
	return model.Ticket{
		ID:            rec.ID,
		EventID:       rec.EventID,
		Status:        rec.Status,
		CustomerEmail: rec.CustomerEmail,
		ReservedUntil: rec.ReservedUntil,
		CreatedAt:     rec.CreatedAt,
	}
}

func toTickets(recs []repository.TicketRecord) []model.Ticket {
	tickets := make([]model.Ticket, 0, len(recs))
	for _, rec := range recs {
		tickets = append(tickets, toTicket(rec))
	}
	return tickets
}
