package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/tickethub/event-ticket-service/internal/cache"
	"github.com/tickethub/event-ticket-service/internal/model"
	"github.com/tickethub/event-ticket-service/internal/repository"
)

// EventService serves event listings and availability counts.  Every
// read goes through the cache store; empty results are not cached so
// that a freshly seeded deployment does not pin negative answers for a
// full TTL.  Availability is always derived from the tickets table,
// never read from the event row.
type EventService struct {
	events  EventStore
	tickets TicketStore
	cache   *cache.Store
}

// NewEventService constructs an EventService.  The cache store must be
// non-nil (use a store over a nil Redis client to disable caching).
func NewEventService(events EventStore, tickets TicketStore, cacheStore *cache.Store) *EventService {
	if events == nil || tickets == nil || cacheStore == nil {
		panic("nil dependency passed to NewEventService")
	}
	return &EventService{events: events, tickets: tickets, cache: cacheStore}
}

// ListEvents returns all events with availability counts populated.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	var cached []model.Event
	if s.cache.Get(ctx, cache.EventsList, "all", &cached) {
		return cached, nil
	}
	recs, err := s.events.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.withCounts(ctx, recs)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		s.cache.Set(ctx, cache.EventsList, "all", events)
	}
	return events, nil
}

// ListEventsPaged returns one page of events.  Pages are cached by
// page number and size.
func (s *EventService) ListEventsPaged(ctx context.Context, page, size int, sortKey string, desc bool) (*model.Page, error) {
	// The handler rejects bad paging input, but this is an exported API:
	// clamp so a direct caller can never divide by zero below.
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 1
	}
	key := fmt.Sprintf("%d:%d", page, size)
	var cached model.Page
	if s.cache.Get(ctx, cache.EventsPaged, key, &cached) {
		return &cached, nil
	}
	recs, total, err := s.events.ListPaged(ctx, page*size, size, sortKey, desc)
	if err != nil {
		return nil, err
	}
	events, err := s.withCounts(ctx, recs)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	result := &model.Page{
		Content:       events,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
	if len(events) > 0 {
		s.cache.Set(ctx, cache.EventsPaged, key, result)
	}
	return result, nil
}

// GetEvent returns one event with its availability count.  It fails
// with repository.ErrEventNotFound when the id has no row.
func (s *EventService) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	key := strconv.FormatInt(id, 10)
	var cached model.Event
	if s.cache.Get(ctx, cache.Events, key, &cached) {
		return &cached, nil
	}
	rec, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.AvailableCount(ctx, id)
	if err != nil {
		return nil, err
	}
	ev := toEvent(*rec, count)
	s.cache.Set(ctx, cache.Events, key, ev)
	return &ev, nil
}

// ListAvailableEvents returns events that still have at least one
// AVAILABLE ticket.  The result is empty when no event has inventory.
func (s *EventService) ListAvailableEvents(ctx context.Context) ([]model.Event, error) {
	var cached []model.Event
	if s.cache.Get(ctx, cache.AvailableEvents, "all", &cached) {
		return cached, nil
	}
	recs, err := s.events.ListWithAvailableTickets(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.withCounts(ctx, recs)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		s.cache.Set(ctx, cache.AvailableEvents, "all", events)
	}
	return events, nil
}

// AvailableCount returns the number of AVAILABLE tickets for an event.
// The count is cached per event id; it is the single source of truth
// queried from the tickets table.
func (s *EventService) AvailableCount(ctx context.Context, eventID int64) (int, error) {
	key := strconv.FormatInt(eventID, 10)
	var cached int
	if s.cache.Get(ctx, cache.AvailableTicketsCount, key, &cached) {
		return cached, nil
	}
	count, err := s.tickets.CountAvailableByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, cache.AvailableTicketsCount, key, count)
	return count, nil
}

// CreateEvent validates the declared attributes, persists the event
// with its seeded inventory and invalidates the list caches so clients
// see the new event immediately.
func (s *EventService) CreateEvent(ctx context.Context, e model.Event) (*model.Event, error) {
	if err := validateEvent(e); err != nil {
		return nil, err
	}
	rec := repository.EventRecord{
		Name:         e.Name,
		Venue:        e.Venue,
		EventDate:    e.EventDate.UTC(),
		TotalTickets: e.TotalTickets,
	}
	if err := s.events.CreateWithTickets(ctx, &rec); err != nil {
		return nil, err
	}
	log.Printf("event %d created: %q at %q with %d tickets", rec.ID, rec.Name, rec.Venue, rec.TotalTickets)
	s.cache.Invalidate(ctx, cache.ListNames...)
	created := toEvent(rec, rec.TotalTickets)
	return &created, nil
}

// validateEvent collects every constraint violation so the caller sees
// them all at once instead of fixing one per round-trip.
func validateEvent(e model.Event) error {
	var violations []string
	// Bounds are in characters, not bytes, so multibyte names count
	// one per rune.
	switch n := utf8.RuneCountInString(e.Name); {
	case n == 0:
		violations = append(violations, "Event name is required")
	case n < 3 || n > 100:
		violations = append(violations, "Event name must be between 3 and 100 characters")
	}
	switch n := utf8.RuneCountInString(e.Venue); {
	case n == 0:
		violations = append(violations, "Venue is required")
	case n < 3 || n > 255:
		violations = append(violations, "Venue must be between 3 and 255 characters")
	}
	switch {
	case e.EventDate.IsZero():
		violations = append(violations, "Event date is required")
	case !e.EventDate.After(time.Now()):
		violations = append(violations, "Event date must be in the future")
	}
	if e.TotalTickets < 1 {
		violations = append(violations, "Total tickets must be at least 1")
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// withCounts converts records to API events with availability counts.
func (s *EventService) withCounts(ctx context.Context, recs []repository.EventRecord) ([]model.Event, error) {
	events := make([]model.Event, 0, len(recs))
	for _, rec := range recs {
		count, err := s.AvailableCount(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		events = append(events, toEvent(rec, count))
	}
	return events, nil
}

func toEvent(rec repository.EventRecord, available int) model.Event {
	return model.Event{
		ID:               rec.ID,
		Name:             rec.Name,
		Venue:            rec.Venue,
		EventDate:        rec.EventDate,
		TotalTickets:     rec.TotalTickets,
		AvailableTickets: available,
	}
}
