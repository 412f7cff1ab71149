package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tickethub/event-ticket-service/internal/repository"
)

// memStore is an in-memory stand-in for both repositories.  Mutations
// are serialised by one mutex so it honours the same atomicity the SQL
// transactions provide.  Call counters let tests assert that cached
// reads never hit the store.
type memStore struct {
	mu           sync.Mutex
	events       map[int64]repository.EventRecord
	tickets      map[int64]*repository.TicketRecord
	nextEventID  int64
	nextTicketID int64

	listAllCalls int
	countCalls   int
}

func newMemStore() *memStore {
	return &memStore{
		events:  make(map[int64]repository.EventRecord),
		tickets: make(map[int64]*repository.TicketRecord),
	}
}

func (s *memStore) CreateWithTickets(_ context.Context, e *repository.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	e.ID = s.nextEventID
	s.events[e.ID] = *e
	for i := 0; i < e.TotalTickets; i++ {
		s.nextTicketID++
		s.tickets[s.nextTicketID] = &repository.TicketRecord{
			ID:        s.nextTicketID,
			EventID:   e.ID,
			Status:    "AVAILABLE",
			CreatedAt: time.Now().UTC(),
		}
	}
	return nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*repository.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return &e, nil
}

func (s *memStore) ListAll(_ context.Context) ([]repository.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listAllCalls++
	return s.sortedEventsLocked(), nil
}

func (s *memStore) ListPaged(_ context.Context, offset, limit int, _ string, _ bool) ([]repository.EventRecord, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sortedEventsLocked()
	total := int64(len(all))
	if offset >= len(all) {
		return []repository.EventRecord{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *memStore) ListWithAvailableTickets(_ context.Context) ([]repository.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	withStock := make(map[int64]bool)
	for _, t := range s.tickets {
		if t.Status == "AVAILABLE" {
			withStock[t.EventID] = true
		}
	}
	var out []repository.EventRecord
	for _, e := range s.sortedEventsLocked() {
		if withStock[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) ReserveNext(_ context.Context, eventID int64, customerEmail string, reservedUntil time.Time) (*repository.TicketRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pick *repository.TicketRecord
	for _, t := range s.tickets {
		if t.EventID == eventID && t.Status == "AVAILABLE" && (pick == nil || t.ID < pick.ID) {
			pick = t
		}
	}
	if pick == nil {
		return nil, repository.ErrNoAvailableTickets
	}
	until := reservedUntil.UTC()
	email := customerEmail
	pick.Status = "RESERVED"
	pick.CustomerEmail = &email
	pick.ReservedUntil = &until
	cp := *pick
	return &cp, nil
}

func (s *memStore) ReleaseExpired(_ context.Context, now time.Time) ([]int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[int64]bool)
	var eventIDs []int64
	var released int64
	for _, t := range s.tickets {
		if t.Status == "RESERVED" && t.ReservedUntil != nil && !t.ReservedUntil.After(now) {
			t.Status = "AVAILABLE"
			t.CustomerEmail = nil
			t.ReservedUntil = nil
			released++
			if !seen[t.EventID] {
				seen[t.EventID] = true
				eventIDs = append(eventIDs, t.EventID)
			}
		}
	}
	return eventIDs, released, nil
}

func (s *memStore) ListAvailableByEvent(_ context.Context, eventID int64) ([]repository.TicketRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.TicketRecord
	for _, t := range s.sortedTicketsLocked() {
		if t.EventID == eventID && t.Status == "AVAILABLE" {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) ListByCustomer(_ context.Context, email string) ([]repository.TicketRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.TicketRecord
	for _, t := range s.sortedTicketsLocked() {
		if t.CustomerEmail != nil && *t.CustomerEmail == email {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) CountAvailableByEvent(_ context.Context, eventID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countCalls++
	n := 0
	for _, t := range s.tickets {
		if t.EventID == eventID && t.Status == "AVAILABLE" {
			n++
		}
	}
	return n, nil
}

// statusCounts tallies tickets of an event by status, for conservation
// assertions.
func (s *memStore) statusCounts(eventID int64) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int)
	for _, t := range s.tickets {
		if t.EventID == eventID {
			out[t.Status]++
		}
	}
	return out
}

func (s *memStore) sortedEventsLocked() []repository.EventRecord {
	out := make([]repository.EventRecord, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) sortedTicketsLocked() []repository.TicketRecord {
	out := make([]repository.TicketRecord, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// interface conformance
var (
	_ EventStore  = (*memStore)(nil)
	_ TicketStore = (*memStore)(nil)
)
