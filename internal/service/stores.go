// Package service contains the business logic of the ticketing system:
// the read path with its read-through caches (EventService) and the
// reservation engine with its per-event locking discipline
// (TicketService).  Services depend on small store interfaces so that
// tests can substitute in-memory fakes for the SQL repositories.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/tickethub/event-ticket-service/internal/repository"
)

// EventStore is the slice of repository.EventRepo the services need.
type EventStore interface {
	CreateWithTickets(ctx context.Context, e *repository.EventRecord) error
	GetByID(ctx context.Context, id int64) (*repository.EventRecord, error)
	ListAll(ctx context.Context) ([]repository.EventRecord, error)
	ListPaged(ctx context.Context, offset, limit int, sortKey string, desc bool) ([]repository.EventRecord, int64, error)
	ListWithAvailableTickets(ctx context.Context) ([]repository.EventRecord, error)
}

// TicketStore is the slice of repository.TicketRepo the services need.
type TicketStore interface {
	ReserveNext(ctx context.Context, eventID int64, customerEmail string, reservedUntil time.Time) (*repository.TicketRecord, error)
	ReleaseExpired(ctx context.Context, now time.Time) ([]int64, int64, error)
	ListAvailableByEvent(ctx context.Context, eventID int64) ([]repository.TicketRecord, error)
	ListByCustomer(ctx context.Context, email string) ([]repository.TicketRecord, error)
	CountAvailableByEvent(ctx context.Context, eventID int64) (int, error)
}

// ValidationError carries every constraint violation found in a
// request, raised before any side effect.  Handlers translate it into
// an HTTP 400 response with the violations joined into one message.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, ", ")
}
