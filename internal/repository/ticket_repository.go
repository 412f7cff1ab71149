package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TicketRecord mirrors a row of the tickets table.  CustomerEmail and
// ReservedUntil are nullable; they are non-nil only while the ticket is
// out of AVAILABLE state.
type TicketRecord struct {
	ID            int64      // tickets.id
	EventID       int64      // tickets.event_id
	Status        string     // tickets.status
	CustomerEmail *string    // tickets.customer_email (nullable)
	ReservedUntil *time.Time // tickets.reserved_until (nullable)
	CreatedAt     time.Time  // tickets.created_at
}

// TicketRepo provides data access to the tickets table.  All methods
// operate on UTC timestamps; callers must perform expiration
// comparisons in UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the provided database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// ReserveNext claims the AVAILABLE ticket with the smallest id for the
// event and marks it RESERVED for the given customer until the supplied
// deadline.  Selection and update run in one transaction; the caller
// must additionally hold the per-event reservation lock so that no two
// replicas can read the same smallest id before either updates it.
//
// Returns ErrNoAvailableTickets when the event's inventory is exhausted.
func (r *TicketRepo) ReserveNext(ctx context.Context, eventID int64, customerEmail string, reservedUntil time.Time) (*TicketRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Smallest id wins: deterministic tie-break, stable across replicas.
	const sel = `SELECT id, created_at FROM tickets
                 WHERE event_id = ? AND status = 'AVAILABLE'
                 ORDER BY id LIMIT 1`
	var (
		id        int64
		createdAt time.Time
	)
	err = tx.QueryRowContext(ctx, sel, eventID).Scan(&id, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAvailableTickets
	}
	if err != nil {
		return nil, err
	}

	until := reservedUntil.UTC()
	const upd = `UPDATE tickets SET status = 'RESERVED', customer_email = ?, reserved_until = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, customerEmail, until.Format(dbTime), id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	email := customerEmail
	return &TicketRecord{
		ID:            id,
		EventID:       eventID,
		Status:        "RESERVED",
		CustomerEmail: &email,
		ReservedUntil: &until,
		CreatedAt:     createdAt,
	}, nil
}

// ReleaseExpired reopens every RESERVED ticket whose deadline has
// passed (inclusive: reserved_until == now is expired).  It returns the
// distinct event ids that were touched so that callers can invalidate
// availability caches.  The read and the batch update share one
// transaction; running it twice with no intervening reservations is a
// no-op because the second read matches nothing.
func (r *TicketRepo) ReleaseExpired(ctx context.Context, now time.Time) ([]int64, int64, error) {
	cutoff := now.UTC().Format(dbTime)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT event_id FROM tickets WHERE status = 'RESERVED' AND reserved_until <= ?`,
		cutoff,
	)
	if err != nil {
		return nil, 0, err
	}
	var eventIDs []int64
	for rows.Next() {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return nil, 0, scanErr
		}
		eventIDs = append(eventIDs, id)
	}
	if err = rows.Close(); err != nil {
		return nil, 0, err
	}
	if len(eventIDs) == 0 {
		return nil, 0, nil
	}

	// One batch update for every expired lease; per-row updates would
	// turn a 100-ticket sweep into 100 round-trips.
	res, err := tx.ExecContext(ctx,
		`UPDATE tickets SET status = 'AVAILABLE', customer_email = NULL, reserved_until = NULL
         WHERE status = 'RESERVED' AND reserved_until <= ?`,
		cutoff,
	)
	if err != nil {
		return nil, 0, err
	}
	released, err := res.RowsAffected()
	if err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	committed = true
	return eventIDs, released, nil
}

// ListAvailableByEvent returns all AVAILABLE tickets for an event
// ordered by id.
func (r *TicketRepo) ListAvailableByEvent(ctx context.Context, eventID int64) ([]TicketRecord, error) {
	const q = `SELECT id, event_id, status, customer_email, reserved_until, created_at
               FROM tickets WHERE event_id = ? AND status = 'AVAILABLE' ORDER BY id`
	return r.queryTickets(ctx, q, eventID)
}

// ListByCustomer returns every ticket associated with the given email,
// regardless of status, ordered by id.
func (r *TicketRepo) ListByCustomer(ctx context.Context, email string) ([]TicketRecord, error) {
	const q = `SELECT id, event_id, status, customer_email, reserved_until, created_at
               FROM tickets WHERE customer_email = ? ORDER BY id`
	return r.queryTickets(ctx, q, email)
}

// CountAvailableByEvent counts AVAILABLE tickets for an event.  This is
// the single source of truth for availability; the count is never
// written to the events table.
func (r *TicketRepo) CountAvailableByEvent(ctx context.Context, eventID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM tickets WHERE event_id = ? AND status = 'AVAILABLE'`
	var n int
	if err := r.db.QueryRowContext(ctx, q, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *TicketRepo) queryTickets(ctx context.Context, q string, args ...interface{}) ([]TicketRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]TicketRecord, 0)
	for rows.Next() {
		var t TicketRecord
		if err := rows.Scan(&t.ID, &t.EventID, &t.Status, &t.CustomerEmail, &t.ReservedUntil, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}
