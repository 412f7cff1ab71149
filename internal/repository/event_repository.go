package repository // repository for event persistence

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB interfaces
	"errors"
	"fmt"
	"strings"
	"time"
)

// dbTime is the MySQL DATETIME layout used for writes.  Reads come back
// as time.Time because the DSN sets parseTime=true with loc=UTC.
const dbTime = "2006-01-02 15:04:05"

// EventRecord mirrors a row of the events table.  AvailableTickets is
// not a column; the service layer derives it from the tickets table.
type EventRecord struct {
	ID           int64     // events.id
	Name         string    // events.name
	Venue        string    // events.venue
	EventDate    time.Time // events.event_date (UTC)
	TotalTickets int       // events.total_tickets
}

// EventRepo manages persistence for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo given a DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// sortColumns whitelists the sort keys accepted by ListPaged.  Keys not
// present here fall back to the primary key so that user input can
// never reach the ORDER BY clause verbatim.
var sortColumns = map[string]string{
	"id":           "id",
	"name":         "name",
	"venue":        "venue",
	"eventDate":    "event_date",
	"totalTickets": "total_tickets",
}

// CreateWithTickets inserts a new event and bulk-seeds TotalTickets
// AVAILABLE tickets for it in one transaction, upholding the invariant
// that an event's child ticket count always equals total_tickets.  The
// seeding is a single multi-row INSERT; per-row round-trips would make
// event creation O(n) queries.  On success the generated ID is
// populated on the given record.
func (r *EventRepo) CreateWithTickets(ctx context.Context, e *EventRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO events (name, venue, event_date, total_tickets) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, e.Name, e.Venue, e.EventDate.UTC().Format(dbTime), e.TotalTickets)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(`INSERT INTO tickets (event_id, status) VALUES `)
	args := make([]interface{}, 0, e.TotalTickets*2)
	for i := 0; i < e.TotalTickets; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?)")
		args = append(args, id, "AVAILABLE")
	}
	if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	e.ID = id
	return nil
}

// GetByID fetches a single event row.  It returns ErrEventNotFound when
// the id has no row.
func (r *EventRepo) GetByID(ctx context.Context, id int64) (*EventRecord, error) {
	const q = `SELECT id, name, venue, event_date, total_tickets FROM events WHERE id = ?`
	var e EventRecord
	err := r.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Name, &e.Venue, &e.EventDate, &e.TotalTickets)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListAll returns every event ordered by id.
func (r *EventRepo) ListAll(ctx context.Context) ([]EventRecord, error) {
	const q = `SELECT id, name, venue, event_date, total_tickets FROM events ORDER BY id`
	return r.queryEvents(ctx, q)
}

// ListPaged returns one page of events plus the total row count.  The
// sortKey is matched against the whitelist above; unknown keys sort by
// id.  Descending order is applied when desc is true.
func (r *EventRepo) ListPaged(ctx context.Context, offset, limit int, sortKey string, desc bool) ([]EventRecord, int64, error) {
	col, ok := sortColumns[sortKey]
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := fmt.Sprintf(`SELECT id, name, venue, event_date, total_tickets FROM events ORDER BY %s %s, id ASC LIMIT ? OFFSET ?`, col, dir)
	events, err := r.queryEvents(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListWithAvailableTickets returns events that still have at least one
// AVAILABLE ticket.  The join avoids a correlated EXISTS subquery and
// uses the (status, event_id) index on tickets.
func (r *EventRepo) ListWithAvailableTickets(ctx context.Context) ([]EventRecord, error) {
	const q = `SELECT DISTINCT e.id, e.name, e.venue, e.event_date, e.total_tickets
               FROM events e
               INNER JOIN tickets t ON t.event_id = e.id
               WHERE t.status = 'AVAILABLE'
               ORDER BY e.id`
	return r.queryEvents(ctx, q)
}

func (r *EventRepo) queryEvents(ctx context.Context, q string, args ...interface{}) ([]EventRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]EventRecord, 0)
	for rows.Next() {
		var e EventRecord
		if err := rows.Scan(&e.ID, &e.Name, &e.Venue, &e.EventDate, &e.TotalTickets); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
