package model

import "time"

// Event represents a scheduled performance at a venue with a fixed
// ticket inventory.  The inventory is seeded as tickets when the event
// is created and TotalTickets is immutable afterwards.
// AvailableTickets is always derived from the tickets table, never
// persisted on the event row.
type Event struct {
	ID               int64     `json:"id"`               // events.id
	Name             string    `json:"name"`             // events.name
	Venue            string    `json:"venue"`            // events.venue
	EventDate        time.Time `json:"eventDate"`        // events.event_date
	TotalTickets     int       `json:"totalTickets"`     // events.total_tickets
	AvailableTickets int       `json:"availableTickets"` // derived, not a column
}

// Page wraps a single page of events together with paging metadata.
type Page struct {
	Content       []Event `json:"content"`
	Page          int     `json:"page"`
	Size          int     `json:"size"`
	TotalElements int64   `json:"totalElements"`
	TotalPages    int     `json:"totalPages"`
}
