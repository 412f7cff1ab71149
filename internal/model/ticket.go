package model

import "time"

// Ticket status values.  A ticket is seeded AVAILABLE, moves to
// RESERVED under a successful claim and back to AVAILABLE when the
// reservation expires.  SOLD exists in the schema for confirmed
// purchases; the confirmation transition lives outside this service.
const (
	StatusAvailable = "AVAILABLE"
	StatusReserved  = "RESERVED"
	StatusSold      = "SOLD"
)

// Ticket is one seat within an event's inventory.  CustomerEmail and
// ReservedUntil are set only while the ticket is RESERVED.
type Ticket struct {
	ID            int64      `json:"id"`                      // tickets.id
	EventID       int64      `json:"eventId"`                 // tickets.event_id
	Status        string     `json:"status"`                  // tickets.status
	CustomerEmail *string    `json:"customerEmail,omitempty"` // tickets.customer_email (nullable)
	ReservedUntil *time.Time `json:"reservedUntil,omitempty"` // tickets.reserved_until (nullable)
	CreatedAt     time.Time  `json:"createdAt"`               // tickets.created_at
}
