// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketReservedEvent is published when a ticket is successfully
// reserved.  It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type TicketReservedEvent struct {
	TicketID      int64  `json:"ticket_id"`
	EventID       int64  `json:"event_id"`
	EventName     string `json:"event_name"`
	Venue         string `json:"venue"`
	CustomerEmail string `json:"customer_email"`
	ReservedUntil string `json:"reserved_until"`
	ReservedAt    string `json:"reserved_at"`
}
