// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting SQL driver errors. For example,
// ErrEventNotFound indicates that a referenced event id has no row,
// while ErrNoAvailableTickets signals that an event's inventory is
// exhausted at claim time.
package repository

import "errors"

// ErrEventNotFound is returned when an event was not located in the DB.
// Handlers should translate this into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrNoAvailableTickets is returned when a reservation attempt finds no
// ticket in AVAILABLE state for the requested event. Handlers should
// translate this into an HTTP 409 response.
var ErrNoAvailableTickets = errors.New("no available tickets")
