// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/tickethub/event-ticket-service/internal/handler"
)

// RegisterRoutes wires every endpoint of the service onto the provided
// Echo instance.  The JSON API lives under /api/v1; the health check is
// exposed at the root for load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo, events *handler.EventHandler, tickets *handler.TicketHandler) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api/v1")

	// Event read path and creation.
	api.GET("/events", events.List)
	api.GET("/events/paged", events.ListPaged)
	api.GET("/events/available", events.ListAvailable)
	api.GET("/events/:id", events.Get)
	api.POST("/events", events.Create)

	// Ticket reservation and listing.
	api.GET("/tickets/event/:eventId", tickets.ListForEvent)
	api.POST("/tickets/reserve", tickets.Reserve)
	api.GET("/tickets/customer/:email", tickets.ListForCustomer)
}
