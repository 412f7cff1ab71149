package handler

import (
	"context"
	"net/http"
	"net/mail"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tickethub/event-ticket-service/internal/model"
	"github.com/tickethub/event-ticket-service/internal/service"
)

// TicketService is the slice of service.TicketService the HTTP surface
// needs.
type TicketService interface {
	Reserve(ctx context.Context, eventID int64, customerEmail string) (*model.Ticket, error)
	ListAvailableTickets(ctx context.Context, eventID int64) ([]model.Ticket, error)
	ListByCustomer(ctx context.Context, email string) ([]model.Ticket, error)
}

// emailPattern guards the customer listing path.  It is stricter than
// the reservation check: a path segment that is not clearly an email is
// rejected before the store is queried.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_+&*-]+(?:\.[a-zA-Z0-9_+&*-]+)*@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,7}$`)

// validEmail reports whether s parses as an RFC 5322 address.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// TicketHandler exposes ticket reservation and listing.
type TicketHandler struct {
	svc TicketService
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(svc TicketService) *TicketHandler {
	if svc == nil {
		panic("nil service passed to NewTicketHandler")
	}
	return &TicketHandler{svc: svc}
}

// ListForEvent handles GET /api/v1/tickets/event/:eventId.  It returns
// the currently available tickets for the event.
func (h *TicketHandler) ListForEvent(c echo.Context) error {
	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		return writeError(c, http.StatusBadRequest, "Event ID must be a positive number")
	}
	tickets, err := h.svc.ListAvailableTickets(c.Request().Context(), eventID)
	if err != nil {
		return writeServiceError(c, err, eventID)
	}
	return c.JSON(http.StatusOK, tickets)
}

// reserveRequest is the JSON body fallback for POST /tickets/reserve.
// Query parameters take precedence when present.
type reserveRequest struct {
	EventID       int64  `json:"eventId"`
	CustomerEmail string `json:"customerEmail"`
}

// Reserve handles POST /api/v1/tickets/reserve?eventId=..&customerEmail=..
// All input violations are collected and reported in one 400 response
// before the service is invoked.
func (h *TicketHandler) Reserve(c echo.Context) error {
	eventID, customerEmail, violations := bindReserveInput(c)
	if len(violations) > 0 {
		return writeError(c, http.StatusBadRequest, strings.Join(violations, ", "))
	}

	ticket, err := h.svc.Reserve(c.Request().Context(), eventID, customerEmail)
	if err != nil {
		return writeServiceError(c, err, eventID)
	}
	return c.JSON(http.StatusCreated, ticket)
}

// ListForCustomer handles GET /api/v1/tickets/customer/:email.
func (h *TicketHandler) ListForCustomer(c echo.Context) error {
	email := c.Param("email")
	if strings.TrimSpace(email) == "" {
		return writeError(c, http.StatusBadRequest, "Email is required")
	}
	if !emailPattern.MatchString(email) {
		return writeError(c, http.StatusBadRequest, "Invalid email format")
	}
	tickets, err := h.svc.ListByCustomer(c.Request().Context(), email)
	if err != nil {
		return writeServiceError(c, err, 0)
	}
	return c.JSON(http.StatusOK, tickets)
}

// bindReserveInput reads eventId and customerEmail from query
// parameters, falling back to a JSON body, and validates both.
func bindReserveInput(c echo.Context) (eventID int64, customerEmail string, violations []string) {
	rawID := c.QueryParam("eventId")
	customerEmail = c.QueryParam("customerEmail")
	if rawID == "" && customerEmail == "" {
		var body reserveRequest
		if err := c.Bind(&body); err == nil {
			eventID = body.EventID
			customerEmail = body.CustomerEmail
		}
	} else if rawID != "" {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			violations = append(violations, "Event ID must be positive")
		} else {
			eventID = id
		}
	}

	if len(violations) == 0 && eventID <= 0 {
		violations = append(violations, "Event ID must be positive")
	}
	if strings.TrimSpace(customerEmail) == "" {
		violations = append(violations, "Email is required")
	} else if !validEmail(customerEmail) {
		violations = append(violations, "Invalid email format")
	}
	return eventID, customerEmail, violations
}

// compile-time check that the concrete service satisfies the interface
var _ TicketService = (*service.TicketService)(nil)
