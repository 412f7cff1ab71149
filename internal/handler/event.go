package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tickethub/event-ticket-service/internal/model"
	"github.com/tickethub/event-ticket-service/internal/service"
)

// EventService is the slice of service.EventService the HTTP surface
// needs.  Declared here so handler tests can substitute stubs.
type EventService interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	ListEventsPaged(ctx context.Context, page, size int, sortKey string, desc bool) (*model.Page, error)
	GetEvent(ctx context.Context, id int64) (*model.Event, error)
	ListAvailableEvents(ctx context.Context) ([]model.Event, error)
	CreateEvent(ctx context.Context, e model.Event) (*model.Event, error)
}

// EventHandler exposes the event read path and event creation.
type EventHandler struct {
	svc EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc EventService) *EventHandler {
	if svc == nil {
		panic("nil service passed to NewEventHandler")
	}
	return &EventHandler{svc: svc}
}

// List handles GET /api/v1/events.  It returns all events with their
// availability counts.
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.svc.ListEvents(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err, 0)
	}
	return c.JSON(http.StatusOK, events)
}

// ListPaged handles GET /api/v1/events/paged?page=0&size=20&sort=id,desc.
func (h *EventHandler) ListPaged(c echo.Context) error {
	page := 0
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return writeError(c, http.StatusBadRequest, "Page must be a non-negative number")
		}
		page = n
	}
	size := 20
	if raw := c.QueryParam("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return writeError(c, http.StatusBadRequest, "Size must be a positive number")
		}
		size = n
	}
	sortKey, desc := parseSort(c.QueryParam("sort"))

	result, err := h.svc.ListEventsPaged(c.Request().Context(), page, size, sortKey, desc)
	if err != nil {
		return writeServiceError(c, err, 0)
	}
	return c.JSON(http.StatusOK, result)
}

// Get handles GET /api/v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return writeError(c, http.StatusBadRequest, "Event ID must be a positive number")
	}
	event, err := h.svc.GetEvent(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err, id)
	}
	return c.JSON(http.StatusOK, event)
}

// ListAvailable handles GET /api/v1/events/available.  It returns the
// events that still have at least one available ticket.
func (h *EventHandler) ListAvailable(c echo.Context) error {
	events, err := h.svc.ListAvailableEvents(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err, 0)
	}
	return c.JSON(http.StatusOK, events)
}

// Create handles POST /api/v1/events.  Constraint violations are
// reported together in one 400 message before any side effect.
func (h *EventHandler) Create(c echo.Context) error {
	var body model.Event
	if err := c.Bind(&body); err != nil {
		return writeError(c, http.StatusBadRequest, "Invalid request body")
	}
	created, err := h.svc.CreateEvent(c.Request().Context(), body)
	if err != nil {
		return writeServiceError(c, err, 0)
	}
	return c.JSON(http.StatusCreated, created)
}

// parseSort splits a Spring-style "key,dir" sort parameter.  An empty
// or unknown direction sorts ascending; the key whitelist lives in the
// repository.
func parseSort(raw string) (key string, desc bool) {
	if raw == "" {
		return "id", false
	}
	parts := strings.SplitN(raw, ",", 2)
	key = strings.TrimSpace(parts[0])
	if key == "" {
		key = "id"
	}
	if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc") {
		desc = true
	}
	return key, desc
}

// compile-time check that the concrete service satisfies the interface
var _ EventService = (*service.EventService)(nil)
