package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tickethub/event-ticket-service/internal/lock"
	"github.com/tickethub/event-ticket-service/internal/repository"
	"github.com/tickethub/event-ticket-service/internal/service"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// writeError renders the standard error body.  The error label is the
// canonical reason phrase for the status code ("Not Found", "Conflict",
// ...).
func writeError(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request().URL.Path,
		Timestamp: time.Now().UTC(),
	})
}

// writeServiceError maps domain errors to status codes.  eventID is
// used to compose the not-found and conflict messages; pass 0 when the
// failing operation has no event in scope.
func writeServiceError(c echo.Context, err error, eventID int64) error {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return writeError(c, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, repository.ErrEventNotFound):
		return writeError(c, http.StatusNotFound, fmt.Sprintf("Event not found with id: %d", eventID))
	case errors.Is(err, repository.ErrNoAvailableTickets):
		return writeError(c, http.StatusConflict, fmt.Sprintf("No tickets available for event with id: %d", eventID))
	case errors.Is(err, lock.ErrNotAcquired):
		return writeError(c, http.StatusServiceUnavailable, fmt.Sprintf("Could not acquire reservation lock for event with id: %d, please retry", eventID))
	default:
		log.Printf("handler: unexpected error on %s: %v", c.Request().URL.Path, err)
		return writeError(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
	}
}
