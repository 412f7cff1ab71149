package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickethub/event-ticket-service/internal/lock"
	"github.com/tickethub/event-ticket-service/internal/model"
	"github.com/tickethub/event-ticket-service/internal/repository"
)

type stubTicketService struct {
	reserve       func(ctx context.Context, eventID int64, customerEmail string) (*model.Ticket, error)
	listAvailable func(ctx context.Context, eventID int64) ([]model.Ticket, error)
	listCustomer  func(ctx context.Context, email string) ([]model.Ticket, error)
}

func (s *stubTicketService) Reserve(ctx context.Context, eventID int64, customerEmail string) (*model.Ticket, error) {
	return s.reserve(ctx, eventID, customerEmail)
}

func (s *stubTicketService) ListAvailableTickets(ctx context.Context, eventID int64) ([]model.Ticket, error) {
	return s.listAvailable(ctx, eventID)
}

func (s *stubTicketService) ListByCustomer(ctx context.Context, email string) ([]model.Ticket, error) {
	return s.listCustomer(ctx, email)
}

func reservedTicket(eventID int64, email string) *model.Ticket {
	until := time.Now().Add(10 * time.Minute).UTC()
	return &model.Ticket{
		ID:            1,
		EventID:       eventID,
		Status:        model.StatusReserved,
		CustomerEmail: &email,
		ReservedUntil: &until,
	}
}

func TestReserveViaQueryParams(t *testing.T) {
	var gotID int64
	var gotEmail string
	h := NewTicketHandler(&stubTicketService{
		reserve: func(_ context.Context, eventID int64, email string) (*model.Ticket, error) {
			gotID, gotEmail = eventID, email
			return reservedTicket(eventID, email), nil
		},
	})

	c, rec := newContext(t, http.MethodPost, "/api/v1/tickets/reserve?eventId=5&customerEmail=a@x.com", "")
	require.NoError(t, h.Reserve(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(5), gotID)
	assert.Equal(t, "a@x.com", gotEmail)

	var got model.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.StatusReserved, got.Status)
	require.NotNil(t, got.ReservedUntil)
}

func TestReserveViaJSONBody(t *testing.T) {
	var gotID int64
	h := NewTicketHandler(&stubTicketService{
		reserve: func(_ context.Context, eventID int64, email string) (*model.Ticket, error) {
			gotID = eventID
			return reservedTicket(eventID, email), nil
		},
	})

	c, rec := newContext(t, http.MethodPost, "/api/v1/tickets/reserve", `{"eventId":9,"customerEmail":"b@x.com"}`)
	require.NoError(t, h.Reserve(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(9), gotID)
}

func TestReserveInputValidation(t *testing.T) {
	invoked := false
	h := NewTicketHandler(&stubTicketService{
		reserve: func(_ context.Context, eventID int64, email string) (*model.Ticket, error) {
			invoked = true
			return reservedTicket(eventID, email), nil
		},
	})

	tests := []struct {
		name    string
		target  string
		message string
	}{
		{"missing event id", "/api/v1/tickets/reserve?customerEmail=a@x.com", "Event ID must be positive"},
		{"zero event id", "/api/v1/tickets/reserve?eventId=0&customerEmail=a@x.com", "Event ID must be positive"},
		{"garbage event id", "/api/v1/tickets/reserve?eventId=abc&customerEmail=a@x.com", "Event ID must be positive"},
		{"missing email", "/api/v1/tickets/reserve?eventId=5", "Email is required"},
		{"bad email", "/api/v1/tickets/reserve?eventId=5&customerEmail=not-an-email", "Invalid email format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(t, http.MethodPost, tt.target, "")
			require.NoError(t, h.Reserve(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeError(t, rec).Message, tt.message)
		})
	}
	assert.False(t, invoked, "service must not run on invalid input")
}

func TestReserveCollectsAllViolations(t *testing.T) {
	h := NewTicketHandler(&stubTicketService{})

	c, rec := newContext(t, http.MethodPost, "/api/v1/tickets/reserve?eventId=0&customerEmail=bogus", "")
	require.NoError(t, h.Reserve(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	msg := decodeError(t, rec).Message
	assert.Contains(t, msg, "Event ID must be positive")
	assert.Contains(t, msg, "Invalid email format")
}

func TestReserveDomainErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", repository.ErrEventNotFound, http.StatusNotFound, "Event not found with id: 5"},
		{"sold out", repository.ErrNoAvailableTickets, http.StatusConflict, "No tickets available for event with id: 5"},
		{"lock busy", lock.ErrNotAcquired, http.StatusServiceUnavailable, "Could not acquire reservation lock for event with id: 5, please retry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTicketHandler(&stubTicketService{
				reserve: func(context.Context, int64, string) (*model.Ticket, error) { return nil, tt.err },
			})
			c, rec := newContext(t, http.MethodPost, "/api/v1/tickets/reserve?eventId=5&customerEmail=a@x.com", "")
			require.NoError(t, h.Reserve(c))
			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestListForEvent(t *testing.T) {
	h := NewTicketHandler(&stubTicketService{
		listAvailable: func(_ context.Context, eventID int64) ([]model.Ticket, error) {
			if eventID != 3 {
				return nil, repository.ErrEventNotFound
			}
			return []model.Ticket{{ID: 1, EventID: 3, Status: model.StatusAvailable}}, nil
		},
	})

	t.Run("ok", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/tickets/event/3", "")
		c.SetParamNames("eventId")
		c.SetParamValues("3")
		require.NoError(t, h.ListForEvent(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		var got []model.Ticket
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, model.StatusAvailable, got[0].Status)
	})

	t.Run("unknown event", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/tickets/event/8", "")
		c.SetParamNames("eventId")
		c.SetParamValues("8")
		require.NoError(t, h.ListForEvent(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/tickets/event/x", "")
		c.SetParamNames("eventId")
		c.SetParamValues("x")
		require.NoError(t, h.ListForEvent(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListForCustomer(t *testing.T) {
	h := NewTicketHandler(&stubTicketService{
		listCustomer: func(_ context.Context, email string) ([]model.Ticket, error) {
			return []model.Ticket{*reservedTicket(1, email)}, nil
		},
	})

	t.Run("ok", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/tickets/customer/a@x.com", "")
		c.SetParamNames("email")
		c.SetParamValues("a@x.com")
		require.NoError(t, h.ListForCustomer(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("strict format", func(t *testing.T) {
		for _, raw := range []string{"a@x", "plainaddress", "a b@x.com"} {
			c, rec := newContext(t, http.MethodGet, "/api/v1/tickets/customer/"+url.PathEscape(raw), "")
			c.SetParamNames("email")
			c.SetParamValues(raw)
			require.NoError(t, h.ListForCustomer(c))
			assert.Equalf(t, http.StatusBadRequest, rec.Code, "email=%q", raw)
			assert.Equal(t, "Invalid email format", decodeError(t, rec).Message)
		}
	})
}
