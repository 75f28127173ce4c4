package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-inventory/internal/middleware"
    "github.com/iliyamo/event-seat-inventory/internal/model"
    "github.com/iliyamo/event-seat-inventory/internal/seating"
)

// SeatInventory is implemented by *seating.Service.
type SeatInventory interface {
    GetAvailability(ctx context.Context, eventID int64) (seating.Availability, error)
    LockSeats(ctx context.Context, eventID int64, seats model.SeatSet) bool
    BookSeats(ctx context.Context, eventID int64, userID string, seats model.SeatSet) (int, bool)
    ListUserTickets(ctx context.Context, userID string) ([]model.TicketDetail, error)
}

// SeatHandler exposes the seat inventory over HTTP.
type SeatHandler struct {
    Inventory SeatInventory
}

func NewSeatHandler(inv SeatInventory) *SeatHandler {
    return &SeatHandler{Inventory: inv}
}

// seatsReq accepts {"seats": ["A1","A2"]} or {"seats": "A1,A2"}.
type seatsReq struct {
    Seats model.SeatSet `json:"seats"`
}

// bindSeats reads the event id and seat selection.  A non-empty problem
// is the message for a 400 response.
func bindSeats(c echo.Context) (id int64, seats model.SeatSet, problem string) {
    id, ok := eventID(c)
    if !ok {
        return 0, nil, "invalid event id"
    }
    var req seatsReq
    if err := c.Bind(&req); err != nil {
        return 0, nil, "invalid body"
    }
    if len(req.Seats) == 0 {
        return 0, nil, "seats required"
    }
    return id, req.Seats, ""
}

// Availability handles GET /v1/events/:id/seats.
func (h *SeatHandler) Availability(c echo.Context) error {
    id, ok := eventID(c)
    if !ok {
        return badRequest(c, "invalid event id")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    av, err := h.Inventory.GetAvailability(ctx, id)
    if err != nil {
        return seatingError(c, err)
    }
    return c.JSON(http.StatusOK, av)
}

// Lock handles POST /v1/events/:id/locks.  The hold outlives the request;
// its expiry runs on the server's scheduler.
func (h *SeatHandler) Lock(c echo.Context) error {
    id, seats, problem := bindSeats(c)
    if problem != "" {
        return badRequest(c, problem)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if !h.Inventory.LockSeats(ctx, id, seats) {
        return c.JSON(http.StatusConflict, echo.Map{"locked": false})
    }
    return c.JSON(http.StatusOK, echo.Map{"locked": true, "seats": seats})
}

// Book handles POST /v1/events/:id/tickets for the authenticated user.
func (h *SeatHandler) Book(c echo.Context) error {
    username := middleware.Username(c)
    if username == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, seats, problem := bindSeats(c)
    if problem != "" {
        return badRequest(c, problem)
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    ticketID, ok := h.Inventory.BookSeats(ctx, id, username, seats)
    if !ok {
        return c.JSON(http.StatusConflict, echo.Map{"error": "booking failed, please retry"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"ticket_id": ticketID, "event_id": id, "seats": seats})
}

// MyTickets handles GET /v1/my-tickets.
func (h *SeatHandler) MyTickets(c echo.Context) error {
    username := middleware.Username(c)
    if username == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Inventory.ListUserTickets(ctx, username)
    if err != nil {
        return seatingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
