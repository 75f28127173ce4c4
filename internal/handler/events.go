package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-inventory/internal/clock"
    "github.com/iliyamo/event-seat-inventory/internal/model"
)

// Catalog is the read side of the event repository used for browsing.
type Catalog interface {
    ListGrouped(ctx context.Context, eventType string, today time.Time) ([]model.EventGroup, error)
    Shows(ctx context.Context, name string, today time.Time) ([]model.Event, error)
    Types(ctx context.Context, today time.Time) ([]string, error)
    Name(ctx context.Context, id int64) (string, error)
}

// EventHandler serves the public event listing.  None of its routes
// require authentication.
type EventHandler struct {
    Events Catalog
    Clock  clock.Clock
}

func NewEventHandler(events Catalog, clk clock.Clock) *EventHandler {
    return &EventHandler{Events: events, Clock: clk}
}

func (h *EventHandler) today() time.Time {
    now := h.Clock.Now().UTC()
    return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// List handles GET /v1/events?type=.  Upcoming events are grouped by name.
func (h *EventHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    groups, err := h.Events.ListGrouped(ctx, strings.TrimSpace(c.QueryParam("type")), h.today())
    if err != nil {
        return seatingError(c, err)
    }
    if groups == nil {
        groups = []model.EventGroup{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": groups})
}

// Types handles GET /v1/events/types.
func (h *EventHandler) Types(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    types, err := h.Events.Types(ctx, h.today())
    if err != nil {
        return seatingError(c, err)
    }
    if types == nil {
        types = []string{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": types})
}

// Shows handles GET /v1/events/shows?name=.
func (h *EventHandler) Shows(c echo.Context) error {
    name := strings.TrimSpace(c.QueryParam("name"))
    if name == "" {
        return badRequest(c, "name is required")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    shows, err := h.Events.Shows(ctx, name, h.today())
    if err != nil {
        return seatingError(c, err)
    }
    if shows == nil {
        shows = []model.Event{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": shows})
}

// Name handles GET /v1/events/:id.
func (h *EventHandler) Name(c echo.Context) error {
    id, ok := eventID(c)
    if !ok {
        return badRequest(c, "invalid event id")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    name, err := h.Events.Name(ctx, id)
    if err != nil {
        return seatingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "name": name})
}
