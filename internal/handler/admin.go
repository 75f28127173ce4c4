package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/event-seat-inventory/internal/model"
    "github.com/iliyamo/event-seat-inventory/internal/repository"
    "github.com/iliyamo/event-seat-inventory/internal/seating"
)

type VenueCreator interface {
    Create(ctx context.Context, v *model.Venue) error
}

type EventCreator interface {
    Create(ctx context.Context, e *model.Event) error
}

// Purger drops cached catalog responses after a write.
type Purger interface {
    Purge(ctx context.Context) error
}

// AdminHandler creates venues and events.  Routes are restricted to the
// ADMIN role by the router.
type AdminHandler struct {
    Venues VenueCreator
    Events EventCreator
    Cache  Purger
    Log    zerolog.Logger
}

func NewAdminHandler(venues VenueCreator, events EventCreator, cache Purger, log zerolog.Logger) *AdminHandler {
    return &AdminHandler{Venues: venues, Events: events, Cache: cache, Log: log}
}

type createVenueReq struct {
    Name     string        `json:"name"`
    Grid     string        `json:"grid"`
    Rows     int           `json:"rows"`
    Columns  int           `json:"columns"`
    Excluded model.SeatSet `json:"excluded_seats"`
}

type createEventReq struct {
    VenueID     int64  `json:"venue_id"`
    Name        string `json:"name"`
    Type        string `json:"type"`
    Description string `json:"description"`
    Image       string `json:"image"`
    Date        string `json:"date"`       // YYYY-MM-DD
    StartTime   string `json:"start_time"` // HH:MM or HH:MM:SS
    EndTime     string `json:"end_time"`
}

// CreateVenue handles POST /v1/admin/venues.  The grid is given either as
// "4x5" or as rows and columns.
func (h *AdminHandler) CreateVenue(c echo.Context) error {
    var req createVenueReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    if strings.TrimSpace(req.Name) == "" {
        return badRequest(c, "name is required")
    }
    if req.Grid != "" {
        rows, cols, err := seating.ParseGrid(req.Grid)
        if err != nil {
            return seatingError(c, err)
        }
        req.Rows, req.Columns = rows, cols
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    v := model.Venue{Name: req.Name, Rows: req.Rows, Columns: req.Columns, Excluded: req.Excluded}
    if err := h.Venues.Create(ctx, &v); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "venue already exists"})
        }
        return seatingError(c, err)
    }
    h.purge(ctx)
    return c.JSON(http.StatusCreated, echo.Map{
        "id":             v.ID,
        "name":           v.Name,
        "grid":           seating.FormatGrid(v.Rows, v.Columns),
        "excluded_seats": v.Excluded,
    })
}

// CreateEvent handles POST /v1/admin/events.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
    var req createEventReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    if req.VenueID <= 0 || strings.TrimSpace(req.Name) == "" {
        return badRequest(c, "venue_id and name are required")
    }
    date, err := time.Parse("2006-01-02", req.Date)
    if err != nil {
        return badRequest(c, "date must be YYYY-MM-DD")
    }
    start, okStart := clockTime(req.StartTime)
    end, okEnd := clockTime(req.EndTime)
    if !okStart || !okEnd {
        return badRequest(c, "start_time/end_time must be HH:MM")
    }
    if end <= start {
        return badRequest(c, "end_time must be after start_time")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    e := model.Event{
        VenueID:     req.VenueID,
        Name:        strings.TrimSpace(req.Name),
        Type:        strings.TrimSpace(req.Type),
        Description: req.Description,
        Image:       req.Image,
        Date:        date,
        StartTime:   start,
        EndTime:     end,
    }
    if err := h.Events.Create(ctx, &e); err != nil {
        if errors.Is(err, seating.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
        }
        return seatingError(c, err)
    }
    h.purge(ctx)
    return c.JSON(http.StatusCreated, e)
}

func (h *AdminHandler) purge(ctx context.Context) {
    if h.Cache == nil {
        return
    }
    if err := h.Cache.Purge(ctx); err != nil {
        h.Log.Warn().Err(err).Msg("catalog cache purge failed")
    }
}

// clockTime normalizes "HH:MM" or "HH:MM:SS" to "HH:MM:SS".  The fixed
// width keeps lexical comparison in time order.
func clockTime(s string) (string, bool) {
    s = strings.TrimSpace(s)
    for _, layout := range []string{"15:04:05", "15:04"} {
        if t, err := time.Parse(layout, s); err == nil {
            return t.Format("15:04:05"), true
        }
    }
    return "", false
}
