package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    zlog "github.com/rs/zerolog/log"

    "github.com/iliyamo/event-seat-inventory/internal/seating"
)

// seatingError maps seat inventory errors to HTTP responses.  Store
// faults are logged with their cause and hidden from the client.
func seatingError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, seating.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, seating.ErrInvalidTopology):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
    case errors.Is(err, seating.ErrSeatUnavailable):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    }
    zlog.Error().Err(err).Str("path", c.Path()).Msg("request failed")
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// eventID parses the :id path parameter.
func eventID(c echo.Context) (int64, bool) {
    id, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil || id <= 0 {
        return 0, false
    }
    return id, true
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
