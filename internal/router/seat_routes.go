package router

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-seat-inventory/internal/handler"
	"github.com/iliyamo/event-seat-inventory/internal/middleware"
	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// RegisterSeats registers the seat inventory endpoints.  Availability and
// locking are open to guests, locking behind the per-client token bucket.
// Buying tickets and listing them require a valid JWT.
func RegisterSeats(e *echo.Echo, h *handler.SeatHandler, bucket *middleware.TokenBucket, jwtSecret string, log zerolog.Logger) {
	e.GET("/v1/events/:id/seats", h.Availability)
	e.POST("/v1/events/:id/locks", h.Lock, bucket.Middleware(log))

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	g.POST("/events/:id/tickets", h.Book)
	g.GET("/my-tickets", h.MyTickets)
}
