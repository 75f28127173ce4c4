package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-inventory/internal/handler"
	"github.com/iliyamo/event-seat-inventory/internal/middleware"
	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/venues", h.CreateVenue)
	g.POST("/events", h.CreateEvent)
}
