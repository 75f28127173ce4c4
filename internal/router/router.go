package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/event-seat-inventory/internal/handler"    // handlers that implement the endpoints
	"github.com/iliyamo/event-seat-inventory/internal/middleware" // JWT, role, rate limit and cache middleware
)

// RegisterRoutes registers the operational endpoints: a health check for
// load balancers and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers account creation and login under /v1/auth.
// Neither requires an existing token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterEvents registers the public browsing API.  The listing and the
// type list change only when an administrator writes, so they go through
// the response cache.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, cache *middleware.ResponseCache) {
	g := e.Group("/v1/events")
	g.GET("", h.List, cache.Middleware())
	g.GET("/types", h.Types, cache.Middleware())
	g.GET("/shows", h.Shows)
	g.GET("/:id", h.Name)
}
