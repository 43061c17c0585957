// Package router registers the HTTP routes on an Echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/modex/screening-booking/internal/config"
	"github.com/modex/screening-booking/internal/handler"
	"github.com/modex/screening-booking/internal/middleware"
	"github.com/modex/screening-booking/internal/utils"
)

// RegisterRoutes registers the banner, liveness and readiness endpoints.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterPublic registers the customer-facing API under /api.  cache wraps
// the available-screenings listing and limit guards booking creation; either
// may be nil.
func RegisterPublic(e *echo.Echo, s *handler.ScreeningHandler, b *handler.BookingHandler, cache, limit echo.MiddlewareFunc) {
	g := e.Group("/api")
	g.GET("/shows", s.ListAvailable, only(cache)...)
	g.GET("/shows/:id", s.Get)
	g.GET("/shows/:id/bookings", b.ListByScreening)
	g.POST("/book", b.Create, only(limit)...)
	g.GET("/bookings/:userId", b.ListByCustomer)
}

// RegisterAdmin registers the admin API under /api/admin.  With auth enabled
// every route requires an ADMIN bearer token; otherwise the routes are open.
func RegisterAdmin(e *echo.Echo, s *handler.ScreeningHandler, b *handler.BookingHandler, auth config.AuthConfig) {
	var mws []echo.MiddlewareFunc
	if auth.Enabled {
		mws = append(mws, middleware.JWTAuth(auth.JWTSecret), middleware.RequireRole(utils.RoleAdmin))
	}
	g := e.Group("/api/admin", mws...)
	g.POST("/shows", s.Create)
	g.GET("/shows", s.ListAll)
	g.GET("/bookings", b.ListAll)
}

// RegisterChat registers POST /api/chat.
func RegisterChat(e *echo.Echo, h *handler.ChatHandler, limit echo.MiddlewareFunc) {
	e.POST("/api/chat", h.Chat, only(limit)...)
}

// RegisterAuth registers the mock login.  It is only mounted when auth is
// enabled since tokens are useless otherwise.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/api/auth/login", a.Login)
}

func only(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
