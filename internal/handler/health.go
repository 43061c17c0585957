package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Banner is the plain-text body served at the root path.
const Banner = "Modex Booking API is running! Access the API via /api/... endpoints."

// Root writes Banner.
func Root(c echo.Context) error { return c.String(http.StatusOK, Banner) }

// Health is used by load balancers to check the process is up.
func Health(c echo.Context) error { return c.String(http.StatusOK, "ok") }

// Ready reports 503 until the database answers a ping.
func Ready(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	}
}
