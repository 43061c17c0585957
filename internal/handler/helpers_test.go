package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/modex/screening-booking/internal/booking"
	"github.com/modex/screening-booking/internal/repository"
)

var (
	screeningCols = []string{"id", "name", "theatre_name", "start_time", "total_seats", "available_seats", "created_at"}
	bookingCols   = []string{"id", "show_id", "user_id", "seat_count", "status", "created_at"}
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

type fixture struct {
	e    *echo.Echo
	mock sqlmock.Sqlmock
	bh   *BookingHandler
	sh   *ScreeningHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	screenings := repository.NewScreeningRepo(db)
	bookings := repository.NewBookingRepo(db)
	engine := booking.NewEngine(booking.NewSQLStore(db, screenings, bookings))

	f := &fixture{
		e:    newEcho(),
		mock: mock,
		bh:   NewBookingHandler(engine, bookings, screenings),
		sh:   NewScreeningHandler(screenings, nil),
	}
	f.e.POST("/api/book", f.bh.Create)
	f.e.GET("/api/bookings/:userId", f.bh.ListByCustomer)
	f.e.GET("/api/admin/bookings", f.bh.ListAll)
	f.e.GET("/api/shows/:id/bookings", f.bh.ListByScreening)
	f.e.POST("/api/admin/shows", f.sh.Create)
	f.e.GET("/api/admin/shows", f.sh.ListAll)
	f.e.GET("/api/shows", f.sh.ListAvailable)
	f.e.GET("/api/shows/:id", f.sh.Get)
	return f
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func decodeInto(b []byte, v any) error { return json.Unmarshal(b, v) }
