package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) expectLock(id uint64, total, available int) {
	now := time.Date(2025, 3, 1, 19, 30, 0, 0, time.UTC)
	f.mock.ExpectQuery(`SELECT available_seats FROM shows WHERE id = \?`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"available_seats"}).AddRow(available))
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`SELECT .+ FROM shows WHERE id = \? FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(screeningCols).AddRow(id, "Dune", "Odeon", now, total, available, now))
}

func (f *fixture) expectCommittedBooking(screeningID uint64, available, seats int, bookingID int64) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.expectLock(screeningID, available, available)
	f.mock.ExpectExec(`UPDATE shows SET available_seats`).
		WithArgs(seats, screeningID, seats).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs(screeningID, "Name: Ada | Phone: 555", seats, "CONFIRMED").
		WillReturnResult(sqlmock.NewResult(bookingID, 1))
	f.mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \?`).
		WithArgs(bookingID).
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(bookingID, screeningID, "Name: Ada | Phone: 555", seats, "CONFIRMED", created))
	f.mock.ExpectCommit()
}

func TestCreateBookingConfirms(t *testing.T) {
	f := newFixture(t)
	f.expectCommittedBooking(3, 5, 3, 11)

	rec := serve(f.e, http.MethodPost, "/api/book", `{"showId":3,"userName":" Ada ","userPhone":"555","seatCount":"3"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "Booking of 3 seats confirmed successfully!", body["message"])
	assert.Equal(t, float64(2), body["seats_remaining"])
	bk := body["booking"].(map[string]any)
	assert.Equal(t, float64(11), bk["id"])
	assert.Equal(t, "CONFIRMED", bk["status"])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateBookingTruncatesSeatCountLikeParseInt(t *testing.T) {
	for _, seats := range []string{`3.5`, `"3.9"`, `" 3 seats"`} {
		t.Run(seats, func(t *testing.T) {
			f := newFixture(t)
			f.expectCommittedBooking(3, 5, 3, 12)

			rec := serve(f.e, http.MethodPost, "/api/book", `{"showId":3,"userName":"Ada","userPhone":"555","seatCount":`+seats+`}`)

			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			assert.Equal(t, "Booking of 3 seats confirmed successfully!", decodeMap(t, rec)["message"])
			assert.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestCreateBookingConflictReportsRemaining(t *testing.T) {
	f := newFixture(t)
	f.expectLock(3, 5, 2)
	f.mock.ExpectRollback()

	rec := serve(f.e, http.MethodPost, "/api/book", `{"showId":3,"userName":"Ada","userPhone":"555","seatCount":3}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "Booking Failed due to concurrency or unavailability: Booking Failed: Only 2 seats remaining. Requested: 3.", body["message"])
	assert.Equal(t, "InsufficientCapacity", body["code"])
	assert.Equal(t, float64(2), body["seats_remaining"])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateBookingRejectsBadSeatCounts(t *testing.T) {
	f := newFixture(t)
	for _, seats := range []string{`0`, `-2`, `0.4`, `""`, `null`, `"abc"`, `"two"`, `true`, `{}`, `[3]`, `1e12`} {
		rec := serve(f.e, http.MethodPost, "/api/book", `{"showId":3,"userName":"Ada","userPhone":"555","seatCount":`+seats+`}`)
		require.Equal(t, http.StatusBadRequest, rec.Code, seats)
		body := decodeMap(t, rec)
		assert.Equal(t, "Invalid number of seats requested.", body["message"], seats)
		assert.Equal(t, "InvalidRequest", body["code"], seats)
	}
	rec := serve(f.e, http.MethodPost, "/api/book", `{"showId":3,"userName":"Ada","userPhone":"555"}`)
	assert.Equal(t, "Invalid number of seats requested.", decodeMap(t, rec)["message"])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateBookingRequiresCustomerFields(t *testing.T) {
	f := newFixture(t)
	rec := serve(f.e, http.MethodPost, "/api/book", `{"showId":3,"userName":"  ","userPhone":"555","seatCount":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "InvalidRequest", body["code"])
	assert.Contains(t, body["message"], "userName is required")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateBookingUnknownScreening(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(`SELECT available_seats FROM shows WHERE id = \?`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	rec := serve(f.e, http.MethodPost, "/api/book", `{"showId":99,"userName":"Ada","userPhone":"555","seatCount":1}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", decodeMap(t, rec)["code"])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateBookingStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(`SELECT available_seats FROM shows WHERE id = \?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"available_seats"}).AddRow(5))
	f.mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	rec := serve(f.e, http.MethodPost, "/api/book", `{"showId":3,"userName":"Ada","userPhone":"555","seatCount":1}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "StoreFailure", body["code"])
	assert.Contains(t, body["message"], "Booking Failed due to concurrency or unavailability: ")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestListByCustomerDecodesName(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.mock.ExpectQuery(`SELECT .+ FROM bookings WHERE user_id LIKE \? ORDER BY created_at DESC`).
		WithArgs("Name: Ada Lovelace%").
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(2, 3, "Name: Ada Lovelace | Phone: 555", 1, "CONFIRMED", created))

	rec := serve(f.e, http.MethodGet, "/api/bookings/Ada%20Lovelace", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Name: Ada Lovelace | Phone: 555", rows[0]["user_id"])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestListByCustomerEscapesWildcards(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(`SELECT .+ FROM bookings WHERE user_id LIKE \?`).
		WithArgs(`Name: 100\% A\_B%`).
		WillReturnRows(sqlmock.NewRows(bookingCols))

	rec := serve(f.e, http.MethodGet, "/api/bookings/100%25%20A_B", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestListAllBookingsJoinsScreening(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.mock.ExpectQuery(`FROM bookings b\s+JOIN shows s`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "show_id", "name", "theatre_name", "user_id", "seat_count", "status", "created_at"}).
			AddRow(4, 3, "Dune", "Odeon", "Name: Ada | Phone: 555", 2, "CONFIRMED", created))

	rec := serve(f.e, http.MethodGet, "/api/admin/bookings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Dune", rows[0]["show_name"])
	assert.Equal(t, "Odeon", rows[0]["theatre_name"])
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestListAllBookingsStoreError(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(`FROM bookings b`).WillReturnError(errors.New("down"))
	rec := serve(f.e, http.MethodGet, "/api/admin/bookings", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to retrieve all booking records.", decodeMap(t, rec)["message"])
}

func TestListByScreeningReportsSeatTotals(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 3, 1, 19, 30, 0, 0, time.UTC)
	f.mock.ExpectQuery(`SELECT .+ FROM shows WHERE id = \?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(screeningCols).AddRow(3, "Dune", "Odeon", now, 10, 4, now))
	f.mock.ExpectQuery(`SELECT .+ FROM bookings WHERE show_id = \?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(8, 3, "Name: Bo | Phone: 1", 6, "CONFIRMED", now))
	f.mock.ExpectQuery(`SELECT COALESCE\(SUM\(seat_count\), 0\) FROM bookings`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(6))

	rec := serve(f.e, http.MethodGet, "/api/shows/3/bookings", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, float64(10), body["total_seats"])
	assert.Equal(t, float64(4), body["seats_remaining"])
	assert.Equal(t, float64(6), body["confirmed_seats"])
	assert.Len(t, body["bookings"], 1)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestListByScreeningValidatesID(t *testing.T) {
	f := newFixture(t)
	rec := serve(f.e, http.MethodGet, "/api/shows/abc/bookings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
