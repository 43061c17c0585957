package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/modex/screening-booking/internal/booking"
	"github.com/modex/screening-booking/internal/repository"
)

// bookingFailedPrefix starts every rejected booking message.  Clients key
// off it to tell a refused booking apart from other errors.
const bookingFailedPrefix = "Booking Failed due to concurrency or unavailability: "

// BookingHandler serves booking creation and the ledger views.
type BookingHandler struct {
	Engine     *booking.Engine
	Bookings   *repository.BookingRepo
	Screenings *repository.ScreeningRepo
}

func NewBookingHandler(e *booking.Engine, b *repository.BookingRepo, s *repository.ScreeningRepo) *BookingHandler {
	return &BookingHandler{Engine: e, Bookings: b, Screenings: s}
}

type createBookingReq struct {
	ShowID    looseInt   `json:"showId" validate:"required,gt=0"`
	UserName  string     `json:"userName" validate:"required,max=200"`
	UserPhone string     `json:"userPhone" validate:"required,max=50"`
	SeatCount leadingInt `json:"seatCount"`
}

type bookingPart struct {
	ID        uint64    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Create handles POST /api/book.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body", "code": "InvalidRequest"})
	}
	if !req.SeatCount.ok || req.SeatCount.n <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid number of seats requested.", "code": "InvalidRequest"})
	}
	req.UserName = strings.TrimSpace(req.UserName)
	req.UserPhone = strings.TrimSpace(req.UserPhone)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": bookingFailedPrefix + err.Error(), "code": "InvalidRequest"})
	}

	conf, err := h.Engine.Attempt(c.Request().Context(), booking.Request{
		ScreeningID:   uint64(req.ShowID),
		CustomerName:  req.UserName,
		CustomerPhone: req.UserPhone,
		Seats:         int(req.SeatCount.n),
	})
	if err != nil {
		return bookingFailure(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Booking of " + strconv.Itoa(conf.Booking.SeatCount) + " seats confirmed successfully!",
		"booking": bookingPart{
			ID:        conf.Booking.ID,
			Status:    string(conf.Booking.Status),
			CreatedAt: conf.Booking.CreatedAt,
		},
		"seats_remaining": conf.SeatsRemaining,
	})
}

// bookingFailure writes the response for an Engine.Attempt error.
func bookingFailure(c echo.Context, err error) error {
	code := booking.Code(err)
	body := echo.Map{"message": bookingFailedPrefix + err.Error(), "code": code}
	status := http.StatusInternalServerError
	switch code {
	case "InvalidRequest":
		status = http.StatusBadRequest
	case "NotFound":
		status = http.StatusNotFound
	case "InsufficientCapacity":
		status = http.StatusConflict
		var capErr *booking.CapacityError
		if errors.As(err, &capErr) {
			body["seats_remaining"] = capErr.Remaining
		}
	}
	if status == http.StatusInternalServerError {
		log.Printf("booking: attempt failed: %v", err)
	}
	return c.JSON(status, body)
}

// ListByCustomer handles GET /api/bookings/:userId.  The path segment is the
// customer's display name; every booking made under that name is returned.
func (h *BookingHandler) ListByCustomer(c echo.Context) error {
	name := c.Param("userId")
	// Echo hands back the raw segment when the path carried escapes it
	// could not map onto URL.Path.
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "customer name is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rows, err := h.Bookings.List(ctx, repository.BookingFilter{CustomerPrefix: booking.CustomerPrefix(name)})
	if err != nil {
		log.Printf("booking: list customer bookings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve user bookings."})
	}
	return c.JSON(http.StatusOK, rows)
}

// ListAll handles GET /api/admin/bookings.
func (h *BookingHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rows, err := h.Bookings.ListWithScreenings(ctx)
	if err != nil {
		log.Printf("booking: list all bookings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve all booking records."})
	}
	return c.JSON(http.StatusOK, rows)
}

// ListByScreening handles GET /api/shows/:id/bookings.  Along with the rows
// it reports confirmed and remaining seats so the two can be checked against
// the screening's capacity.
func (h *BookingHandler) ListByScreening(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid screening id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	s, err := h.Screenings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "screening not found"})
		}
		log.Printf("booking: load screening %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve screening bookings."})
	}
	rows, err := h.Bookings.List(ctx, repository.BookingFilter{ScreeningID: id})
	if err != nil {
		log.Printf("booking: list screening %d bookings: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve screening bookings."})
	}
	confirmed, err := h.Bookings.ConfirmedSeats(ctx, id)
	if err != nil {
		log.Printf("booking: sum screening %d seats: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve screening bookings."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show_id":         s.ID,
		"total_seats":     s.TotalSeats,
		"seats_remaining": s.AvailableSeats,
		"confirmed_seats": confirmed,
		"bookings":        rows,
	})
}
