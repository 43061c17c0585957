package model

import "time"

// BookingStatus is the outcome recorded on a booking row.
type BookingStatus string

const (
    BookingPending   BookingStatus = "PENDING"
    BookingConfirmed BookingStatus = "CONFIRMED"
    BookingFailed    BookingStatus = "FAILED"
)

// Valid reports whether s is one of the statuses the bookings table accepts.
func (s BookingStatus) Valid() bool {
    switch s {
    case BookingPending, BookingConfirmed, BookingFailed:
        return true
    }
    return false
}

// Booking is one ledger row: SeatCount seats reserved against ScreeningID
// by the customer identified by CustomerID.  Rows are written once and
// never updated.
type Booking struct {
    ID          uint64        `json:"id"`         // bookings.id
    ScreeningID uint64        `json:"show_id"`    // bookings.show_id
    CustomerID  string        `json:"user_id"`    // bookings.user_id
    SeatCount   int           `json:"seat_count"` // bookings.seat_count
    Status      BookingStatus `json:"status"`     // bookings.status
    CreatedAt   time.Time     `json:"created_at"` // bookings.created_at
}

// BookingReport is a booking joined with the screening it belongs to, used
// by the admin listing.
type BookingReport struct {
    ID            uint64        `json:"id"`
    ScreeningID   uint64        `json:"show_id"`
    ScreeningName string        `json:"show_name"`
    Venue         string        `json:"theatre_name"`
    CustomerID    string        `json:"user_id"`
    SeatCount     int           `json:"seat_count"`
    Status        BookingStatus `json:"status"`
    CreatedAt     time.Time     `json:"created_at"`
}
