// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// BookingConfirmedQueue is the durable queue booking events are routed to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published once per committed booking.  It carries
// enough of the screening to be logged or forwarded without a database read.
type BookingConfirmedEvent struct {
    EventID        string `json:"event_id"`
    BookingID      uint64 `json:"booking_id"`
    ScreeningID    uint64 `json:"show_id"`
    ScreeningName  string `json:"show_name"`
    Venue          string `json:"theatre_name"`
    StartTime      string `json:"start_time"`
    CustomerID     string `json:"user_id"`
    SeatCount      int    `json:"seat_count"`
    SeatsRemaining int    `json:"seats_remaining"`
    ConfirmedAt    string `json:"confirmed_at"`
}
