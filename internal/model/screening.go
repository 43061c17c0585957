package model

import "time"

// Screening is a scheduled showing of a movie at a venue.  The JSON names
// follow the shows table so existing clients keep working.
//
// Fields:
//  ID             – primary key identifier, immutable.
//  Name           – movie title shown to customers.
//  Venue          – theatre name.
//  StartTime      – scheduled start, always UTC.
//  TotalSeats     – capacity at creation, never changes.
//  AvailableSeats – live counter, only ever decreased by a booking commit.
//  CreatedAt      – creation timestamp.
type Screening struct {
    ID             uint64    `json:"id"`              // shows.id
    Name           string    `json:"name"`            // shows.name
    Venue          string    `json:"theatre_name"`    // shows.theatre_name
    StartTime      time.Time `json:"start_time"`      // shows.start_time
    TotalSeats     int       `json:"total_seats"`     // shows.total_seats
    AvailableSeats int       `json:"available_seats"` // shows.available_seats
    CreatedAt      time.Time `json:"created_at"`      // shows.created_at
}

// SoldOut reports whether no seats remain.
func (s Screening) SoldOut() bool { return s.AvailableSeats <= 0 }
