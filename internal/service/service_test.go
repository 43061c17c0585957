package service

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/modex/screening-booking/internal/booking"
    "github.com/modex/screening-booking/internal/model"
    q "github.com/modex/screening-booking/internal/queue"
)

type fakeSender struct {
    events []q.BookingConfirmedEvent
    err    error
}

func (f *fakeSender) PublishBookingConfirmed(_ context.Context, ev q.BookingConfirmedEvent) error {
    f.events = append(f.events, ev)
    return f.err
}

type fakeCache struct {
    calls int
    err   error
}

func (f *fakeCache) Invalidate(context.Context) error {
    f.calls++
    return f.err
}

func sampleConfirmation() booking.Confirmation {
    start := time.Date(2025, 6, 1, 20, 30, 0, 0, time.UTC)
    return booking.Confirmation{
        Booking: model.Booking{
            ID:          9,
            ScreeningID: 4,
            CustomerID:  booking.CustomerID("Ada", "1"),
            SeatCount:   3,
            Status:      model.BookingConfirmed,
            CreatedAt:   time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
        },
        Screening:      model.Screening{ID: 4, Name: "Alien", Venue: "Rex", StartTime: start, TotalSeats: 10, AvailableSeats: 10},
        SeatsRemaining: 7,
    }
}

func TestNewBookingConfirmedEvent(t *testing.T) {
    ev := NewBookingConfirmedEvent(sampleConfirmation(), time.Now())

    _, err := uuid.Parse(ev.EventID)
    require.NoError(t, err)
    assert.Equal(t, uint64(9), ev.BookingID)
    assert.Equal(t, uint64(4), ev.ScreeningID)
    assert.Equal(t, "Alien", ev.ScreeningName)
    assert.Equal(t, "Rex", ev.Venue)
    assert.Equal(t, "2025-06-01T20:30:00Z", ev.StartTime)
    assert.Equal(t, 3, ev.SeatCount)
    assert.Equal(t, 7, ev.SeatsRemaining)
    assert.Equal(t, "2025-05-01T08:00:00Z", ev.ConfirmedAt)
}

func TestBookingEventsSwallowsPublishErrors(t *testing.T) {
    sender := &fakeSender{err: errors.New("broker down")}
    ev := NewBookingEvents(sender)
    ev.async = false

    ev.BookingCommitted(context.Background(), sampleConfirmation())
    require.Len(t, sender.events, 1)
    assert.Equal(t, uint64(9), sender.events[0].BookingID)
}

func TestListingInvalidation(t *testing.T) {
    assert.Nil(t, NewListingInvalidation(nil))

    cache := &fakeCache{err: errors.New("redis timeout")}
    l := NewListingInvalidation(cache)
    l.BookingCommitted(context.Background(), sampleConfirmation())
    l.BookingCommitted(context.Background(), sampleConfirmation())
    assert.Equal(t, 2, cache.calls)
}
