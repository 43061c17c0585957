package service

import (
    "context"
    "log"

    "github.com/modex/screening-booking/internal/booking"
)

// Invalidator drops cached responses.  middleware.CacheInvalidator is the
// Redis implementation.
type Invalidator interface {
    Invalidate(ctx context.Context) error
}

// ListingInvalidation clears the screening listing cache after every commit
// so the next GET /api/shows reflects the new seat count.
type ListingInvalidation struct {
    cache Invalidator
}

// NewListingInvalidation returns a commit listener, or nil when cache is nil
// so callers can pass the result to booking.WithListener unconditionally.
func NewListingInvalidation(cache Invalidator) booking.CommitListener {
    if cache == nil {
        return nil
    }
    return &ListingInvalidation{cache: cache}
}

// BookingCommitted implements booking.CommitListener.
func (l *ListingInvalidation) BookingCommitted(ctx context.Context, c booking.Confirmation) {
    if err := l.cache.Invalidate(ctx); err != nil {
        log.Printf("booking: cache invalidation after booking=%d failed: %v", c.Booking.ID, err)
    }
}
