// Package booking implements the seat booking transaction: validating a
// request, locking one screening's inventory row, deducting seats and
// appending a CONFIRMED ledger row as a single all-or-nothing commit.
package booking

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/modex/screening-booking/internal/model"
	"github.com/modex/screening-booking/internal/repository"
)

// Request is one customer's attempt to book Seats seats.
type Request struct {
	ScreeningID   uint64
	CustomerName  string
	CustomerPhone string
	Seats         int
}

// Confirmation describes a committed booking.
type Confirmation struct {
	Booking        model.Booking
	Screening      model.Screening // row as read under the lock, before the decrement
	SeatsRemaining int
}

// CommitListener is told about every committed booking after the commit is
// durable.  Listeners cannot fail the booking.
type CommitListener interface {
	BookingCommitted(ctx context.Context, c Confirmation)
}

// CommitFunc adapts a plain function to CommitListener.
type CommitFunc func(ctx context.Context, c Confirmation)

func (f CommitFunc) BookingCommitted(ctx context.Context, c Confirmation) { f(ctx, c) }

// Engine serializes bookings per screening through its Store.  It keeps no
// state of its own between calls, so one Engine serves all request
// goroutines.
type Engine struct {
	store     Store
	timeout   time.Duration
	listeners []CommitListener
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds a whole attempt, lock wait included.  Zero disables it.
func WithTimeout(d time.Duration) Option { return func(e *Engine) { e.timeout = d } }

// WithListener registers l to run after each commit, in registration order.
func WithListener(l CommitListener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listeners = append(e.listeners, l)
		}
	}
}

// NewEngine returns an Engine backed by store.
func NewEngine(store Store, opts ...Option) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	e := &Engine{store: store}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Validate checks a request without touching the store.
func (r Request) Validate() error {
	switch {
	case r.ScreeningID == 0:
		return invalid("screening id is required")
	case strings.TrimSpace(r.CustomerName) == "":
		return invalid("customer name is required")
	case strings.TrimSpace(r.CustomerPhone) == "":
		return invalid("customer phone is required")
	case r.Seats <= 0:
		return invalid("requested seats must be a positive integer")
	}
	return nil
}

// Attempt books req.Seats seats or rejects the request.
//
// Invalid requests and unknown screenings are rejected before a transaction
// is opened.  Otherwise the screening row is locked, the counter checked,
// decremented and a CONFIRMED booking appended; the lock is released by the
// commit.  Any failure inside the transaction rolls it back, leaving both
// the counter and the ledger untouched.  Returned errors match one of
// ErrInvalidRequest, ErrNotFound, ErrInsufficientCapacity (as a
// *CapacityError) or ErrStoreFailure.
func (e *Engine) Attempt(ctx context.Context, req Request) (*Confirmation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.CustomerPhone)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if _, err := e.store.RemainingSeats(ctx, req.ScreeningID); err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeFailure("read screening", err)
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, storeFailure("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("booking: rollback screening=%d failed: %v", req.ScreeningID, rbErr)
			}
		}
	}()

	screening, err := tx.LockScreening(ctx, req.ScreeningID)
	if err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeFailure("lock screening", err)
	}
	if screening.AvailableSeats < req.Seats {
		return nil, &CapacityError{
			ScreeningID: req.ScreeningID,
			Remaining:   screening.AvailableSeats,
			Requested:   req.Seats,
		}
	}
	remaining := screening.AvailableSeats - req.Seats

	if err := tx.DecrementSeats(ctx, req.ScreeningID, req.Seats); err != nil {
		return nil, storeFailure("decrement seats", err)
	}
	b := model.Booking{
		ScreeningID: req.ScreeningID,
		CustomerID:  CustomerID(name, phone),
		SeatCount:   req.Seats,
		Status:      model.BookingConfirmed,
	}
	if err := tx.AppendBooking(ctx, &b); err != nil {
		return nil, storeFailure("append booking", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeFailure("commit", err)
	}
	committed = true

	conf := Confirmation{Booking: b, Screening: *screening, SeatsRemaining: remaining}
	for _, l := range e.listeners {
		l.BookingCommitted(context.WithoutCancel(ctx), conf)
	}
	return &conf, nil
}
