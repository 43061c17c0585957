package booking

import (
	"errors"
	"fmt"
)

// Rejection reasons.  Every error returned by Engine.Attempt matches exactly
// one of these through errors.Is.
var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrNotFound             = errors.New("screening not found")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrStoreFailure         = errors.New("store failure")
)

// CapacityError reports a booking that asked for more seats than the
// screening had left at the moment its row lock was held.
type CapacityError struct {
	ScreeningID uint64
	Remaining   int
	Requested   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("Booking Failed: Only %d seats remaining. Requested: %d.", e.Remaining, e.Requested)
}

// Is makes a *CapacityError match ErrInsufficientCapacity.
func (e *CapacityError) Is(target error) bool { return target == ErrInsufficientCapacity }

// Code maps an Attempt error to the reason code exposed to clients.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return "InvalidRequest"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrInsufficientCapacity):
		return "InsufficientCapacity"
	default:
		return "StoreFailure"
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidRequest}, args...)...)
}

func storeFailure(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreFailure, step, err)
}
