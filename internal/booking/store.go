package booking

import (
	"context"
	"database/sql"

	"github.com/modex/screening-booking/internal/model"
	"github.com/modex/screening-booking/internal/repository"
)

// Store is the durable backing for the engine: committed reads of the seat
// counter plus a transaction that can lock one screening.
type Store interface {
	// RemainingSeats reads the committed counter without locking.  It returns
	// repository.ErrScreeningNotFound for unknown ids.
	RemainingSeats(ctx context.Context, screeningID uint64) (int, error)
	// Begin starts a transaction bound to one pooled connection.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one booking attempt's unit of work.  Writes become visible to other
// transactions only on Commit; Rollback after Commit is a no-op.
type Tx interface {
	// LockScreening takes the exclusive per-screening lock and returns the row
	// as seen under it.  The lock is held until Commit or Rollback.
	LockScreening(ctx context.Context, screeningID uint64) (*model.Screening, error)
	DecrementSeats(ctx context.Context, screeningID uint64, amount int) error
	AppendBooking(ctx context.Context, b *model.Booking) error
	Commit() error
	Rollback() error
}

// SQLStore runs the engine against MySQL, using InnoDB row locks
// (SELECT ... FOR UPDATE) as the per-screening critical section.
type SQLStore struct {
	db         *sql.DB
	screenings *repository.ScreeningRepo
	bookings   *repository.BookingRepo
}

// NewSQLStore builds a Store over the two repositories.  Both must share db.
func NewSQLStore(db *sql.DB, screenings *repository.ScreeningRepo, bookings *repository.BookingRepo) *SQLStore {
	if db == nil || screenings == nil || bookings == nil {
		panic("nil dependency passed to NewSQLStore")
	}
	return &SQLStore{db: db, screenings: screenings, bookings: bookings}
}

func (s *SQLStore) RemainingSeats(ctx context.Context, screeningID uint64) (int, error) {
	return s.screenings.RemainingSeats(ctx, screeningID)
}

func (s *SQLStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx, store: s}, nil
}

type sqlTx struct {
	tx    *sql.Tx
	store *SQLStore
}

func (t *sqlTx) LockScreening(ctx context.Context, screeningID uint64) (*model.Screening, error) {
	return t.store.screenings.LockForUpdateTx(ctx, t.tx, screeningID)
}

func (t *sqlTx) DecrementSeats(ctx context.Context, screeningID uint64, amount int) error {
	return t.store.screenings.DecrementSeatsTx(ctx, t.tx, screeningID, amount)
}

func (t *sqlTx) AppendBooking(ctx context.Context, b *model.Booking) error {
	return t.store.bookings.AppendTx(ctx, t.tx, b)
}

func (t *sqlTx) Commit() error { return t.tx.Commit() }

func (t *sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}
