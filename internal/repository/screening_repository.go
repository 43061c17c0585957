package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/modex/screening-booking/internal/model"
)

// ErrScreeningNotFound indicates that a screening was not located in the DB.
var ErrScreeningNotFound = errors.New("screening not found")

const screeningColumns = `id, name, theatre_name, start_time, total_seats, available_seats, created_at`

// ScreeningRepo manages persistence for screenings (the shows table).
type ScreeningRepo struct {
	db *sql.DB
}

// NewScreeningRepo constructs a ScreeningRepo with the given DB handle.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo {
	return &ScreeningRepo{db: db}
}

// DB exposes the underlying sql.DB so callers can begin transactions that
// span the screening and booking repositories.
func (r *ScreeningRepo) DB() *sql.DB {
	return r.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScreening(row rowScanner, s *model.Screening) error {
	return row.Scan(&s.ID, &s.Name, &s.Venue, &s.StartTime, &s.TotalSeats, &s.AvailableSeats, &s.CreatedAt)
}

// Create inserts a screening with AvailableSeats equal to TotalSeats and
// populates ID and CreatedAt from the stored row.  StartTime is stored in UTC.
func (r *ScreeningRepo) Create(ctx context.Context, s *model.Screening) error {
	if s.TotalSeats <= 0 {
		return fmt.Errorf("total seats %d: %w", s.TotalSeats, ErrInvalidArgument)
	}
	const q = `INSERT INTO shows (name, theatre_name, start_time, total_seats, available_seats) VALUES (?, ?, ?, ?, ?)`
	start := s.StartTime.UTC()
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Venue, start, s.TotalSeats, s.TotalSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	// Read the row back so created_at reflects the DB default.
	const sel = `SELECT ` + screeningColumns + ` FROM shows WHERE id = ?`
	return scanScreening(r.db.QueryRowContext(ctx, sel, id), s)
}

// GetByID retrieves a screening by its ID.  It returns ErrScreeningNotFound
// if there is no matching row.
func (r *ScreeningRepo) GetByID(ctx context.Context, id uint64) (*model.Screening, error) {
	const q = `SELECT ` + screeningColumns + ` FROM shows WHERE id = ?`
	var s model.Screening
	if err := scanScreening(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreeningNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns screenings ordered by start time ascending.  With
// availableOnly set, sold-out screenings are left out.  An empty result is
// an empty slice, never nil, so it encodes as [].
func (r *ScreeningRepo) List(ctx context.Context, availableOnly bool) ([]model.Screening, error) {
	q := `SELECT ` + screeningColumns + ` FROM shows`
	if availableOnly {
		q += ` WHERE available_seats > 0`
	}
	q += ` ORDER BY start_time ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Screening{}
	for rows.Next() {
		var s model.Screening
		if err := scanScreening(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// RemainingSeats reads the committed seat counter without locking.
func (r *ScreeningRepo) RemainingSeats(ctx context.Context, id uint64) (int, error) {
	const q = `SELECT available_seats FROM shows WHERE id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrScreeningNotFound
		}
		return 0, err
	}
	return n, nil
}

// LockForUpdateTx reads the screening row with SELECT ... FOR UPDATE.  The
// InnoDB row lock is held until tx commits or rolls back; competing
// bookings for the same screening queue behind it while other screenings
// are unaffected.
func (r *ScreeningRepo) LockForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Screening, error) {
	const q = `SELECT ` + screeningColumns + ` FROM shows WHERE id = ? FOR UPDATE`
	var s model.Screening
	if err := scanScreening(tx.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreeningNotFound
		}
		return nil, err
	}
	return &s, nil
}

// DecrementSeatsTx subtracts amount from the live counter.  The WHERE guard
// refuses to go below zero even if a caller skipped the locked read; a
// guarded miss returns ErrConflict.
func (r *ScreeningRepo) DecrementSeatsTx(ctx context.Context, tx *sql.Tx, id uint64, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("decrement by %d: %w", amount, ErrInvalidArgument)
	}
	const q = `UPDATE shows SET available_seats = available_seats - ? WHERE id = ? AND available_seats >= ?`
	res, err := tx.ExecContext(ctx, q, amount, id, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// startLayouts lists the accepted start_time inputs, most specific first.
var startLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"}

// ParseStartTime accepts an RFC3339 timestamp in any offset, or a bare
// local-looking layout which is taken as UTC, and returns it in UTC with
// sub-second precision dropped to match the DATETIME column.
func ParseStartTime(raw string) (time.Time, error) {
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("start time %q: %w", raw, ErrInvalidArgument)
}
