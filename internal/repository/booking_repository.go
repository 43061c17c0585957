package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/modex/screening-booking/internal/model"
)

// BookingRepo is the append-only booking ledger.  It exposes inserts and
// reads only; no code path updates or deletes a booking row.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingFilter narrows List.  Zero values mean "no constraint"; both
// fields may be combined.
type BookingFilter struct {
	ScreeningID    uint64 // only bookings for this screening
	CustomerPrefix string // only bookings whose customer id starts with this literal prefix
}

const bookingColumns = `id, show_id, user_id, seat_count, status, created_at`

func scanBooking(row rowScanner, b *model.Booking) error {
	var status string
	if err := row.Scan(&b.ID, &b.ScreeningID, &b.CustomerID, &b.SeatCount, &status, &b.CreatedAt); err != nil {
		return err
	}
	b.Status = model.BookingStatus(status)
	return nil
}

// AppendTx inserts a booking inside tx and fills ID and CreatedAt from the
// stored row.  The row only becomes visible to other connections when the
// caller commits.
func (r *BookingRepo) AppendTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if b.SeatCount <= 0 {
		return fmt.Errorf("seat count %d: %w", b.SeatCount, ErrInvalidArgument)
	}
	if !b.Status.Valid() {
		return fmt.Errorf("status %q: %w", b.Status, ErrInvalidArgument)
	}
	const q = `INSERT INTO bookings (show_id, user_id, seat_count, status) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.ScreeningID, b.CustomerID, b.SeatCount, string(b.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(tx.QueryRowContext(ctx, sel, id), b)
}

// escapeLike makes s match literally inside a LIKE pattern using the
// default backslash escape.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List returns ledger rows matching f, newest first.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	var (
		where []string
		args  []any
	)
	if f.ScreeningID != 0 {
		where = append(where, "show_id = ?")
		args = append(args, f.ScreeningID)
	}
	if f.CustomerPrefix != "" {
		where = append(where, "user_id LIKE ?")
		args = append(args, escapeLike(f.CustomerPrefix)+"%")
	}
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Booking{}
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListWithScreenings returns every booking joined with its screening's name
// and venue, newest first.
func (r *BookingRepo) ListWithScreenings(ctx context.Context) ([]model.BookingReport, error) {
	const q = `SELECT b.id, b.show_id, s.name, s.theatre_name, b.user_id, b.seat_count, b.status, b.created_at
               FROM bookings b
               JOIN shows s ON s.id = b.show_id
               ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.BookingReport{}
	for rows.Next() {
		var (
			rep    model.BookingReport
			status string
		)
		if err := rows.Scan(&rep.ID, &rep.ScreeningID, &rep.ScreeningName, &rep.Venue,
			&rep.CustomerID, &rep.SeatCount, &status, &rep.CreatedAt); err != nil {
			return nil, err
		}
		rep.Status = model.BookingStatus(status)
		result = append(result, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ConfirmedSeats sums seat_count over CONFIRMED bookings for a screening.
// Together with the screening's counter it lets operators check that
// remaining + confirmed == capacity.
func (r *BookingRepo) ConfirmedSeats(ctx context.Context, screeningID uint64) (int, error) {
	const q = `SELECT COALESCE(SUM(seat_count), 0) FROM bookings WHERE show_id = ? AND status = 'CONFIRMED'`
	var n int
	if err := r.db.QueryRowContext(ctx, q, screeningID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
