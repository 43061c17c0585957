package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/modex/screening-booking/internal/model"
	"github.com/modex/screening-booking/internal/repository"
)

// memStore is an in-process Store with one lock per screening.  Writes are
// staged on the transaction and applied on Commit, so a rolled back or
// failed attempt leaves no trace.
type memStore struct {
	mu         sync.Mutex
	screenings map[uint64]*memScreening
	bookings   []model.Booking
	nextID     uint64
	begins     int

	failAppend error
	failCommit error
}

type memScreening struct {
	sem chan struct{}
	row model.Screening
}

func newMemStore() *memStore {
	return &memStore{screenings: map[uint64]*memScreening{}}
}

func (s *memStore) addScreening(id uint64, capacity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screenings[id] = &memScreening{
		sem: make(chan struct{}, 1),
		row: model.Screening{ID: id, Name: "Screening", Venue: "Hall", TotalSeats: capacity, AvailableSeats: capacity},
	}
}

func (s *memStore) remaining(id uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screenings[id].row.AvailableSeats
}

func (s *memStore) ledger() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Booking(nil), s.bookings...)
}

func (s *memStore) beginCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begins
}

func (s *memStore) RemainingSeats(_ context.Context, id uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.screenings[id]
	if !ok {
		return 0, repository.ErrScreeningNotFound
	}
	return sc.row.AvailableSeats, nil
}

func (s *memStore) Begin(context.Context) (Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begins++
	return &memTx{store: s, decrements: map[uint64]int{}}, nil
}

type memTx struct {
	store      *memStore
	held       []*memScreening
	decrements map[uint64]int
	appended   []model.Booking
	done       bool
}

func (t *memTx) LockScreening(ctx context.Context, id uint64) (*model.Screening, error) {
	t.store.mu.Lock()
	sc, ok := t.store.screenings[id]
	t.store.mu.Unlock()
	if !ok {
		return nil, repository.ErrScreeningNotFound
	}
	select {
	case sc.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	t.held = append(t.held, sc)
	t.store.mu.Lock()
	row := sc.row
	t.store.mu.Unlock()
	return &row, nil
}

func (t *memTx) DecrementSeats(_ context.Context, id uint64, amount int) error {
	t.decrements[id] += amount
	return nil
}

func (t *memTx) AppendBooking(_ context.Context, b *model.Booking) error {
	if t.store.failAppend != nil {
		return t.store.failAppend
	}
	t.store.mu.Lock()
	t.store.nextID++
	b.ID = t.store.nextID
	t.store.mu.Unlock()
	b.CreatedAt = time.Now().UTC()
	t.appended = append(t.appended, *b)
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return errors.New("tx done")
	}
	defer t.release()
	if t.store.failCommit != nil {
		return t.store.failCommit
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for id, n := range t.decrements {
		sc := t.store.screenings[id]
		if sc.row.AvailableSeats < n {
			return repository.ErrConflict
		}
		sc.row.AvailableSeats -= n
	}
	t.store.bookings = append(t.store.bookings, t.appended...)
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.release()
	return nil
}

func (t *memTx) release() {
	t.done = true
	for _, sc := range t.held {
		<-sc.sem
	}
	t.held = nil
}
