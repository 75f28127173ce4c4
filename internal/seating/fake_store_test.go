package seating

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/event-seat-inventory/internal/model"
)

type fakeEvent struct {
	topo      model.VenueTopology
	name      string
	date      time.Time
	startTime string
	venue     string
}

// memStore is an in-memory Store.  fail makes the named method return
// the given error.
type memStore struct {
	mu      sync.Mutex
	events  map[int64]fakeEvent
	locks   []model.Lock
	tickets []model.Ticket
	fail    map[string]error
}

func newMemStore() *memStore {
	return &memStore{events: map[int64]fakeEvent{}, fail: map[string]error{}}
}

func (s *memStore) addEvent(id int64, rows, cols int, excluded ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[id] = fakeEvent{
		topo:      model.VenueTopology{Rows: rows, Columns: cols, Excluded: excluded},
		name:      "Event",
		date:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		startTime: "19:00",
		venue:     "Main Hall",
	}
}

func (s *memStore) failing(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail[method]
}

func (s *memStore) VenueTopology(_ context.Context, eventID int64) (model.VenueTopology, error) {
	if err := s.failing("VenueTopology"); err != nil {
		return model.VenueTopology{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		return model.VenueTopology{}, ErrNotFound
	}
	return ev.topo, nil
}

func (s *memStore) TicketedSeats(_ context.Context, eventID int64) ([]model.SeatSet, error) {
	if err := s.failing("TicketedSeats"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SeatSet
	for _, t := range s.tickets {
		if t.EventID == eventID {
			out = append(out, t.Seats)
		}
	}
	return out, nil
}

func (s *memStore) LockedSeats(_ context.Context, eventID int64) ([]model.SeatSet, error) {
	if err := s.failing("LockedSeats"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SeatSet
	for _, l := range s.locks {
		if l.EventID == eventID {
			out = append(out, l.Seats)
		}
	}
	return out, nil
}

func (s *memStore) TicketsForUser(_ context.Context, userID string) ([]model.TicketDetail, error) {
	if err := s.failing("TicketsForUser"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TicketDetail
	for _, t := range s.tickets {
		if t.UserID != userID {
			continue
		}
		ev := s.events[t.EventID]
		out = append(out, model.TicketDetail{Ticket: t, EventName: ev.name, Date: ev.date, StartTime: ev.startTime, VenueName: ev.venue})
	}
	return out, nil
}

func (s *memStore) InsertLock(_ context.Context, lock model.Lock) error {
	if err := s.failing("InsertLock"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks = append(s.locks, lock)
	return nil
}

func (s *memStore) DeleteLock(_ context.Context, eventID int64, seats model.SeatSet) (int64, error) {
	if err := s.failing("DeleteLock"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.locks[:0]
	var n int64
	for _, l := range s.locks {
		if l.EventID == eventID && l.Seats.Equal(seats) {
			n++
			continue
		}
		kept = append(kept, l)
	}
	s.locks = kept
	return n, nil
}

func (s *memStore) ExpireLock(_ context.Context, eventID int64, seats model.SeatSet, lockedAt time.Time) (int64, error) {
	if err := s.failing("ExpireLock"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.locks[:0]
	var n int64
	for _, l := range s.locks {
		if l.EventID == eventID && l.Seats.Equal(seats) && !l.CreatedAt.After(lockedAt) {
			n++
			continue
		}
		kept = append(kept, l)
	}
	s.locks = kept
	return n, nil
}

func (s *memStore) InsertTicket(_ context.Context, ticket model.Ticket) error {
	if err := s.failing("InsertTicket"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.ID == ticket.ID {
			return ErrTicketIDTaken
		}
	}
	s.tickets = append(s.tickets, ticket)
	return nil
}

func (s *memStore) lockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

type mockGuard struct {
	mock.Mock
}

func (m *mockGuard) Hold(ctx context.Context, eventID int64, seats model.SeatSet, ttl time.Duration) error {
	return m.Called(ctx, eventID, seats, ttl).Error(0)
}

func (m *mockGuard) Release(ctx context.Context, eventID int64, seats model.SeatSet) error {
	return m.Called(ctx, eventID, seats).Error(0)
}

func (m *mockGuard) Sell(ctx context.Context, eventID int64, seats model.SeatSet) error {
	return m.Called(ctx, eventID, seats).Error(0)
}

func (m *mockGuard) Unsell(ctx context.Context, eventID int64, seats model.SeatSet) error {
	return m.Called(ctx, eventID, seats).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishTicketBooked(ctx context.Context, ticket model.Ticket) error {
	return m.Called(ctx, ticket).Error(0)
}

// sequence returns the given ids in order, then repeats the last one.
func sequence(ids ...int) func() int {
	var mu sync.Mutex
	i := 0
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i]
		if i < len(ids)-1 {
			i++
		}
		return id
	}
}
