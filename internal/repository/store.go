package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/event-seat-inventory/internal/database"
	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// Store owns the connection pool and the per-table repos.  It is the
// seating.Store of the running service.
type Store struct {
	db      *sql.DB
	Venues  *VenueRepo
	Events  *EventRepo
	Locks   *LockRepo
	Tickets *TicketRepo
	Users   *UserRepo
}

// Open connects to MySQL and returns a ready Store.  Close releases it.
func Open(user, pass, host, port, name string) (*Store, error) {
	db, err := database.Open(user, pass, host, port, name)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// NewStore wraps an existing pool.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		Venues:  NewVenueRepo(db),
		Events:  NewEventRepo(db),
		Locks:   NewLockRepo(db),
		Tickets: NewTicketRepo(db),
		Users:   NewUserRepo(db),
	}
}

// DB exposes the underlying pool for health checks and migrations.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) VenueTopology(ctx context.Context, eventID int64) (model.VenueTopology, error) {
	return s.Venues.TopologyForEvent(ctx, eventID)
}

func (s *Store) TicketedSeats(ctx context.Context, eventID int64) ([]model.SeatSet, error) {
	return s.Tickets.SeatsForEvent(ctx, eventID)
}

func (s *Store) LockedSeats(ctx context.Context, eventID int64) ([]model.SeatSet, error) {
	return s.Locks.SeatsForEvent(ctx, eventID)
}

func (s *Store) TicketsForUser(ctx context.Context, userID string) ([]model.TicketDetail, error) {
	return s.Tickets.ListByUser(ctx, userID)
}

func (s *Store) InsertLock(ctx context.Context, lock model.Lock) error {
	return s.Locks.Insert(ctx, lock)
}

func (s *Store) DeleteLock(ctx context.Context, eventID int64, seats model.SeatSet) (int64, error) {
	return s.Locks.Delete(ctx, eventID, seats)
}

func (s *Store) ExpireLock(ctx context.Context, eventID int64, seats model.SeatSet, lockedAt time.Time) (int64, error) {
	return s.Locks.DeleteUpTo(ctx, eventID, seats, lockedAt)
}

func (s *Store) InsertTicket(ctx context.Context, ticket model.Ticket) error {
	return s.Tickets.Insert(ctx, ticket)
}
