package seating

import (
	"context"
	"time"

	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// Store is the durable state the seat inventory reads and writes.  Every
// method is a blocking round trip.  Implementations return ErrNotFound
// for a missing event and wrap everything else with StoreFault;
// InsertTicket reports a reused ticket id as ErrTicketIDTaken.
type Store interface {
	VenueTopology(ctx context.Context, eventID int64) (model.VenueTopology, error)
	TicketedSeats(ctx context.Context, eventID int64) ([]model.SeatSet, error)
	LockedSeats(ctx context.Context, eventID int64) ([]model.SeatSet, error)
	TicketsForUser(ctx context.Context, userID string) ([]model.TicketDetail, error)

	InsertLock(ctx context.Context, lock model.Lock) error
	// DeleteLock removes every lock on the event whose seat set is
	// identical to seats and reports how many went away.
	DeleteLock(ctx context.Context, eventID int64, seats model.SeatSet) (int64, error)
	// ExpireLock is DeleteLock restricted to locks created at or before
	// lockedAt.  A lock written after that instant is a newer hold.
	ExpireLock(ctx context.Context, eventID int64, seats model.SeatSet, lockedAt time.Time) (int64, error)
	InsertTicket(ctx context.Context, ticket model.Ticket) error
}
