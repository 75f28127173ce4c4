package seating

import (
	"context"
	"time"

	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// SeatGuard claims individual seats atomically across all server
// instances.  It backs the hardened mode; without one, locking and
// booking keep their best-effort behaviour.
//
// Hold claims seats for ttl.  Seats already held by the identical set are
// re-claimed with a fresh ttl; seats held by a different set or sold make
// the whole call fail with ErrSeatUnavailable and nothing is claimed.
//
// Release drops a Hold of exactly seats whose lock could not be written.
// Seats held by another set are left alone.
//
// Sell marks seats as sold for good.  It fails with ErrSeatUnavailable
// when a seat is sold already or held by a different set.  Unsell undoes
// a Sell whose ticket could not be written.
type SeatGuard interface {
	Hold(ctx context.Context, eventID int64, seats model.SeatSet, ttl time.Duration) error
	Release(ctx context.Context, eventID int64, seats model.SeatSet) error
	Sell(ctx context.Context, eventID int64, seats model.SeatSet) error
	Unsell(ctx context.Context, eventID int64, seats model.SeatSet) error
}

// Publisher is told about every committed ticket.
type Publisher interface {
	PublishTicketBooked(ctx context.Context, ticket model.Ticket) error
}
