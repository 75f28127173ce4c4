// Package seating is the seat inventory: it resolves venue grids, reports
// which seats of an event are free, holds seats for a while and turns
// selections into tickets.
//
// By default it is best-effort, as the store is its only coordination
// point: availability, locking and booking are separate round trips and
// concurrent callers can interleave between them.  A SeatGuard closes
// that window.
package seating

import (
	"context"

	"github.com/iliyamo/event-seat-inventory/internal/clock"
	"github.com/iliyamo/event-seat-inventory/internal/expiry"
	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// Service is what the transport layer talks to.
type Service struct {
	avail     *Aggregator
	locks     *LockManager
	committer *Committer
	directory *Directory
}

func NewService(store Store, scheduler expiry.Scheduler, clk clock.Clock, opts ...Option) *Service {
	return &Service{
		avail:     NewAggregator(store),
		locks:     NewLockManager(store, scheduler, clk, opts...),
		committer: NewCommitter(store, clk, opts...),
		directory: NewDirectory(store),
	}
}

func (s *Service) GetAvailability(ctx context.Context, eventID int64) (Availability, error) {
	return s.avail.Get(ctx, eventID)
}

func (s *Service) LockSeats(ctx context.Context, eventID int64, seats model.SeatSet) bool {
	return s.locks.Acquire(ctx, eventID, seats)
}

func (s *Service) BookSeats(ctx context.Context, eventID int64, userID string, seats model.SeatSet) (int, bool) {
	return s.committer.Commit(ctx, eventID, userID, seats)
}

func (s *Service) ListUserTickets(ctx context.Context, userID string) ([]model.TicketDetail, error) {
	return s.directory.ListForUser(ctx, userID)
}
