package seating

import (
	"context"
	"sort"

	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// Directory is the read path for a user's tickets.
type Directory struct {
	store Store
}

func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

// ListForUser returns every ticket of userID, newest event first and,
// within a day, latest start time first.
func (d *Directory) ListForUser(ctx context.Context, userID string) ([]model.TicketDetail, error) {
	tickets, err := d.store.TicketsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		return []model.TicketDetail{}, nil
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		a, b := tickets[i], tickets[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.StartTime > b.StartTime
	})
	return tickets, nil
}
