package seating

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// Availability partitions an event's seats.  Booked is Ticketed plus
// Locked; Available, Excluded and Booked are disjoint and together make
// up All.  Every list is in grid order.
type Availability struct {
	EventID   int64         `json:"event_id"`
	All       model.SeatSet `json:"all"`
	Excluded  model.SeatSet `json:"unavailable"`
	Booked    model.SeatSet `json:"booked"`
	Available model.SeatSet `json:"available"`
	Ticketed  model.SeatSet `json:"-"`
	Locked    model.SeatSet `json:"-"`
}

// State returns the state of one seat.  Labels outside the grid are
// reported as excluded.
func (a Availability) State(label string) model.SeatState {
	switch {
	case a.Excluded.Contains(label) || !a.All.Contains(label):
		return model.SeatExcluded
	case a.Ticketed.Contains(label):
		return model.SeatBooked
	case a.Locked.Contains(label):
		return model.SeatLocked
	}
	return model.SeatAvailable
}

// Aggregator computes availability from the store.  It never writes.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Get loads the venue grid, the ticketed seats and the live locks of the
// event concurrently and folds them into an Availability.
func (a *Aggregator) Get(ctx context.Context, eventID int64) (Availability, error) {
	var (
		venue    model.VenueTopology
		ticketed []model.SeatSet
		locked   []model.SeatSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		venue, err = a.store.VenueTopology(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		ticketed, err = a.store.TicketedSeats(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		locked, err = a.store.LockedSeats(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Availability{}, err
	}

	topo, err := Resolve(venue.Rows, venue.Columns, venue.Excluded)
	if err != nil {
		return Availability{}, err
	}
	return fold(eventID, topo, ticketed, locked), nil
}

func fold(eventID int64, topo Topology, ticketed, locked []model.SeatSet) Availability {
	sold := labelSet(ticketed)
	held := labelSet(locked)
	excluded := make(map[string]struct{}, len(topo.Excluded))
	for _, l := range topo.Excluded {
		excluded[l] = struct{}{}
	}

	av := Availability{
		EventID:   eventID,
		All:       topo.All,
		Excluded:  topo.Excluded,
		Booked:    model.SeatSet{},
		Available: model.SeatSet{},
		Ticketed:  model.SeatSet{},
		Locked:    model.SeatSet{},
	}
	if av.Excluded == nil {
		av.Excluded = model.SeatSet{}
	}
	for _, label := range topo.All {
		if _, ok := excluded[label]; ok {
			continue
		}
		_, isSold := sold[label]
		_, isHeld := held[label]
		switch {
		case isSold:
			av.Ticketed = append(av.Ticketed, label)
			av.Booked = append(av.Booked, label)
		case isHeld:
			av.Locked = append(av.Locked, label)
			av.Booked = append(av.Booked, label)
		default:
			av.Available = append(av.Available, label)
		}
	}
	return av
}

func labelSet(sets []model.SeatSet) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range sets {
		for _, l := range s.Normalize() {
			out[l] = struct{}{}
		}
	}
	return out
}
