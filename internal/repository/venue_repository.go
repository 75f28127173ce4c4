package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/iliyamo/event-seat-inventory/internal/model"
	"github.com/iliyamo/event-seat-inventory/internal/seating"
)

// VenueRepo manages persistence for venues.  The grid is stored as
// "<rows>x<cols>" and the excluded seats as a JSON list; older rows may
// hold a comma list instead, which model.SeatSet reads as well.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// Create validates the grid, inserts the venue and assigns the generated
// ID back to v.  The excluded list is stored in grid order.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	v.Name = strings.TrimSpace(v.Name)
	topo, err := seating.Resolve(v.Rows, v.Columns, v.Excluded)
	if err != nil {
		return err
	}
	v.Excluded = topo.Excluded
	const q = `INSERT INTO venues (name, grid, excluded_seats) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, v.Name, seating.FormatGrid(v.Rows, v.Columns), v.Excluded)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return pkgerrors.Wrap(err, "insert venue")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return pkgerrors.Wrap(err, "venue id")
	}
	v.ID = id
	return nil
}

// GetByID retrieves a venue.  It returns seating.ErrNotFound if there is
// no matching row.
func (r *VenueRepo) GetByID(ctx context.Context, id int64) (*model.Venue, error) {
	const q = `SELECT id, name, grid, excluded_seats FROM venues WHERE id = ?`
	var (
		v    model.Venue
		grid string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&v.ID, &v.Name, &grid, &v.Excluded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seating.ErrNotFound
		}
		return nil, fault("get venue", err)
	}
	if v.Rows, v.Columns, err = seating.ParseGrid(grid); err != nil {
		return nil, err
	}
	return &v, nil
}

// TopologyForEvent returns the grid and excluded seats of the venue
// hosting eventID.
func (r *VenueRepo) TopologyForEvent(ctx context.Context, eventID int64) (model.VenueTopology, error) {
	const q = `SELECT v.grid, v.excluded_seats
               FROM events e
               JOIN venues v ON v.id = e.venue_id
               WHERE e.id = ?`
	var (
		t    model.VenueTopology
		grid string
	)
	err := r.db.QueryRowContext(ctx, q, eventID).Scan(&grid, &t.Excluded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.VenueTopology{}, seating.ErrNotFound
		}
		return model.VenueTopology{}, fault("venue topology", err)
	}
	if t.Rows, t.Columns, err = seating.ParseGrid(grid); err != nil {
		return model.VenueTopology{}, err
	}
	return t, nil
}
