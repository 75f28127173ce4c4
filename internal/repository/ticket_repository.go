package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-seat-inventory/internal/model"
	"github.com/iliyamo/event-seat-inventory/internal/seating"
)

// TicketRepo provides data access to the tickets table.  ticket_id is the
// primary key, so a reused random id surfaces as a duplicate entry.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the provided database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// Insert writes one ticket in a single statement.
func (r *TicketRepo) Insert(ctx context.Context, t model.Ticket) error {
	const q = `INSERT INTO tickets (ticket_id, event_id, username, seats, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.EventID, t.UserID, t.Seats, t.CreatedAt.UTC())
	if err != nil && isDuplicate(err) {
		return seating.ErrTicketIDTaken
	}
	return fault("insert ticket", err)
}

// SeatsForEvent returns the seat set of every ticket of the event.
func (r *TicketRepo) SeatsForEvent(ctx context.Context, eventID int64) ([]model.SeatSet, error) {
	return seatSets(ctx, r.db, "ticketed seats", `SELECT seats FROM tickets WHERE event_id = ?`, eventID)
}

// ListByUser returns the tickets of a user with event and venue details,
// newest event date first, then latest start time first.
func (r *TicketRepo) ListByUser(ctx context.Context, username string) ([]model.TicketDetail, error) {
	const q = `SELECT t.ticket_id, t.event_id, t.username, t.seats, t.created_at,
                      e.name, e.event_date, e.start_time, v.name
               FROM tickets t
               JOIN events e ON e.id = t.event_id
               JOIN venues v ON v.id = e.venue_id
               WHERE t.username = ?
               ORDER BY e.event_date DESC, e.start_time DESC`
	rows, err := r.db.QueryContext(ctx, q, username)
	if err != nil {
		return nil, fault("tickets for user", err)
	}
	defer rows.Close()
	out := []model.TicketDetail{}
	for rows.Next() {
		var d model.TicketDetail
		if err := rows.Scan(&d.ID, &d.EventID, &d.UserID, &d.Seats, &d.CreatedAt,
			&d.EventName, &d.Date, &d.StartTime, &d.VenueName); err != nil {
			return nil, fault("tickets for user", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("tickets for user", err)
	}
	return out, nil
}
