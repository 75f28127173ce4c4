package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// LockRepo provides data access to the locked_seats table.  A lock is
// found again by its event and seat_key, the canonical form of its seat
// set, so a re-lock of the same seats in another order still matches.
type LockRepo struct {
	db *sql.DB
}

// NewLockRepo returns a new LockRepo bound to the provided database.
func NewLockRepo(db *sql.DB) *LockRepo { return &LockRepo{db: db} }

// Insert writes one lock row.
func (r *LockRepo) Insert(ctx context.Context, l model.Lock) error {
	const q = `INSERT INTO locked_seats (lock_id, event_id, seats, seat_key, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, l.ID, l.EventID, l.Seats, l.Seats.Key(), l.CreatedAt.UTC())
	return fault("insert lock", err)
}

// Delete removes the locks of an event holding exactly seats and returns
// how many rows went away.
func (r *LockRepo) Delete(ctx context.Context, eventID int64, seats model.SeatSet) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM locked_seats WHERE event_id = ? AND seat_key = ?`, eventID, seats.Key())
	if err != nil {
		return 0, fault("delete lock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fault("delete lock", err)
	}
	return n, nil
}

// DeleteUpTo is Delete limited to locks created at or before lockedAt.
func (r *LockRepo) DeleteUpTo(ctx context.Context, eventID int64, seats model.SeatSet, lockedAt time.Time) (int64, error) {
	const q = `DELETE FROM locked_seats WHERE event_id = ? AND seat_key = ? AND created_at <= ?`
	res, err := r.db.ExecContext(ctx, q, eventID, seats.Key(), lockedAt.UTC().Truncate(time.Millisecond))
	if err != nil {
		return 0, fault("expire lock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fault("expire lock", err)
	}
	return n, nil
}

// SeatsForEvent returns the seat set of every live lock on the event.
func (r *LockRepo) SeatsForEvent(ctx context.Context, eventID int64) ([]model.SeatSet, error) {
	return seatSets(ctx, r.db, "locked seats", `SELECT seats FROM locked_seats WHERE event_id = ?`, eventID)
}

func seatSets(ctx context.Context, db *sql.DB, op, q string, args ...any) ([]model.SeatSet, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fault(op, err)
	}
	defer rows.Close()
	var out []model.SeatSet
	for rows.Next() {
		var s model.SeatSet
		if err := rows.Scan(&s); err != nil {
			return nil, fault(op, err)
		}
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fault(op, err)
	}
	return out, nil
}
