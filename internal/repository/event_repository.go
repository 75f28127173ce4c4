package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/iliyamo/event-seat-inventory/internal/model"
	"github.com/iliyamo/event-seat-inventory/internal/seating"
)

// EventRepo manages persistence for events.  "Upcoming" always means an
// event_date on or after the day passed in by the caller.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `e.id, e.venue_id, v.name, e.name, COALESCE(e.type, ''), COALESCE(e.description, ''),
       COALESCE(e.image, ''), e.event_date, e.start_time, e.end_time`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.VenueID, &e.VenueName, &e.Name, &e.Type, &e.Description,
		&e.Image, &e.Date, &e.StartTime, &e.EndTime)
	return e, err
}

// Create inserts a new event and assigns the generated ID back to e.  It
// returns seating.ErrNotFound when the venue does not exist.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM venues WHERE id = ?`, e.VenueID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return seating.ErrNotFound
		}
		return pkgerrors.Wrap(err, "check venue")
	}
	const q = `INSERT INTO events (venue_id, name, type, description, image, event_date, start_time, end_time)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.VenueID, strings.TrimSpace(e.Name), nullable(e.Type), nullable(e.Description),
		nullable(e.Image), e.Date.Format("2006-01-02"), e.StartTime, e.EndTime)
	if err != nil {
		return pkgerrors.Wrap(err, "insert event")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return pkgerrors.Wrap(err, "event id")
	}
	e.ID = id
	return nil
}

// Name returns the display name of an event.
func (r *EventRepo) Name(ctx context.Context, id int64) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM events WHERE id = ?`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", seating.ErrNotFound
		}
		return "", fault("event name", err)
	}
	return name, nil
}

// ListUpcoming returns upcoming events, optionally only those of one type
// (case-insensitive; "" and "all" mean every type), ordered by name, date
// and start time.
func (r *EventRepo) ListUpcoming(ctx context.Context, eventType string, today time.Time) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + `
          FROM events e
          JOIN venues v ON v.id = e.venue_id
          WHERE e.event_date >= ?`
	args := []any{today.Format("2006-01-02")}
	if t := strings.ToLower(strings.TrimSpace(eventType)); t != "" && t != "all" {
		q += ` AND LOWER(e.type) = ?`
		args = append(args, t)
	}
	q += ` ORDER BY e.name, e.event_date, e.start_time`
	return r.query(ctx, "list events", q, args...)
}

// ListGrouped folds the upcoming events into one group per event name,
// ordered by the earliest show and then by name.
func (r *EventRepo) ListGrouped(ctx context.Context, eventType string, today time.Time) ([]model.EventGroup, error) {
	events, err := r.ListUpcoming(ctx, eventType, today)
	if err != nil {
		return nil, err
	}
	return GroupByName(events), nil
}

// GroupByName groups events sharing a name.  Type, description and image
// come from the first event of each group.
func GroupByName(events []model.Event) []model.EventGroup {
	idx := map[string]int{}
	groups := []model.EventGroup{}
	for _, e := range events {
		i, ok := idx[e.Name]
		if !ok {
			i = len(groups)
			idx[e.Name] = i
			groups = append(groups, model.EventGroup{
				Name:         e.Name,
				Type:         e.Type,
				Description:  e.Description,
				Image:        e.Image,
				EarliestDate: e.Date,
			})
		}
		g := &groups[i]
		g.Shows = append(g.Shows, e)
		g.ShowCount++
		if e.Date.Before(g.EarliestDate) {
			g.EarliestDate = e.Date
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if !groups[i].EarliestDate.Equal(groups[j].EarliestDate) {
			return groups[i].EarliestDate.Before(groups[j].EarliestDate)
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// Shows returns the upcoming shows of one event name by date and start
// time.
func (r *EventRepo) Shows(ctx context.Context, name string, today time.Time) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + `
          FROM events e
          JOIN venues v ON v.id = e.venue_id
          WHERE e.name = ? AND e.event_date >= ?
          ORDER BY e.event_date, e.start_time`
	return r.query(ctx, "event shows", q, name, today.Format("2006-01-02"))
}

// Types returns the distinct types of upcoming events.
func (r *EventRepo) Types(ctx context.Context, today time.Time) ([]string, error) {
	const q = `SELECT DISTINCT type FROM events WHERE event_date >= ? AND type IS NOT NULL AND type <> '' ORDER BY type`
	rows, err := r.db.QueryContext(ctx, q, today.Format("2006-01-02"))
	if err != nil {
		return nil, fault("event types", err)
	}
	defer rows.Close()
	types := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fault("event types", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("event types", err)
	}
	return types, nil
}

func (r *EventRepo) query(ctx context.Context, op, q string, args ...any) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fault(op, err)
	}
	defer rows.Close()
	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fault(op, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fault(op, err)
	}
	return events, nil
}

func nullable(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
