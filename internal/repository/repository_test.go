package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/event-seat-inventory/internal/model"
	"github.com/iliyamo/event-seat-inventory/internal/seating"
	"github.com/iliyamo/event-seat-inventory/internal/utils"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func TestVenueCreateStoresGridAndExclusions(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO venues")).
		WithArgs("Main Hall", "2x3", `["A2","B3"]`).
		WillReturnResult(sqlmock.NewResult(11, 1))

	v := model.Venue{Name: " Main Hall ", Rows: 2, Columns: 3, Excluded: model.SeatSet{"B3", "A2"}}
	require.NoError(t, s.Venues.Create(context.Background(), &v))
	assert.Equal(t, int64(11), v.ID)
	assert.Equal(t, model.SeatSet{"A2", "B3"}, v.Excluded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueCreateRejectsBadGridWithoutWriting(t *testing.T) {
	s, mock := newMock(t)
	v := model.Venue{Name: "x", Rows: 2, Columns: 2, Excluded: model.SeatSet{"C1"}}
	err := s.Venues.Create(context.Background(), &v)
	assert.ErrorIs(t, err, seating.ErrInvalidTopology)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVenueCreateDuplicate(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO venues")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	v := model.Venue{Name: "Main Hall", Rows: 1, Columns: 1}
	assert.ErrorIs(t, s.Venues.Create(context.Background(), &v), ErrConflict)
}

func TestVenueTopology(t *testing.T) {
	s, mock := newMock(t)
	q := regexp.QuoteMeta("SELECT v.grid, v.excluded_seats")

	// legacy comma-joined exclusions still decode
	mock.ExpectQuery(q).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"grid", "excluded_seats"}).AddRow("4x5", "B2, C3,"))
	topo, err := s.VenueTopology(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, topo.Rows)
	assert.Equal(t, 5, topo.Columns)
	assert.Equal(t, model.SeatSet{"B2", "C3"}, topo.Excluded)

	mock.ExpectQuery(q).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"grid", "excluded_seats"}))
	_, err = s.VenueTopology(context.Background(), 2)
	assert.ErrorIs(t, err, seating.ErrNotFound)

	mock.ExpectQuery(q).WithArgs(int64(3)).WillReturnError(errors.New("bad connection"))
	_, err = s.VenueTopology(context.Background(), 3)
	assert.ErrorIs(t, err, seating.ErrStoreFault)
	assert.Contains(t, err.Error(), "bad connection")

	mock.ExpectQuery(q).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"grid", "excluded_seats"}).AddRow("four", "[]"))
	_, err = s.VenueTopology(context.Background(), 4)
	assert.ErrorIs(t, err, seating.ErrInvalidTopology)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockInsertAndDelete(t *testing.T) {
	s, mock := newMock(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO locked_seats")).
		WithArgs("lock-1", int64(5), `["B1","A2"]`, "A2,B1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.InsertLock(context.Background(), model.Lock{
		ID: "lock-1", EventID: 5, Seats: model.SeatSet{"B1", "A2"}, CreatedAt: now,
	}))

	// identity is the canonical key, so the order of the request does not matter
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM locked_seats")).
		WithArgs(int64(5), "A2,B1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	n, err := s.DeleteLock(context.Background(), 5, model.SeatSet{"A2", "B1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM locked_seats")).WillReturnError(errors.New("timeout"))
	_, err = s.DeleteLock(context.Background(), 5, model.SeatSet{"A2"})
	assert.ErrorIs(t, err, seating.ErrStoreFault)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireLockBoundsByCreation(t *testing.T) {
	s, mock := newMock(t)
	lockedAt := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM locked_seats WHERE event_id = ? AND seat_key = ? AND created_at <= ?")).
		WithArgs(int64(5), "A2,B1", lockedAt.Truncate(time.Millisecond)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	n, err := s.ExpireLock(context.Background(), 5, model.SeatSet{"B1", "A2"}, lockedAt)
	require.NoError(t, err)
	assert.Zero(t, n)

	mock.ExpectExec(regexp.QuoteMeta("created_at <= ?")).WillReturnError(errors.New("lock wait timeout"))
	_, err = s.ExpireLock(context.Background(), 5, model.SeatSet{"A2"}, lockedAt)
	assert.ErrorIs(t, err, seating.ErrStoreFault)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatReadsDecodeBothEncodings(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT seats FROM tickets")).WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}).
			AddRow(`["A1","A2"]`).
			AddRow("B3,").
			AddRow(""))
	sets, err := s.TicketedSeats(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, []model.SeatSet{{"A1", "A2"}, {"B3"}}, sets)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT seats FROM locked_seats")).WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"seats"}))
	sets, err = s.LockedSeats(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, sets)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketInsert(t *testing.T) {
	s, mock := newMock(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ticket := model.Ticket{ID: 123456, EventID: 2, UserID: "alice", Seats: model.SeatSet{"C4"}, CreatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).
		WithArgs(123456, int64(2), "alice", `["C4"]`, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.InsertTicket(context.Background(), ticket))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '123456'"})
	assert.ErrorIs(t, s.InsertTicket(context.Background(), ticket), seating.ErrTicketIDTaken)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).WillReturnError(errors.New("broken pipe"))
	err := s.InsertTicket(context.Background(), ticket)
	assert.ErrorIs(t, err, seating.ErrStoreFault)
	assert.NotErrorIs(t, err, seating.ErrTicketIDTaken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketsForUser(t *testing.T) {
	s, mock := newMock(t)
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"ticket_id", "event_id", "username", "seats", "created_at", "name", "event_date", "start_time", "name"}

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY e.event_date DESC, e.start_time DESC")).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(222222, int64(2), "alice", `["A1"]`, created, "Late Show", day, "21:00:00", "Hall").
			AddRow(111111, int64(1), "alice", "A2,A3", created, "Matinee", day, "14:00:00", "Hall"))

	items, err := s.TicketsForUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 222222, items[0].ID)
	assert.Equal(t, "Late Show", items[0].EventName)
	assert.Equal(t, model.SeatSet{"A2", "A3"}, items[1].Seats)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets t")).WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(cols))
	items, err = s.TicketsForUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventCreateChecksVenue(t *testing.T) {
	s, mock := newMock(t)
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM venues")).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	err := s.Events.Create(context.Background(), &model.Event{VenueID: 4, Name: "Gala", Date: day})
	assert.ErrorIs(t, err, seating.ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM venues")).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs(int64(1), "Gala", "concert", nil, nil, "2026-06-01", "19:00:00", "21:00:00").
		WillReturnResult(sqlmock.NewResult(30, 1))
	e := model.Event{VenueID: 1, Name: "Gala", Type: "concert", Date: day, StartTime: "19:00:00", EndTime: "21:00:00"}
	require.NoError(t, s.Events.Create(context.Background(), &e))
	assert.Equal(t, int64(30), e.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUpcomingTypeFilter(t *testing.T) {
	s, mock := newMock(t)
	today := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "venue_id", "venue", "name", "type", "description", "image", "event_date", "start_time", "end_time"}

	mock.ExpectQuery(regexp.QuoteMeta("AND LOWER(e.type) = ?")).WithArgs("2026-05-01", "concert").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), int64(1), "Hall", "Gala", "Concert", "", "", today, "19:00:00", "21:00:00"))
	events, err := s.Events.ListUpcoming(context.Background(), " Concert ", today)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Hall", events[0].VenueName)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.event_date >= ? ORDER BY")).WithArgs("2026-05-01").
		WillReturnRows(sqlmock.NewRows(cols))
	events, err = s.Events.ListUpcoming(context.Background(), "all", today)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGroupByName(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2026, 5, day, 0, 0, 0, 0, time.UTC) }
	groups := GroupByName([]model.Event{
		{ID: 1, Name: "Opera", Date: d(9)},
		{ID: 2, Name: "Ballet", Date: d(12)},
		{ID: 3, Name: "Opera", Date: d(3)},
		{ID: 4, Name: "Ballet", Date: d(3)},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "Ballet", groups[0].Name)
	assert.Equal(t, d(3), groups[0].EarliestDate)
	assert.Equal(t, 2, groups[1].ShowCount)
	assert.Equal(t, []int64{1, 3}, []int64{groups[1].Shows[0].ID, groups[1].Shows[1].ID})

	assert.Empty(t, GroupByName(nil))
}

func TestUserCredentials(t *testing.T) {
	s, mock := newMock(t)
	hash, err := utils.HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)
	cols := []string{"username", "name", "password_hash", "role", "created_at"}
	q := regexp.QuoteMeta("SELECT username,name,password_hash,role,created_at FROM users")

	mock.ExpectQuery(q).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("alice", "Alice", hash, model.RoleCustomer, time.Now()))
	u, ok, err := s.Users.CheckCredentials(context.Background(), " Alice ", "pw")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.RoleCustomer, u.Role)

	mock.ExpectQuery(q).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("alice", "Alice", hash, model.RoleCustomer, time.Now()))
	_, ok, err = s.Users.CheckCredentials(context.Background(), "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectQuery(q).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(cols))
	_, ok, err = s.Users.CheckCredentials(context.Background(), "ghost", "pw")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicate(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("bob", "Bob", sqlmock.AnyArg(), model.RoleCustomer).
		WillReturnError(&mysql.MySQLError{Number: 1062})
	_, err := s.Users.Create(context.Background(), "Bob", "Bob", "pw", model.RoleCustomer, bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
