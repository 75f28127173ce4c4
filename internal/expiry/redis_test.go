package expiry

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-inventory/internal/clock"
	"github.com/iliyamo/event-seat-inventory/internal/model"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisQueue_FiresOnceAtDeadline(t *testing.T) {
	rdb := newTestRedis(t)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewManual(start)
	rec := &recorder{}
	q := NewRedisQueue(rdb, clk, rec.handle, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, q.Schedule(ctx, Job{EventID: 7, Seats: model.SeatSet{"A2", "A1"}, DueAt: start.Add(300 * time.Second)}))
	require.NoError(t, q.Schedule(ctx, Job{EventID: 7, Seats: model.SeatSet{"A1", "A2"}, DueAt: start.Add(300 * time.Second)}))

	pending, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	clk.Advance(299 * time.Second)
	n, err := q.RunDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	clk.Advance(time.Second)
	n, err = q.RunDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = q.RunDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.Len(t, rec.jobs, 1)
	assert.Equal(t, int64(7), rec.jobs[0].EventID)
	assert.Equal(t, model.SeatSet{"A1", "A2"}, rec.jobs[0].Seats)
}

func TestRedisQueue_SharedAcrossInstances(t *testing.T) {
	rdb := newTestRedis(t)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(start)
	rec := &recorder{}
	a := NewRedisQueue(rdb, clk, rec.handle, zerolog.Nop())
	b := NewRedisQueue(rdb, clk, rec.handle, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, a.Schedule(ctx, Job{EventID: 1, Seats: model.SeatSet{"B4"}, DueAt: start.Add(-time.Second)}))

	n1, err := a.RunDue(ctx)
	require.NoError(t, err)
	n2, err := b.RunDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n1+n2)
	assert.Len(t, rec.jobs, 1)
}

func TestRedisQueue_CarriesLockTime(t *testing.T) {
	rdb := newTestRedis(t)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewManual(start)
	rec := &recorder{err: errors.New("db down")}
	q := NewRedisQueue(rdb, clk, rec.handle, zerolog.Nop())
	ctx := context.Background()
	lockedAt := start.Add(-300*time.Second + 250*time.Millisecond)

	require.NoError(t, q.Schedule(ctx, Job{EventID: 3, Seats: model.SeatSet{"C1"}, DueAt: start, LockedAt: lockedAt}))

	// a failed run re-queues the job with the same lock time
	n, err := q.RunDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()
	clk.Advance(defaultRetryDelay)
	n, err = q.RunDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, rec.jobs, 1)
	assert.True(t, lockedAt.Equal(rec.jobs[0].LockedAt))

	left, err := rdb.HLen(ctx, defaultQueueKey+":locked-at").Result()
	require.NoError(t, err)
	assert.Zero(t, left)
}

func TestRedisQueue_LogsLostRequeue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	failing := func(context.Context, Job) error {
		mr.Close()
		return errors.New("db down")
	}
	q := NewRedisQueue(rdb, clock.NewFixed(start), failing, zerolog.New(&buf))
	ctx := context.Background()

	require.NoError(t, q.Schedule(ctx, Job{EventID: 5, Seats: model.SeatSet{"E5"}, DueAt: start}))
	n, err := q.RunDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"member":"5|E5"`)
	assert.Contains(t, buf.String(), "re-queue failed")
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	job, err := parseKey("42|A1,B2")
	require.NoError(t, err)
	assert.Equal(t, int64(42), job.EventID)
	assert.Equal(t, model.SeatSet{"A1", "B2"}, job.Seats)

	_, err = parseKey("no-separator")
	assert.Error(t, err)
	_, err = parseKey("x|A1")
	assert.Error(t, err)
}
