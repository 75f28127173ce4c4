package expiry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-seat-inventory/internal/clock"
)

const (
	defaultQueueKey = "seating:lock-expiry"
	defaultBatch    = 100
)

// KEYS[1] deadline zset, KEYS[2] locked-at hash
// ARGV[1] score, ARGV[2] member, ARGV[3] locked-at (unix ms)
const scheduleScript = `
redis.call("ZADD", KEYS[1], ARGV[1], ARGV[2])
redis.call("HSET", KEYS[2], ARGV[2], ARGV[3])
return 1
`

// same layout; only adds when no newer job for the member exists
const retryScript = `
local added = redis.call("ZADD", KEYS[1], "NX", ARGV[1], ARGV[2])
if added == 1 then
    redis.call("HSET", KEYS[2], ARGV[2], ARGV[3])
end
return added
`

// KEYS as above, ARGV[1] member.  Returns {claimed, locked-at}.
const claimScript = `
if redis.call("ZREM", KEYS[1], ARGV[1]) == 0 then
    return {0, ""}
end
local at = redis.call("HGET", KEYS[2], ARGV[1])
redis.call("HDEL", KEYS[2], ARGV[1])
if not at then
    at = ""
end
return {1, at}
`

// RedisQueue keeps pending expiries in a sorted set scored by deadline in
// Unix milliseconds, with each job's lock creation time in a hash beside
// it.  The member is the job key itself, so re-scheduling a lock only
// updates its score.  Several server instances may poll the same set: a
// job is handled by whichever instance removes it first.
type RedisQueue struct {
	rdb      *redis.Client
	clock    clock.Clock
	handler  Handler
	log      zerolog.Logger
	key      string
	lockedAt string
	batch    int64
	retry    time.Duration
	schedule *redis.Script
	requeue  *redis.Script
	claim    *redis.Script
}

// NewRedisQueue returns a queue stored under the default key.
func NewRedisQueue(rdb *redis.Client, clk clock.Clock, handler Handler, log zerolog.Logger) *RedisQueue {
	return &RedisQueue{
		rdb:      rdb,
		clock:    clk,
		handler:  handler,
		log:      log,
		key:      defaultQueueKey,
		lockedAt: defaultQueueKey + ":locked-at",
		batch:    defaultBatch,
		retry:    defaultRetryDelay,
		schedule: redis.NewScript(scheduleScript),
		requeue:  redis.NewScript(retryScript),
		claim:    redis.NewScript(claimScript),
	}
}

// Schedule upserts the job's deadline and lock creation time.
func (q *RedisQueue) Schedule(ctx context.Context, job Job) error {
	return q.schedule.Run(ctx, q.rdb, []string{q.key, q.lockedAt},
		job.DueAt.UnixMilli(), job.Key(), encodeMillis(job.LockedAt)).Err()
}

// RunDue claims and handles up to one batch of due jobs.
func (q *RedisQueue) RunDue(ctx context.Context) (int, error) {
	now := q.clock.Now()
	members, err := q.rdb.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: q.batch,
	}).Result()
	if err != nil {
		return 0, err
	}
	fired := 0
	for _, m := range members {
		claimed, lockedAt, err := q.take(ctx, m)
		if err != nil {
			return fired, err
		}
		if !claimed {
			continue // another instance claimed it
		}
		job, err := parseKey(m)
		if err != nil {
			q.log.Error().Err(err).Str("member", m).Msg("dropping malformed lock expiry")
			continue
		}
		job.DueAt = now
		job.LockedAt = lockedAt
		if err := q.handler(ctx, job); err != nil {
			q.log.Warn().Err(err).Int64("event_id", job.EventID).Str("seats", job.Seats.Key()).Msg("lock expiry failed, will retry")
			// NX keeps a deadline set by a concurrent re-lock.
			if rerr := q.requeue.Run(ctx, q.rdb, []string{q.key, q.lockedAt},
				now.Add(q.retry).UnixMilli(), m, encodeMillis(lockedAt)).Err(); rerr != nil {
				q.log.Error().Err(rerr).Str("member", m).Msg("lock expiry lost: re-queue failed")
			}
			continue
		}
		fired++
	}
	return fired, nil
}

func (q *RedisQueue) take(ctx context.Context, member string) (bool, time.Time, error) {
	res, err := q.claim.Run(ctx, q.rdb, []string{q.key, q.lockedAt}, member).Slice()
	if err != nil {
		return false, time.Time{}, err
	}
	if len(res) != 2 {
		return false, time.Time{}, fmt.Errorf("expiry: unexpected claim result %#v", res)
	}
	if ok, _ := res[0].(int64); ok != 1 {
		return false, time.Time{}, nil
	}
	raw, _ := res[1].(string)
	return true, decodeMillis(raw), nil
}

// Pending returns the number of queued jobs.
func (q *RedisQueue) Pending(ctx context.Context) (int64, error) {
	return q.rdb.ZCard(ctx, q.key).Result()
}

func encodeMillis(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func decodeMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || s == "" {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
