// Package seatguard implements seating.SeatGuard on Redis.  Each seat of
// an event has a hold key and a sold key; Lua scripts check and write all
// seats of a request in one step so concurrent callers cannot split a
// selection.
package seatguard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-seat-inventory/internal/model"
	"github.com/iliyamo/event-seat-inventory/internal/seating"
)

// KEYS[1..n]    hold keys
// KEYS[n+1..2n] sold keys
// ARGV[1] owner (canonical seat set key)
// ARGV[2] ttl in milliseconds
// ARGV[3..] seat labels, same order as the keys
const holdScript = `
local n = #KEYS / 2
local owner = ARGV[1]
local ttl = tonumber(ARGV[2])
for i = 1, n do
    if redis.call("EXISTS", KEYS[n + i]) == 1 then
        return {0, ARGV[2 + i]}
    end
    local cur = redis.call("GET", KEYS[i])
    if cur and cur ~= owner then
        return {0, ARGV[2 + i]}
    end
end
for i = 1, n do
    redis.call("SET", KEYS[i], owner, "PX", ttl)
end
return {1, ""}
`

// same layout as holdScript, ARGV[2] unused
const sellScript = `
local n = #KEYS / 2
local owner = ARGV[1]
for i = 1, n do
    if redis.call("EXISTS", KEYS[n + i]) == 1 then
        return {0, ARGV[2 + i]}
    end
    local cur = redis.call("GET", KEYS[i])
    if cur and cur ~= owner then
        return {0, ARGV[2 + i]}
    end
end
for i = 1, n do
    redis.call("SET", KEYS[n + i], owner)
end
return {1, ""}
`

// KEYS[1..n] hold or sold keys, ARGV[1] owner
const unsellScript = `
local removed = 0
for i = 1, #KEYS do
    if redis.call("GET", KEYS[i]) == ARGV[1] then
        redis.call("DEL", KEYS[i])
        removed = removed + 1
    end
end
return removed
`

// Guard is the Redis-backed seat guard.
type Guard struct {
	rdb    *redis.Client
	hold   *redis.Script
	sell   *redis.Script
	unsell *redis.Script
}

func New(rdb *redis.Client) *Guard {
	return &Guard{
		rdb:    rdb,
		hold:   redis.NewScript(holdScript),
		sell:   redis.NewScript(sellScript),
		unsell: redis.NewScript(unsellScript),
	}
}

func holdKey(eventID int64, label string) string {
	return "seatguard:" + strconv.FormatInt(eventID, 10) + ":hold:" + label
}

func soldKey(eventID int64, label string) string {
	return "seatguard:" + strconv.FormatInt(eventID, 10) + ":sold:" + label
}

func (g *Guard) Hold(ctx context.Context, eventID int64, seats model.SeatSet, ttl time.Duration) error {
	return g.claim(ctx, g.hold, eventID, seats, ttl)
}

// Release deletes the hold keys of seats still owned by this seat set.
func (g *Guard) Release(ctx context.Context, eventID int64, seats model.SeatSet) error {
	return g.drop(ctx, "release", holdKey, eventID, seats)
}

func (g *Guard) Sell(ctx context.Context, eventID int64, seats model.SeatSet) error {
	return g.claim(ctx, g.sell, eventID, seats, 0)
}

func (g *Guard) Unsell(ctx context.Context, eventID int64, seats model.SeatSet) error {
	return g.drop(ctx, "unsell", soldKey, eventID, seats)
}

func (g *Guard) drop(ctx context.Context, op string, key func(int64, string) string, eventID int64, seats model.SeatSet) error {
	seats = seats.Sorted()
	if len(seats) == 0 {
		return nil
	}
	keys := make([]string, len(seats))
	for i, l := range seats {
		keys[i] = key(eventID, l)
	}
	if err := g.unsell.Run(ctx, g.rdb, keys, seats.Key()).Err(); err != nil {
		return fmt.Errorf("seatguard: %s: %w", op, err)
	}
	return nil
}

func (g *Guard) claim(ctx context.Context, script *redis.Script, eventID int64, seats model.SeatSet, ttl time.Duration) error {
	seats = seats.Sorted()
	if len(seats) == 0 {
		return nil
	}
	n := len(seats)
	keys := make([]string, 2*n)
	args := make([]interface{}, 0, n+2)
	args = append(args, seats.Key(), ttl.Milliseconds())
	for i, l := range seats {
		keys[i] = holdKey(eventID, l)
		keys[n+i] = soldKey(eventID, l)
		args = append(args, l)
	}

	res, err := script.Run(ctx, g.rdb, keys, args...).Slice()
	if err != nil {
		return fmt.Errorf("seatguard: %w", err)
	}
	if len(res) != 2 {
		return fmt.Errorf("seatguard: unexpected script result %v", res)
	}
	okFlag, _ := res[0].(int64)
	if okFlag == 1 {
		return nil
	}
	seat, _ := res[1].(string)
	return fmt.Errorf("%w: %s", seating.ErrSeatUnavailable, seat)
}
