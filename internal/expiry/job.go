// Package expiry runs the deferred deletion of seat locks.  Every lock
// gets exactly one pending job keyed by (event, seat set); scheduling the
// same key again moves the deadline instead of adding a second job, which
// is how a re-lock refreshes its hold.
package expiry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// Job is one pending lock expiry.  LockedAt is the creation time of the
// lock row the job was scheduled for; the handler removes only rows
// created up to that instant, so a re-lock that lands while the job is
// running survives.
type Job struct {
	EventID  int64
	Seats    model.SeatSet
	DueAt    time.Time
	LockedAt time.Time
}

// Key identifies the lock the job belongs to.
func (j Job) Key() string {
	return strconv.FormatInt(j.EventID, 10) + "|" + j.Seats.Key()
}

func parseKey(key string) (Job, error) {
	idPart, seatPart, ok := strings.Cut(key, "|")
	if !ok {
		return Job{}, fmt.Errorf("expiry: malformed job key %q", key)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return Job{}, fmt.Errorf("expiry: malformed event id in %q: %w", key, err)
	}
	return Job{EventID: id, Seats: model.ParseSeatSet(seatPart)}, nil
}

// Handler performs the expiry.  A returned error causes a retry later.
type Handler func(ctx context.Context, job Job) error

// Scheduler accepts expiry jobs.
type Scheduler interface {
	Schedule(ctx context.Context, job Job) error
}

// Poller fires every job whose deadline has passed and reports how many
// ran.
type Poller interface {
	RunDue(ctx context.Context) (int, error)
}

// Run polls p every interval until ctx is cancelled.  It is meant to run
// under the server's root context so that pending expiries outlive the
// requests that scheduled them.
func Run(ctx context.Context, p Poller, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info().Dur("interval", interval).Msg("lock expiry runner started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("lock expiry runner stopped")
			return
		case <-ticker.C:
			n, err := p.RunDue(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("lock expiry poll failed")
				continue
			}
			if n > 0 {
				log.Debug().Int("expired", n).Msg("lock expiry poll")
			}
		}
	}
}
