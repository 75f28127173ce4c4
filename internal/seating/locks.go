package seating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-seat-inventory/internal/clock"
	"github.com/iliyamo/event-seat-inventory/internal/expiry"
	"github.com/iliyamo/event-seat-inventory/internal/metrics"
	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// LockManager places temporary holds on seat sets.  Each hold is one
// store row plus one expiry job keyed by (event, seat set).
type LockManager struct {
	store     Store
	scheduler expiry.Scheduler
	clock     clock.Clock
	avail     *Aggregator
	opts      options
}

func NewLockManager(store Store, scheduler expiry.Scheduler, clk clock.Clock, opts ...Option) *LockManager {
	return &LockManager{
		store:     store,
		scheduler: scheduler,
		clock:     clk,
		avail:     NewAggregator(store),
		opts:      buildOptions(opts),
	}
}

// Acquire holds seats on the event for the lock TTL and reports whether
// the hold was written.  A previous hold on the identical seat set is
// replaced, which refreshes its TTL.  Without a guard the seats are not
// checked against current bookings or other holds.  Faults are logged
// and reported as false.
func (m *LockManager) Acquire(ctx context.Context, eventID int64, seats model.SeatSet) bool {
	seats = seats.Normalize()
	if len(seats) == 0 {
		metrics.LockAttempts.WithLabelValues(metrics.OutcomeRejected).Inc()
		return false
	}
	log := m.opts.log.With().Int64("event_id", eventID).Str("seats", seats.Key()).Logger()

	if m.opts.guard != nil {
		if err := m.claim(ctx, eventID, seats); err != nil {
			m.fail(log, err, "seat lock rejected")
			return false
		}
	}

	// created_at is stored with millisecond precision; the expiry job
	// compares against the exact stored value.
	now := m.clock.Now().Truncate(time.Millisecond)
	if _, err := m.store.DeleteLock(ctx, eventID, seats); err != nil {
		m.release(ctx, log, eventID, seats)
		m.fail(log, err, "seat lock: clearing previous hold failed")
		return false
	}
	lock := model.Lock{ID: uuid.NewString(), EventID: eventID, Seats: seats, CreatedAt: now}
	if err := m.store.InsertLock(ctx, lock); err != nil {
		m.release(ctx, log, eventID, seats)
		m.fail(log, err, "seat lock: insert failed")
		return false
	}
	job := expiry.Job{EventID: eventID, Seats: seats, DueAt: now.Add(m.opts.lockTTL), LockedAt: now}
	if err := m.scheduler.Schedule(ctx, job); err != nil {
		// a hold nobody will expire must not stay behind
		if _, derr := m.store.DeleteLock(context.WithoutCancel(ctx), eventID, seats); derr != nil {
			log.Error().Err(derr).Msg("seat lock: rollback after schedule failure failed")
		}
		m.release(ctx, log, eventID, seats)
		m.fail(log, err, "seat lock: scheduling expiry failed")
		return false
	}

	metrics.LockAttempts.WithLabelValues(metrics.OutcomeOK).Inc()
	log.Info().Str("lock_id", lock.ID).Time("expires_at", job.DueAt).Msg("seats locked")
	return true
}

// claim validates the seats against the grid and the ticketed seats and
// then takes them in the guard.
func (m *LockManager) claim(ctx context.Context, eventID int64, seats model.SeatSet) error {
	av, err := m.avail.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if err := checkSellable(av, seats); err != nil {
		return err
	}
	return m.opts.guard.Hold(ctx, eventID, seats, m.opts.lockTTL)
}

// release gives back a guard hold taken by this call when the lock row
// could not be written.
func (m *LockManager) release(ctx context.Context, log zerolog.Logger, eventID int64, seats model.SeatSet) {
	if m.opts.guard == nil {
		return
	}
	if err := m.opts.guard.Release(context.WithoutCancel(ctx), eventID, seats); err != nil {
		log.Error().Err(err).Msg("seat lock: releasing guard hold failed")
	}
}

func (m *LockManager) fail(log zerolog.Logger, err error, msg string) {
	if errors.Is(err, ErrSeatUnavailable) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTopology) {
		metrics.LockAttempts.WithLabelValues(metrics.OutcomeRejected).Inc()
		log.Info().Err(err).Msg(msg)
		return
	}
	metrics.LockAttempts.WithLabelValues(metrics.OutcomeFault).Inc()
	log.Error().Err(err).Msg(msg)
}

// checkSellable rejects seats that are off the grid, excluded or already
// ticketed.
func checkSellable(av Availability, seats model.SeatSet) error {
	for _, label := range seats {
		switch av.State(label) {
		case model.SeatExcluded, model.SeatBooked:
			return fmt.Errorf("%w: %s", ErrSeatUnavailable, label)
		}
	}
	return nil
}

// ExpireHandler returns the expiry job handler that deletes the hold a
// job belongs to.  Only locks created up to the job's LockedAt go away; a
// job without one, queued by an older release, deletes every identical
// lock.  A hold that is already gone counts as done.
func ExpireHandler(store Store, log zerolog.Logger) expiry.Handler {
	return func(ctx context.Context, job expiry.Job) error {
		var (
			n   int64
			err error
		)
		if job.LockedAt.IsZero() {
			n, err = store.DeleteLock(ctx, job.EventID, job.Seats)
		} else {
			n, err = store.ExpireLock(ctx, job.EventID, job.Seats, job.LockedAt)
		}
		if err != nil {
			return err
		}
		if n > 0 {
			metrics.LockExpiries.Inc()
		}
		log.Info().Int64("event_id", job.EventID).Str("seats", job.Seats.Key()).Int64("deleted", n).Msg("seat lock expired")
		return nil
	}
}
