package seating

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iliyamo/event-seat-inventory/internal/clock"
	"github.com/iliyamo/event-seat-inventory/internal/metrics"
	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// Committer turns a seat selection into a permanent ticket.
type Committer struct {
	store Store
	clock clock.Clock
	avail *Aggregator
	opts  options
}

func NewCommitter(store Store, clk clock.Clock, opts ...Option) *Committer {
	return &Committer{
		store: store,
		clock: clk,
		avail: NewAggregator(store),
		opts:  buildOptions(opts),
	}
}

// Commit writes a ticket for userID and returns its id.  ok is false when
// no ticket was written; callers show "booking failed, please retry".
//
// Seats already on a ticket for the event are refused.  That check is a
// plain read before the insert, so two concurrent commits for the same
// seat can both succeed unless a guard is configured.  Holds are neither
// consulted nor removed.  Without a guard a ticket id collision fails
// the booking; with one, up to the configured number of fresh ids are
// tried.
func (c *Committer) Commit(ctx context.Context, eventID int64, userID string, seats model.SeatSet) (ticketID int, ok bool) {
	seats = seats.Normalize()
	if len(seats) == 0 || userID == "" {
		metrics.BookingAttempts.WithLabelValues(metrics.OutcomeRejected).Inc()
		return 0, false
	}
	log := c.opts.log.With().Int64("event_id", eventID).Str("username", userID).Str("seats", seats.Key()).Logger()

	if err := c.precheck(ctx, eventID, seats); err != nil {
		c.fail(log, err, "booking rejected")
		return 0, false
	}

	guarded := c.opts.guard != nil
	if guarded {
		if err := c.opts.guard.Sell(ctx, eventID, seats); err != nil {
			c.fail(log, err, "booking rejected by seat guard")
			return 0, false
		}
	}

	attempts := 1
	if guarded {
		attempts += c.opts.retries
	}
	ticket := model.Ticket{EventID: eventID, UserID: userID, Seats: seats}
	var err error
	for i := 0; i < attempts; i++ {
		ticket.ID = c.opts.nextID()
		ticket.CreatedAt = c.clock.Now()
		err = c.store.InsertTicket(ctx, ticket)
		if err == nil || !errors.Is(err, ErrTicketIDTaken) {
			break
		}
		metrics.TicketIDCollisions.Inc()
		log.Warn().Int("ticket_id", ticket.ID).Msg("ticket id collision")
	}
	if err != nil {
		if guarded {
			if uerr := c.opts.guard.Unsell(context.WithoutCancel(ctx), eventID, seats); uerr != nil {
				log.Error().Err(uerr).Msg("releasing guarded seats failed")
			}
		}
		c.fail(log, err, "booking insert failed")
		return 0, false
	}

	metrics.BookingAttempts.WithLabelValues(metrics.OutcomeOK).Inc()
	log.Info().Int("ticket_id", ticket.ID).Msg("ticket booked")

	if c.opts.publisher != nil {
		if perr := c.opts.publisher.PublishTicketBooked(ctx, ticket); perr != nil {
			log.Warn().Err(perr).Int("ticket_id", ticket.ID).Msg("publishing ticket.booked failed")
		}
	}
	return ticket.ID, true
}

func (c *Committer) precheck(ctx context.Context, eventID int64, seats model.SeatSet) error {
	if c.opts.guard != nil {
		av, err := c.avail.Get(ctx, eventID)
		if err != nil {
			return err
		}
		return checkSellable(av, seats)
	}
	ticketed, err := c.store.TicketedSeats(ctx, eventID)
	if err != nil {
		return err
	}
	sold := labelSet(ticketed)
	for _, label := range seats {
		if _, taken := sold[label]; taken {
			return fmt.Errorf("%w: %s", ErrSeatUnavailable, label)
		}
	}
	return nil
}

func (c *Committer) fail(log zerolog.Logger, err error, msg string) {
	if errors.Is(err, ErrSeatUnavailable) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTopology) {
		metrics.BookingAttempts.WithLabelValues(metrics.OutcomeRejected).Inc()
		log.Info().Err(err).Msg(msg)
		return
	}
	metrics.BookingAttempts.WithLabelValues(metrics.OutcomeFault).Inc()
	log.Error().Err(err).Msg(msg)
}
