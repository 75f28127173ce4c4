package seating

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

const (
	DefaultLockTTL         = 300 * time.Second
	DefaultTicketIDRetries = 3

	minTicketID = 100000
	maxTicketID = 999999
)

type options struct {
	lockTTL   time.Duration
	guard     SeatGuard
	retries   int
	publisher Publisher
	nextID    func() int
	log       zerolog.Logger
}

func defaultOptions() options {
	return options{
		lockTTL: DefaultLockTTL,
		retries: DefaultTicketIDRetries,
		nextID:  randomTicketID,
		log:     zlog.With().Str("component", "seating").Logger(),
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures the lock manager, the booking committer and the
// service that bundles them.
type Option func(*options)

// WithLockTTL overrides the 300s hold duration.
func WithLockTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.lockTTL = d
		}
	}
}

// WithGuard switches locking and booking to the hardened mode: seats are
// re-validated and claimed through g before anything is written.
func WithGuard(g SeatGuard) Option {
	return func(o *options) { o.guard = g }
}

// WithTicketIDRetries sets how many fresh ids a guarded booking tries
// after a ticket id collision.  Unguarded bookings never retry.
func WithTicketIDRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.retries = n
		}
	}
}

// WithPublisher announces committed tickets through p.
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithTicketIDSource replaces the random ticket id generator.
func WithTicketIDSource(next func() int) Option {
	return func(o *options) {
		if next != nil {
			o.nextID = next
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func randomTicketID() int {
	return minTicketID + rand.Intn(maxTicketID-minTicketID+1)
}
