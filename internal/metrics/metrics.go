// Package metrics holds the Prometheus collectors of the seat inventory.
// They are registered on the default registry and served by promhttp on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "seating"

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFault    = "fault"
)

var (
	// LockAttempts counts Acquire calls by outcome.
	LockAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lock_attempts_total",
		Help:      "Seat lock attempts by outcome.",
	}, []string{"outcome"})

	// LockExpiries counts locks deleted by the expiry runner.
	LockExpiries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lock_expiries_total",
		Help:      "Seat locks removed after their TTL.",
	})

	// BookingAttempts counts Commit calls by outcome.
	BookingAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_attempts_total",
		Help:      "Ticket booking attempts by outcome.",
	}, []string{"outcome"})

	// TicketIDCollisions counts inserts rejected because the random id
	// was already used.
	TicketIDCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticket_id_collisions_total",
		Help:      "Ticket inserts that hit an existing ticket id.",
	})
)
