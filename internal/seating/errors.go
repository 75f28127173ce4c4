package seating

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTopology = errors.New("invalid venue topology")
	ErrStoreFault      = errors.New("store fault")
	ErrNotFound        = errors.New("not found")
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrTicketIDTaken   = errors.New("ticket id already taken")
)

// StoreFault tags cause as a store failure.  The result matches both
// ErrStoreFault and cause under errors.Is.
func StoreFault(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreFault, op, cause)
}
