package model

import "time"

// Lock is a temporary hold on a set of seats for one event.  Locks are
// not tied to a user; they only hide the seats from other viewers until
// they expire.  A lock is identified by its event and the canonical key
// of its seat set.
//
// Fields:
//  ID        – random identifier used for logs and tracing only.
//  EventID   – event the seats belong to.
//  Seats     – the held seat labels.
//  CreatedAt – when the hold started; expiry is CreatedAt + TTL.
type Lock struct {
    ID        string    // locked_seats.lock_id
    EventID   int64     // locked_seats.event_id
    Seats     SeatSet   // locked_seats.seats
    CreatedAt time.Time // locked_seats.created_at
}
