package model

import "time"

// Ticket permanently binds a user to a set of seats for one event.
// Tickets are never updated or deleted by the seat inventory.
type Ticket struct {
    ID        int       `json:"ticket_id"`  // tickets.ticket_id
    EventID   int64     `json:"event_id"`   // tickets.event_id
    UserID    string    `json:"username"`   // tickets.username
    Seats     SeatSet   `json:"seats"`      // tickets.seats
    CreatedAt time.Time `json:"created_at"` // tickets.created_at
}

// TicketDetail is a ticket joined with the display fields of its event
// and venue.  It is what a user sees when listing their tickets.
type TicketDetail struct {
    Ticket
    EventName string    `json:"event_name"`
    Date      time.Time `json:"date"`
    StartTime string    `json:"start_time"`
    VenueName string    `json:"venue_name"`
}
