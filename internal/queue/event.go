// Package queue defines the messages exchanged over RabbitMQ and the
// consumer that records them.
package queue

import (
    "fmt"
    "strings"
)

// TicketBookedQueue is the durable queue every committed ticket is
// announced on.
const TicketBookedQueue = "ticket.booked"

// TicketBookedEvent is published after a ticket has been written.  It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type TicketBookedEvent struct {
    TicketID int      `json:"ticket_id"`
    EventID  int64    `json:"event_id"`
    Username string   `json:"username"`
    Seats    []string `json:"seats"`
    BookedAt string   `json:"booked_at"` // RFC 3339, UTC
}

// LogLine renders the event as one line of logs/tickets.log.
func (ev TicketBookedEvent) LogLine() string {
    return fmt.Sprintf("[%s] Ticket booked | ticket_id=%d | event_id=%d | username=%q | seats=[%s]\n",
        ev.BookedAt, ev.TicketID, ev.EventID, ev.Username, strings.Join(ev.Seats, ","))
}
