// Package service holds the outbound adapters of the seat inventory.
package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"

    "github.com/iliyamo/event-seat-inventory/internal/model"
    "github.com/iliyamo/event-seat-inventory/internal/queue"
)

// TicketPublisher announces committed tickets on the ticket.booked queue.
// It dials per message; bookings are rare enough that a pooled channel
// is not needed.
type TicketPublisher struct {
    url string
    log zerolog.Logger
}

func NewTicketPublisher(url string, log zerolog.Logger) *TicketPublisher {
    return &TicketPublisher{url: url, log: log}
}

// TicketBookedEvent converts a ticket into its broker message.
func TicketBookedEvent(t model.Ticket) queue.TicketBookedEvent {
    seats := []string(t.Seats)
    if seats == nil {
        seats = []string{}
    }
    return queue.TicketBookedEvent{
        TicketID: t.ID,
        EventID:  t.EventID,
        Username: t.UserID,
        Seats:    seats,
        BookedAt: t.CreatedAt.UTC().Format(time.RFC3339),
    }
}

// PublishTicketBooked marks the message persistent.  Errors are logged
// and returned; the caller decides whether they matter.
func (p *TicketPublisher) PublishTicketBooked(ctx context.Context, t model.Ticket) error {
    body, err := json.Marshal(TicketBookedEvent(t))
    if err != nil {
        return err
    }

    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn().Err(err).Msg("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn().Err(err).Msg("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queue.TicketBookedQueue, true, false, false, false, nil); err != nil {
        p.log.Warn().Err(err).Msg("rabbitmq: queue declare failed")
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue.TicketBookedQueue, false, false, pub); err != nil {
        p.log.Warn().Err(err).Msg("rabbitmq: publish failed")
        return err
    }
    return nil
}
