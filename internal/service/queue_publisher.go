// Package service wires booking commits to outbound side effects: booking
// events on RabbitMQ and listing cache invalidation.
package service

import (
    "context"
    "encoding/json"
    "log"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/modex/screening-booking/internal/booking"
    q "github.com/modex/screening-booking/internal/queue"
)

// Publisher sends booking events to RabbitMQ.  It dials per publish; event
// volume is one message per booking so a pooled channel isn't needed.
type Publisher struct {
    URL string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// PublishBookingConfirmed publishes event to the booking.confirmed queue as
// a persistent message.  Errors are logged and returned; callers are free
// to ignore them.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event q.BookingConfirmedEvent) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(q.BookingConfirmedQueue, true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    event.EventID,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", q.BookingConfirmedQueue, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

// EventSender is the subset of Publisher the booking listener needs.
type EventSender interface {
    PublishBookingConfirmed(ctx context.Context, event q.BookingConfirmedEvent) error
}

// BookingEvents turns booking commits into BookingConfirmedEvents and
// publishes them off the request goroutine.
type BookingEvents struct {
    sender  EventSender
    timeout time.Duration
    now     func() time.Time
    async   bool
}

// NewBookingEvents returns a commit listener publishing through sender.
func NewBookingEvents(sender EventSender) *BookingEvents {
    return &BookingEvents{sender: sender, timeout: 5 * time.Second, now: time.Now, async: true}
}

// BookingCommitted implements booking.CommitListener.
func (b *BookingEvents) BookingCommitted(ctx context.Context, c booking.Confirmation) {
    ev := NewBookingConfirmedEvent(c, b.now())
    send := func() {
        sendCtx, cancel := context.WithTimeout(ctx, b.timeout)
        defer cancel()
        if err := b.sender.PublishBookingConfirmed(sendCtx, ev); err != nil {
            log.Printf("booking: event for booking=%d not published: %v", ev.BookingID, err)
        }
    }
    if b.async {
        go send()
        return
    }
    send()
}

// NewBookingConfirmedEvent maps a confirmation to its wire event.
func NewBookingConfirmedEvent(c booking.Confirmation, now time.Time) q.BookingConfirmedEvent {
    confirmed := c.Booking.CreatedAt
    if confirmed.IsZero() {
        confirmed = now
    }
    return q.BookingConfirmedEvent{
        EventID:        uuid.NewString(),
        BookingID:      c.Booking.ID,
        ScreeningID:    c.Booking.ScreeningID,
        ScreeningName:  c.Screening.Name,
        Venue:          c.Screening.Venue,
        StartTime:      c.Screening.StartTime.UTC().Format(time.RFC3339),
        CustomerID:     c.Booking.CustomerID,
        SeatCount:      c.Booking.SeatCount,
        SeatsRemaining: c.SeatsRemaining,
        ConfirmedAt:    confirmed.UTC().Format(time.RFC3339),
    }
}
