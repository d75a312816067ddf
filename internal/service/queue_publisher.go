// Package queue_publisher provides functions to publish domain events to
// RabbitMQ and the engine.Notifier implementation built on them.  Errors
// are logged and returned to allow callers to ignore failures without
// interrupting the main request flow: by the time anything here runs, the
// capacity transaction has already committed.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/arinvel/slot-reservation/internal/model"
	q "github.com/arinvel/slot-reservation/internal/queue"
)

// publish declares the target queue (idempotent, durable) and sends one
// persistent JSON message to it over a short-lived connection.  The
// function never panics; any error is logged and returned so the caller
// can choose to ignore it.
func publish(ctx context.Context, queueName string, payload interface{}) error {
	conn, err := amqp.Dial(q.BrokerURL())
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

	// Ensure the queue exists. Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}

// PublishTicketReissueRequested publishes the signal that a booking's
// ticket was revoked and needs a replacement token.
func PublishTicketReissueRequested(ctx context.Context, bookingID uint64) error {
	return publish(ctx, q.TicketReissueQueue, q.TicketReissueRequestedEvent{
		EventID:   uuid.NewString(),
		BookingID: bookingID,
		EmittedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// PublishBookingAudit fans one committed audit entry out to external
// reporting consumers.
func PublishBookingAudit(ctx context.Context, e model.AuditEntry) error {
	return publish(ctx, q.BookingAuditQueue, q.BookingAuditEvent{
		EventID:       uuid.NewString(),
		AuditID:       e.ID,
		BookingID:     e.BookingID,
		Kind:          string(e.Kind),
		OldSlotID:     e.OldSlotID,
		NewSlotID:     e.NewSlotID,
		OldPriceCents: e.OldPriceCents,
		NewPriceCents: e.NewPriceCents,
		ActorID:       e.ActorID,
		OccurredAt:    e.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// Notifier implements engine.Notifier on the RabbitMQ publishers.
// Publish failures are logged inside publish and swallowed here; the
// engine's contract is that committed transactions never unwind over a
// delivery problem.
type Notifier struct{}

func (Notifier) TicketReissueRequested(ctx context.Context, bookingID uint64) {
	_ = PublishTicketReissueRequested(ctx, bookingID)
}

func (Notifier) BookingAudit(ctx context.Context, e model.AuditEntry) {
	_ = PublishBookingAudit(ctx, e)
}
