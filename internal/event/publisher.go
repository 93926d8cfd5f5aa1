package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher publishes engine events to RabbitMQ. Publishing is
// best-effort: the in-memory ledger is authoritative and a broker outage
// must never fail the operation that produced the event.
type Publisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

// NewPublisher creates a new event publisher.
func NewPublisher(conn *RabbitMQConnection) *Publisher {
	return &Publisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

// Publish sends one event to the named queue.
func (p *Publisher) Publish(ctx context.Context, queue string, payload any) error {
	_, err := p.conn.Channel.QueueDeclare(
		queue, // queue name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",    // exchange
		queue, // routing key (queue name)
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()
	return nil
}

// PublishReading publishes a reading update, logging instead of failing
// on broker errors.
func (p *Publisher) PublishReading(ctx context.Context, ev ReadingEvent) {
	if err := p.Publish(ctx, ReadingQueue, ev); err != nil {
		slog.Error("failed to publish reading event", "location", ev.Location, "error", err)
	}
}

// PublishPolicy publishes a policy lifecycle event, logging instead of
// failing on broker errors.
func (p *Publisher) PublishPolicy(ctx context.Context, ev PolicyEvent) {
	if err := p.Publish(ctx, PolicyQueue, ev); err != nil {
		slog.Error("failed to publish policy event", "policy_id", ev.PolicyID, "event_type", ev.EventType, "error", err)
	}
}

// PublishGovernance publishes a proposal finalization event, logging
// instead of failing on broker errors.
func (p *Publisher) PublishGovernance(ctx context.Context, ev GovernanceEvent) {
	if err := p.Publish(ctx, GovernanceQueue, ev); err != nil {
		slog.Error("failed to publish governance event", "proposal_id", ev.ProposalID, "error", err)
	}
}

// HealthCheck reports whether the underlying connection is usable.
func (p *Publisher) HealthCheck() bool {
	return p.conn != nil && p.conn.Connection != nil && !p.conn.Connection.IsClosed()
}

// GetMetrics returns publisher counters.
func (p *Publisher) GetMetrics() map[string]any {
	return map[string]any{
		"messages_published": p.messagesPublished,
		"messages_failed":    p.messagesFailed,
		"last_publish_time":  p.lastPublishTime,
	}
}
