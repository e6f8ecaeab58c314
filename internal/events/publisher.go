package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"storefront/internal/domain"
)

const (
	queueOrderCreated       = "order.created"
	queueOrderStatusChanged = "order.status.changed"

	publishTimeout = 3 * time.Second
)

// Publisher emits order lifecycle events to durable RabbitMQ queues so
// downstream consumers (email, fulfillment) survive broker restarts.
type Publisher struct {
	channel *amqp.Channel
}

// NewPublisher declares the queues on a fresh channel. Queues are durable
// and messages persistent; delivery is at-least-once.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	for _, queue := range []string{queueOrderCreated, queueOrderStatusChanged} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			ch.Close()
			return nil, err
		}
	}
	return &Publisher{channel: ch}, nil
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

type orderCreatedEvent struct {
	EventID    string    `json:"eventId"`
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurredAt"`
}

type statusChangedEvent struct {
	EventID    string    `json:"eventId"`
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (p *Publisher) OrderCreated(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, queueOrderCreated, orderCreatedEvent{
		EventID:    uuid.NewString(),
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Total:      o.Total.StringFixed(2),
		OccurredAt: time.Now().UTC(),
	})
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, o *domain.Order, from domain.OrderStatus) error {
	return p.publish(ctx, queueOrderStatusChanged, statusChangedEvent{
		EventID:    uuid.NewString(),
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		From:       string(from),
		To:         string(o.Status),
		OccurredAt: time.Now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, queue string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.channel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Nop is used when no broker is configured.
type Nop struct{}

func (Nop) OrderCreated(context.Context, *domain.Order) error                          { return nil }
func (Nop) OrderStatusChanged(context.Context, *domain.Order, domain.OrderStatus) error { return nil }
