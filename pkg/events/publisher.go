// Package events publishes settlement lifecycle events to RabbitMQ so
// downstream consumers (notifications, analytics) can react without polling
// the database.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/rabbitmq/amqp091-go"
)

const exchangeName = "tuma.settlements"

// Publisher holds the RabbitMQ connection and channel for publishing
// settlement events to the durable topic exchange.
type Publisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

var _ ports.EventPublisher = (*Publisher)(nil)

// NewPublisher connects to RabbitMQ and declares the settlement exchange. A
// bounded dial timeout keeps startup from hanging on a dead broker.
func NewPublisher(amqpURL string) (*Publisher, error) {
	conn, err := amqp091.DialConfig(amqpURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("failed to dial AMQP broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchangeName, err)
	}

	return &Publisher{conn: conn, channel: ch}, nil
}

// Publish sends one JSON event to the settlement exchange.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", routingKey, err)
	}
	return nil
}

// Close gracefully closes the channel and connection to RabbitMQ.
func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
