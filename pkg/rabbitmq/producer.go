/**
 * @description
 * This file provides the RabbitMQ event producer for the reward-service.
 * Downstream consumers (payout processing, analytics, notifications) react to
 * the events published here; the service itself never blocks a settlement on
 * event delivery.
 *
 * @dependencies
 * - github.com/rabbitmq/amqp091-go: The Go client for RabbitMQ.
 */

package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange all reward events are published to.
const ExchangeName = "adreach.events"

// Routing keys for reward events.
const (
	RoutingKeyCampaignCompleted = "campaign.completed"
	RoutingKeyScanRejected      = "scan.rejected"
	RoutingKeyEarningRecorded   = "earning.recorded"
)

// Publisher is the narrow interface the application layer publishes through.
// It exists so services can be tested with fakes and booted with a no-op
// fallback when the broker is unreachable.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	Close()
}

// EventProducer is the live AMQP-backed publisher.
type EventProducer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// EventProducerFallback is a no-op publisher used when RabbitMQ is
// unavailable at boot. Settlement must not depend on the broker.
type EventProducerFallback struct{}

// Publish logs and drops the event.
func (f *EventProducerFallback) Publish(_ context.Context, exchange, routingKey string, _ interface{}) error {
	log.Printf("level=warn component=rabbitmq msg=\"event dropped, producer not connected\" exchange=%s routing_key=%s", exchange, routingKey)
	return nil
}

// Close is a no-op.
func (f *EventProducerFallback) Close() {}

// NewEventProducer connects to RabbitMQ, declares the events exchange, and
// returns a ready producer. The dial is bounded so a down broker cannot stall
// service boot.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	conn, err := amqp.DialConfig(amqpURL, amqp.Config{
		Dial: amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ at %s: %w", sanitizeAMQPURL(amqpURL), err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", ExchangeName, err)
	}

	log.Printf("level=info component=rabbitmq msg=\"event producer connected\" exchange=%s", ExchangeName)
	return &EventProducer{conn: conn, channel: channel}, nil
}

// Publish marshals the body to JSON and publishes it as a persistent message.
func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal event body: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", routingKey, err)
	}
	return nil
}

// Close shuts down the channel and connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// sanitizeAMQPURL strips credentials from an AMQP URL before logging it.
func sanitizeAMQPURL(amqpURL string) string {
	u, err := url.Parse(amqpURL)
	if err != nil {
		return "invalid-amqp-url"
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	return u.String()
}
