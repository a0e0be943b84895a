// Package broker republishes order store events to RabbitMQ so systems
// outside this process (printers, displays, reporting) can follow orders.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/manwah-pos/api/internal/model"
	"github.com/manwah-pos/api/internal/store"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange is the topic exchange order events are published to. Routing keys
// are event types such as "order.item_status_changed".
const Exchange = "order_events"

const queueSize = 256

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Message is the JSON body of every published event.
type Message struct {
	Type  string      `json:"type"`
	Order model.Order `json:"order"`
	At    time.Time   `json:"at"`
}

// Publisher is a store.Notifier that forwards events to RabbitMQ from its own
// goroutine. Notify never blocks the store.
type Publisher struct {
	ch     Channel
	queue  chan store.Event
	logger *slog.Logger
}

// NewPublisher declares the exchange and returns a publisher. Call Run to
// start delivering.
func NewPublisher(ch Channel, logger *slog.Logger) (*Publisher, error) {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}
	return &Publisher{
		ch:     ch,
		queue:  make(chan store.Event, queueSize),
		logger: logger,
	}, nil
}

// Notify queues e for publishing, dropping it when the queue is full.
func (p *Publisher) Notify(e store.Event) {
	select {
	case p.queue <- e:
	default:
		p.logger.Warn("broker queue full, dropping event", "type", e.Type, "order_id", e.Order.ID)
	}
}

// Run publishes queued events until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-p.queue:
			if err := p.publish(ctx, e); err != nil {
				p.logger.Error("publish order event failed", "type", e.Type, "order_id", e.Order.ID, "error", err)
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, e store.Event) error {
	body, err := json.Marshal(Message{Type: e.Type, Order: e.Order, At: e.At})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(pctx, Exchange, e.Type, false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     fmt.Sprintf("%s-%d", e.Order.ID, e.Order.Version),
		CorrelationId: e.Order.ID.String(),
		Timestamp:     e.At.UTC(),
		Body:          body,
		Headers: amqp.Table{
			"x-source": "order-store",
		},
	})
}

// Conn is an open broker connection and its channel.
type Conn struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to url and opens a channel.
func Dial(url string) (*Conn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &Conn{conn: conn, ch: ch}, nil
}

// Channel returns the channel for NewPublisher.
func (c *Conn) Channel() *amqp.Channel { return c.ch }

// Close closes the channel and connection.
func (c *Conn) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
