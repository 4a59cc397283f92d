// Package queue publishes domain events to RabbitMQ so that other systems
// (billing, kitchen displays, analytics) can follow order activity.
// Delivery is best effort: failures are logged and never reach the caller.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// DialFunc opens a connection and a channel on it.
type DialFunc func(url string) (Channel, io.Closer, error)

// Dial connects with amqp091-go.
func Dial(url string) (Channel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("channel open: %w", err)
	}
	return ch, conn, nil
}

// AMQPPublisher sends events to a durable queue on the default exchange.
// The connection is opened lazily and reopened after a failed publish.
type AMQPPublisher struct {
	url   string
	queue string
	dial  DialFunc
	log   zerolog.Logger

	mu   sync.Mutex
	ch   Channel
	conn io.Closer
}

// NewAMQPPublisher returns a publisher for queue. A nil dial uses Dial.
func NewAMQPPublisher(url, queue string, dial DialFunc, logger zerolog.Logger) *AMQPPublisher {
	if dial == nil {
		dial = Dial
	}
	return &AMQPPublisher{
		url:   url,
		queue: queue,
		dial:  dial,
		log:   logger.With().Str("component", "amqp").Str("queue", queue).Logger(),
	}
}

// Publish implements services.EventPublisher. It always returns nil.
func (p *AMQPPublisher) Publish(ctx context.Context, ev domain.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error().Err(err).Msg("marshal event failed")
		return nil
	}
	if err := p.publish(ctx, body); err != nil {
		p.log.Warn().Err(err).Str("event", string(ev.Type)).Msg("rabbitmq publish failed")
	}
	return nil
}

func (p *AMQPPublisher) publish(ctx context.Context, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if err := p.connectLocked(); err != nil {
			return err
		}
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.closeLocked()
		return err
	}
	return nil
}

func (p *AMQPPublisher) connectLocked() error {
	ch, conn, err := p.dial(p.url)
	if err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		if conn != nil {
			_ = conn.Close()
		}
		return fmt.Errorf("queue declare: %w", err)
	}
	p.ch, p.conn = ch, conn
	return nil
}

func (p *AMQPPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}
