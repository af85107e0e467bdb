// Package events publishes domain events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"finbot/internal/extraction"
	"finbot/internal/uuid"
)

// RoutingKeyExpenseExtracted is the routing key of ExpenseExtractedEvent.
const RoutingKeyExpenseExtracted = "expense.extracted"

// ExpenseExtractedEvent is published after a voice note yields expenses.
type ExpenseExtractedEvent struct {
	EventID    string               `json:"event_id"`
	UserID     uint                 `json:"user_id"`
	TelegramID int64                `json:"telegram_id"`
	Transcript string               `json:"transcript"`
	Expenses   []extraction.Expense `json:"expenses"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// Publisher sends events to a message broker.
type Publisher interface {
	PublishExpenseExtracted(ctx context.Context, event ExpenseExtractedEvent) error
	Close()
}

// NoopPublisher is used when no broker is configured. It only logs.
type NoopPublisher struct {
	log *zap.SugaredLogger
}

// NewNoopPublisher creates a publisher that drops events.
func NewNoopPublisher(log *zap.SugaredLogger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

// PublishExpenseExtracted logs and discards the event.
func (p *NoopPublisher) PublishExpenseExtracted(_ context.Context, event ExpenseExtractedEvent) error {
	p.log.Debugw("event publish skipped", "routing_key", RoutingKeyExpenseExtracted, "user_id", event.UserID)
	return nil
}

// Close does nothing.
func (p *NoopPublisher) Close() {}

// RabbitPublisher publishes JSON events to a durable topic exchange.
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *zap.SugaredLogger
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewRabbitPublisher dials the broker and declares the exchange.
func NewRabbitPublisher(amqpURL, exchange string, log *zap.SugaredLogger) (*RabbitPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange, log: log}, nil
}

// PublishExpenseExtracted publishes event under RoutingKeyExpenseExtracted.
func (p *RabbitPublisher) PublishExpenseExtracted(ctx context.Context, event ExpenseExtractedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.publish(ctx, RoutingKeyExpenseExtracted, event.EventID, body)
}

func (p *RabbitPublisher) publish(ctx context.Context, routingKey, messageID string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err == nil {
		return nil
	}

	// A closed channel is reopened once before giving up.
	if p.channel.IsClosed() && !p.conn.IsClosed() {
		p.log.Warnw("rabbitmq channel closed; reopening", "exchange", p.exchange, "error", err)
		ch, chErr := p.conn.Channel()
		if chErr != nil {
			return fmt.Errorf("reopen channel: %w", chErr)
		}
		p.channel = ch
		err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// Close closes the channel and connection.
func (p *RabbitPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
