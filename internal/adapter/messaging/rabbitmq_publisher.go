package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/simaogato/walletflow-backend/internal/config"
	"github.com/simaogato/walletflow-backend/internal/domain"
)

// EventTypeTransferCompleted is the type of the event emitted after a transfer commits
const EventTypeTransferCompleted = "transfer.completed"

// TransferCompletedEvent is the JSON body published for every completed transfer
type TransferCompletedEvent struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	TransferID       string    `json:"transfer_id"`
	SenderWalletID   string    `json:"sender_wallet_id"`
	ReceiverWalletID string    `json:"receiver_wallet_id"`
	Amount           string    `json:"amount"`
	Memo             string    `json:"memo"`
	Status           string    `json:"status"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// NewTransferCompletedEvent builds the event body for a completed transfer
func NewTransferCompletedEvent(t *domain.Transfer) TransferCompletedEvent {
	return TransferCompletedEvent{
		EventID:          uuid.New().String(),
		EventType:        EventTypeTransferCompleted,
		TransferID:       t.ID.String(),
		SenderWalletID:   t.SenderWalletID.String(),
		ReceiverWalletID: t.ReceiverWalletID.String(),
		Amount:           t.Amount.String(),
		Memo:             t.Memo,
		Status:           string(t.Status),
		OccurredAt:       t.UpdatedAt,
	}
}

// Channel is the subset of *amqp.Channel the publisher uses
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes transfer events to a topic exchange
type RabbitMQPublisher struct {
	mu         sync.Mutex
	conn       io.Closer
	channel    Channel
	exchange   string
	routingKey string
}

// NewRabbitMQPublisher connects to RabbitMQ and declares the exchange
func NewRabbitMQPublisher(cfg config.RabbitMQConfig) (*RabbitMQPublisher, error) {
	// Connect to RabbitMQ
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	// Open channel
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := newPublisher(channel, conn, cfg.Exchange, cfg.RoutingKey)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	return p, nil
}

func newPublisher(channel Channel, conn io.Closer, exchange, routingKey string) (*RabbitMQPublisher, error) {
	// Declare exchange (topic exchange for routing)
	err := channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitMQPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// PublishTransferCompleted publishes a persistent transfer.completed message
func (p *RabbitMQPublisher) PublishTransferCompleted(ctx context.Context, t *domain.Transfer) error {
	event := NewTransferCompletedEvent(t)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Type:         event.EventType,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close closes the channel and the connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil {
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	return nil
}
