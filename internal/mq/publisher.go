package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Mentor/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeAssistPending   MessageType = "assist.pending"
	MessageTypeAssistCompleted MessageType = "assist.completed"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — конверт сообщения.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// AssistPendingPayload — запрос, ожидающий обработки.
type AssistPendingPayload struct {
	RequestID uuid.UUID `json:"request_id"`
	Text      string    `json:"text"`
	StudentID string    `json:"student_id"`
	Document  string    `json:"document,omitempty"`
}

// AssistCompletedPayload — результат обработки запроса.
type AssistCompletedPayload struct {
	RequestID uuid.UUID        `json:"request_id"`
	StudentID string           `json:"student_id"`
	Response  *domain.Response `json:"response,omitempty"`
	Degraded  bool             `json:"degraded"`

	// Error — причина отказа, если запрос не прошёл валидацию.
	Error string `json:"error,omitempty"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishAssistPending ставит запрос в очередь обработки.
// Потребитель: mentor-worker.
func (p *Publisher) PublishAssistPending(ctx context.Context, payload AssistPendingPayload) error {
	if payload.RequestID == uuid.Nil {
		payload.RequestID = uuid.New()
	}
	return p.Publish(ctx, ExchangeRequests, RoutingKeyPending, &Message{
		ID:        payload.RequestID.String(),
		Type:      MessageTypeAssistPending,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}

// PublishAssistCompleted публикует результат обработки.
func (p *Publisher) PublishAssistCompleted(ctx context.Context, payload AssistCompletedPayload) error {
	return p.Publish(ctx, ExchangeRequests, RoutingKeyCompleted, &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeAssistCompleted,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}
