package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeRequests Exchange = "mentor.requests"
	ExchangeDLQ      Exchange = "mentor.dlq"
)

// Queues — имена очередей.
const (
	QueueAssistPending   Queue = "assist.pending"
	QueueAssistCompleted Queue = "assist.completed"
	QueueDLQAssist       Queue = "dlq.assist"
)

// Routing keys.
const (
	RoutingKeyPending   RoutingKey = "pending"
	RoutingKeyCompleted RoutingKey = "completed"
	RoutingKeyDLQAssist RoutingKey = "assist"
)

type binding struct {
	queue      Queue
	routingKey RoutingKey
	exchange   Exchange
	args       amqp.Table
}

// topology — полный список очередей и их привязок.
func topology() []binding {
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQAssist),
	}
	return []binding{
		// assist.pending — неразбираемые и повторно упавшие запросы уходят в DLQ
		{QueueAssistPending, RoutingKeyPending, ExchangeRequests, dlqArgs},
		{QueueAssistCompleted, RoutingKeyCompleted, ExchangeRequests, nil},
		{QueueDLQAssist, RoutingKeyDLQAssist, ExchangeDLQ, nil},
	}
}

// SetupTopology объявляет обменники, очереди и привязки. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range []Exchange{ExchangeRequests, ExchangeDLQ} {
			err := ch.ExchangeDeclare(
				string(ex), // name
				"direct",   // type
				true,       // durable
				false,      // auto-deleted
				false,      // internal
				false,      // no-wait
				nil,        // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		for _, b := range topology() {
			_, err := ch.QueueDeclare(
				string(b.queue), // name
				true,            // durable
				false,           // delete when unused
				false,           // exclusive
				false,           // no-wait
				b.args,          // arguments
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}

			if err := ch.QueueBind(string(b.queue), string(b.routingKey), string(b.exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}
		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Mentor RabbitMQ Topology:

    mentor.requests (direct)
    ├── assist.pending [routing: pending]
    │       Consumer: mentor-worker
    │       DLQ: dlq.assist
    └── assist.completed [routing: completed]
            Consumer: clients awaiting results

    mentor.dlq (direct)
    └── dlq.assist [routing: assist]
            Manual processing
  `
}
