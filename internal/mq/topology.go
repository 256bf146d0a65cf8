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

// ExchangeEvents — обменник событий супервизора.
const ExchangeEvents Exchange = "devstack.events"

// Routing keys.
const (
	RoutingKeyRunStarted   RoutingKey = "run.started"
	RoutingKeyRunFinished  RoutingKey = "run.finished"
	RoutingKeyChildStarted RoutingKey = "child.started"
	RoutingKeyChildExited  RoutingKey = "child.exited"

	// RoutingKeyAll — все события.
	RoutingKeyAll RoutingKey = "#"
)

// SetupTopology объявляет exchange событий.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, declareExchange)
}

// declareExchange создаёт durable topic exchange.
func declareExchange(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		string(ExchangeEvents), // name
		amqp.ExchangeTopic,     // type
		true,                   // durable
		false,                  // auto-deleted
		false,                  // internal
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
	}
	return nil
}

// declareTailQueue создаёт временную очередь подписчика и привязывает её
// к exchange событий. Очередь удаляется при закрытии соединения.
func declareTailQueue(ch *amqp.Channel, pattern RoutingKey) (Queue, error) {
	if err := declareExchange(ch); err != nil {
		return "", err
	}

	q, err := ch.QueueDeclare(
		"",    // name (генерируется сервером)
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return "", fmt.Errorf("declare tail queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,                 // queue name
		string(pattern),        // routing key
		string(ExchangeEvents), // exchange
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		return "", fmt.Errorf("bind queue %s to %s: %w", q.Name, ExchangeEvents, err)
	}

	return Queue(q.Name), nil
}
