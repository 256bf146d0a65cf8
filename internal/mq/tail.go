package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler — функция обработки полученного события.
type Handler func(msg *Message) error

// resubscribeDelay — пауза перед повторной подпиской, если соединение
// не переподключалось (например, закрыт только канал).
const resubscribeDelay = 5 * time.Second

// Tail подписывается на события супервизора и вызывает handler
// для каждого сообщения до отмены ctx.
//
// Очередь подписчика временная: после переподключения она
// объявляется заново, события за время разрыва теряются.
func Tail(ctx context.Context, conn *Connection, pattern RoutingKey, handler Handler, logger *slog.Logger) error {
	t := &tailer{
		subscribe: func(ctx context.Context) (<-chan amqp.Delivery, error) {
			return subscribe(ctx, conn, pattern)
		},
		reconnect: conn.ReconnectNotify(),
		retry:     resubscribeDelay,
		pattern:   pattern,
		logger:    logger,
	}
	return t.run(ctx, handler)
}

// tailer — цикл подписки: подписаться, потреблять, при обрыве
// дождаться переподключения или таймера и подписаться снова.
type tailer struct {
	subscribe func(ctx context.Context) (<-chan amqp.Delivery, error)
	reconnect <-chan struct{}
	retry     time.Duration
	pattern   RoutingKey
	logger    *slog.Logger
}

func (t *tailer) run(ctx context.Context, handler Handler) error {
	for {
		deliveries, err := t.subscribe(ctx)
		if err != nil {
			t.logger.Error("failed to subscribe", "pattern", t.pattern, "error", err, "retry_in", t.retry)
		} else {
			t.logger.Debug("subscribed to events", "pattern", t.pattern)

			if err := consume(ctx, deliveries, handler, t.logger); err != nil {
				return err
			}
			t.logger.Warn("deliveries channel closed, resubscribing", "retry_in", t.retry)
		}

		timer := time.NewTimer(t.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-t.reconnect:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// subscribe объявляет временную очередь и начинает потребление.
func subscribe(ctx context.Context, conn *Connection, pattern RoutingKey) (<-chan amqp.Delivery, error) {
	var deliveries <-chan amqp.Delivery

	err := conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		queue, err := declareTailQueue(ch, pattern)
		if err != nil {
			return err
		}

		deliveries, err = ch.Consume(
			string(queue), // queue
			"",            // consumer tag (auto-generated)
			true,          // auto-ack (временная очередь, повторная доставка не нужна)
			true,          // exclusive
			false,         // no-local
			false,         // no-wait
			nil,           // args
		)
		if err != nil {
			return fmt.Errorf("consume: %w", err)
		}
		return nil
	})

	return deliveries, err
}

// consume обрабатывает сообщения до закрытия канала или отмены ctx.
// Возвращает nil при закрытии канала доставки, ошибку handler или ctx.Err().
func consume(ctx context.Context, deliveries <-chan amqp.Delivery, handler Handler, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case raw, ok := <-deliveries:
			if !ok {
				return nil
			}

			msg, err := DecodeMessage(raw.Body)
			if err != nil {
				logger.Warn("skipping malformed event", "error", err, "body", string(raw.Body))
				continue
			}

			if err := handler(msg); err != nil {
				return err
			}
		}
	}
}

// DecodeMessage разбирает тело AMQP сообщения.
func DecodeMessage(body []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	return &msg, nil
}

// ParsePayload парсит payload сообщения в указанный тип.
func ParsePayload[T any](msg *Message) (T, error) {
	var result T

	// Payload после json.Unmarshal — map[string]any
	payloadBytes, err := json.Marshal(msg.Payload)
	if err != nil {
		return result, fmt.Errorf("marshal payload: %w", err)
	}

	if err := json.Unmarshal(payloadBytes, &result); err != nil {
		return result, fmt.Errorf("unmarshal payload: %w", err)
	}

	return result, nil
}
