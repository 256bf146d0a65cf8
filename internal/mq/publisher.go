package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/devstack/internal/domain"
)

// MessageType — тип сообщения (совпадает с routing key).
type MessageType string

// Типы сообщений.
const (
	MessageTypeRunStarted   MessageType = MessageType(RoutingKeyRunStarted)
	MessageTypeRunFinished  MessageType = MessageType(RoutingKeyRunFinished)
	MessageTypeChildStarted MessageType = MessageType(RoutingKeyChildStarted)
	MessageTypeChildExited  MessageType = MessageType(RoutingKeyChildExited)
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка (RunEventPayload или ChildEventPayload).
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// RunEventPayload — payload событий run.started / run.finished.
type RunEventPayload struct {
	RunID      uuid.UUID `json:"run_id"`
	Status     string    `json:"status"`
	Policy     string    `json:"policy"`
	Children   int       `json:"children"`
	Failed     int       `json:"failed"`
	DurationMs int64     `json:"duration_ms,omitempty"`
}

// ChildEventPayload — payload событий child.started / child.exited.
type ChildEventPayload struct {
	RunID      uuid.UUID `json:"run_id"`
	ChildID    uuid.UUID `json:"child_id"`
	Name       string    `json:"name"`
	Index      int       `json:"index"`
	Command    []string  `json:"command"`
	Dir        string    `json:"dir,omitempty"`
	PID        int       `json:"pid,omitempty"`
	Status     string    `json:"status"`
	ExitCode   int       `json:"exit_code"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
}

// NewRunMessage создаёт сообщение о run.
func NewRunMessage(msgType MessageType, run *domain.Run) *Message {
	return newMessage(msgType, RunEventPayload{
		RunID:      run.ID,
		Status:     string(run.Status),
		Policy:     run.Policy,
		Children:   len(run.Children),
		Failed:     len(run.Failed()),
		DurationMs: run.Duration().Milliseconds(),
	})
}

// NewChildMessage создаёт сообщение о дочернем процессе.
func NewChildMessage(msgType MessageType, child *domain.Child) *Message {
	return newMessage(msgType, ChildEventPayload{
		RunID:      child.RunID,
		ChildID:    child.ID,
		Name:       child.Name(),
		Index:      child.Index,
		Command:    child.Spec.Command,
		Dir:        child.Spec.Dir,
		PID:        child.PID,
		Status:     child.Status.String(),
		ExitCode:   child.ExitCode,
		Error:      child.Error,
		DurationMs: child.Duration().Milliseconds(),
	})
}

func newMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Publisher публикует события супервизора в RabbitMQ.
//
// Реализует supervisor.Observer.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в exchange событий. Routing key — тип сообщения.
func (p *Publisher) Publish(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeEvents), // exchange
			string(msg.Type),       // routing key
			false,                  // mandatory
			false,                  // immediate
			amqp.Publishing{
				ContentType: "application/json",
				MessageId:   msg.ID,
				Timestamp:   msg.Timestamp,
				Type:        string(msg.Type),
				Body:        body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish %s: %w", msg.Type, err)
		}

		p.logger.Debug("published event",
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// RunStarted реализует supervisor.Observer.
func (p *Publisher) RunStarted(ctx context.Context, run *domain.Run) error {
	return p.Publish(ctx, NewRunMessage(MessageTypeRunStarted, run))
}

// ChildStarted реализует supervisor.Observer.
func (p *Publisher) ChildStarted(ctx context.Context, _ *domain.Run, child *domain.Child) error {
	return p.Publish(ctx, NewChildMessage(MessageTypeChildStarted, child))
}

// ChildExited реализует supervisor.Observer.
func (p *Publisher) ChildExited(ctx context.Context, _ *domain.Run, child *domain.Child) error {
	return p.Publish(ctx, NewChildMessage(MessageTypeChildExited, child))
}

// RunFinished реализует supervisor.Observer.
func (p *Publisher) RunFinished(ctx context.Context, run *domain.Run) error {
	return p.Publish(ctx, NewRunMessage(MessageTypeRunFinished, run))
}
