package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/devstack/internal/mq"
)

// NewEventsCmd создаёт команду просмотра событий в реальном времени.
func NewEventsCmd(outputFn func() *Output, loggerFn func() *slog.Logger) *cobra.Command {
	var amqpURL, pattern string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail run lifecycle events (requires up --events)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := loggerFn()
			conn, err := mq.NewConnection(amqpURL, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := mq.SetupTopology(ctx, conn); err != nil {
				return err
			}

			out := outputFn()
			err = mq.Tail(ctx, conn, mq.RoutingKey(pattern), func(msg *mq.Message) error {
				printEvent(out, msg)
				return nil
			}, logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&amqpURL, "amqp-url", getEnv("RABBITMQ_URL", mq.DefaultURL()), "RabbitMQ URL")
	cmd.Flags().StringVar(&pattern, "pattern", string(mq.RoutingKeyAll), "Routing key pattern (run.*, child.exited, #)")

	return cmd
}

// printEvent выводит одно событие строкой (или JSON-объектом с --json).
func printEvent(out *Output, msg *mq.Message) {
	if out.jsonMode {
		out.JSON(msg)
		return
	}

	ts := msg.Timestamp.Local().Format("15:04:05.000")

	switch msg.Type {
	case mq.MessageTypeRunStarted, mq.MessageTypeRunFinished:
		p, err := mq.ParsePayload[mq.RunEventPayload](msg)
		if err != nil {
			out.Line("%s  %-13s  <invalid payload: %v>", ts, msg.Type, err)
			return
		}
		out.Line("%s  %-13s  run=%s status=%s children=%d failed=%d",
			ts, msg.Type, p.RunID, p.Status, p.Children, p.Failed)

	case mq.MessageTypeChildStarted, mq.MessageTypeChildExited:
		p, err := mq.ParsePayload[mq.ChildEventPayload](msg)
		if err != nil {
			out.Line("%s  %-13s  <invalid payload: %v>", ts, msg.Type, err)
			return
		}
		line := "%s  %-13s  run=%s child=%s status=%s pid=%d exit=%d"
		fields := []any{ts, msg.Type, p.RunID, p.Name, p.Status, p.PID, p.ExitCode}
		if p.Error != "" {
			line += " error=%q"
			fields = append(fields, p.Error)
		}
		out.Line(line, fields...)

	default:
		out.Line("%s  %-13s  (unknown event)", ts, msg.Type)
	}
}
