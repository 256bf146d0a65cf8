package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/shaiso/devstack/internal/domain"
	"github.com/shaiso/devstack/internal/mq"
	"github.com/shaiso/devstack/internal/repo"
	"github.com/shaiso/devstack/internal/supervisor"
	"github.com/shaiso/devstack/internal/telemetry"
)

// upFlags — флаги команды up помимо planFlags.
type upFlags struct {
	policy         string
	stopTimeout    time.Duration
	ignoreFailures bool
	history        bool
	dbURL          string
	events         bool
	amqpURL        string
	metricsAddr    string
}

// NewUpCmd создаёт команду запуска плана.
func NewUpCmd(outputFn func() *Output, loggerFn func() *slog.Logger) *cobra.Command {
	var pf planFlags
	var uf upFlags

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Start all plan children and wait until every one exits",
		Long: `Start all plan children concurrently and block until every one of them exits.

Children share the terminal: stdin, stdout and stderr are inherited.
Ctrl-C is delivered by the terminal to the whole process group; devstack
itself never signals children unless --policy=abort.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.build()
			if err != nil {
				return err
			}

			policy, err := supervisor.ParsePolicy(uf.policy)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := loggerFn()
			ctx = telemetry.WithLogger(ctx, logger)
			observers, cleanup := uf.observers(ctx, logger)
			defer cleanup()

			sup := supervisor.New(supervisor.Config{
				Plan:        p,
				Policy:      policy,
				StopTimeout: uf.stopTimeout,
				Observer:    observers,
			})

			run, runErr := sup.Run(ctx)

			out := outputFn()
			printRun(out, run)

			if runErr != nil && !uf.ignoreFailures {
				return fmt.Errorf("%d of %d children failed: %w", len(run.Failed()), len(run.Children), runErr)
			}
			return nil
		},
	}

	pf.register(cmd)

	cmd.Flags().StringVar(&uf.policy, "policy", string(supervisor.PolicyContinue), "Failure policy: continue or abort")
	cmd.Flags().DurationVar(&uf.stopTimeout, "stop-timeout", 10*time.Second, "Grace period between SIGTERM and SIGKILL (abort policy)")
	cmd.Flags().BoolVar(&uf.ignoreFailures, "ignore-failures", false, "Exit 0 after all children exit regardless of their status")
	cmd.Flags().BoolVar(&uf.history, "history", false, "Record the run in PostgreSQL")
	cmd.Flags().StringVar(&uf.dbURL, "db-url", "", "PostgreSQL DSN (default $DB_URL)")
	cmd.Flags().BoolVar(&uf.events, "events", false, "Publish lifecycle events to RabbitMQ")
	cmd.Flags().StringVar(&uf.amqpURL, "amqp-url", getEnv("RABBITMQ_URL", mq.DefaultURL()), "RabbitMQ URL")
	cmd.Flags().StringVar(&uf.metricsAddr, "metrics-addr", getEnv("METRICS_ADDR", ""), "Serve Prometheus metrics on this address (disabled if empty)")

	return cmd
}

// observers собирает получателей событий запуска.
//
// Метрики включены всегда. История и события подключаются по флагам;
// недоступность PostgreSQL или RabbitMQ не мешает запуску процессов.
func (f *upFlags) observers(ctx context.Context, logger *slog.Logger) (supervisor.Observers, func()) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observers := supervisor.Observers{telemetry.NewMetrics(reg)}

	if f.metricsAddr != "" {
		// Сервер живёт до конца команды, а не до сигнала:
		// после Ctrl-C процессы ещё завершаются.
		serveCtx, stopServe := context.WithCancel(context.WithoutCancel(ctx))
		telemetry.Serve(serveCtx, f.metricsAddr, reg, logger)
		closers = append(closers, stopServe)
	}

	if f.history {
		pool, err := repo.NewPool(ctx, f.dbURL)
		if err == nil {
			err = repo.EnsureSchema(ctx, pool)
			if err != nil {
				pool.Close()
			}
		}
		if err != nil {
			logger.Warn("run history disabled", "error", err)
		} else {
			observers = append(observers, repo.NewHistory(pool))
			closers = append(closers, pool.Close)
			logger.Debug("run history enabled")
		}
	}

	if f.events {
		conn, err := mq.NewConnection(f.amqpURL, logger)
		if err == nil {
			err = mq.SetupTopology(ctx, conn)
			if err != nil {
				conn.Close()
			}
		}
		if err != nil {
			logger.Warn("event publishing disabled", "error", err)
		} else {
			observers = append(observers, mq.NewPublisher(conn, logger))
			closers = append(closers, func() { conn.Close() })
			logger.Debug("event publishing enabled")
		}
	}

	return observers, cleanup
}

// printRun выводит итог запуска.
func printRun(out *Output, run *domain.Run) {
	rows := make([][]string, len(run.Children))
	for i, c := range run.Children {
		rows[i] = childRow(c)
	}
	out.Print(
		[]string{"NAME", "STATUS", "PID", "EXIT", "DURATION", "ERROR"},
		rows,
		run,
	)
}

func childRow(c *domain.Child) []string {
	pid := "-"
	if c.PID != 0 {
		pid = fmt.Sprint(c.PID)
	}
	exit := "-"
	if c.Status.IsTerminal() {
		exit = fmt.Sprint(c.ExitCode)
	}
	return []string{
		c.Name(),
		string(c.Status),
		pid,
		exit,
		formatDuration(c.Duration()),
		orDash(c.Error),
	}
}

// getEnv возвращает значение переменной окружения или default.
func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
