// devstack — запуск локального окружения разработки одной командой.
//
// Стартует все процессы плана одновременно (медиасервер, голосовой агент,
// фронтенд) и ждёт, пока каждый из них не завершится.
//
// Использование:
//
//	devstack [--json] <command> [flags]
//
// Команды:
//
//	up       Запустить процессы и ждать их завершения
//	plan     Показать итоговый план
//	agents   Список агентов в backend/src
//	history  История запусков (PostgreSQL)
//	events   События запусков (RabbitMQ)
//
// Переменные окружения:
//
//	LOG_LEVEL     — DEBUG, INFO, WARN, ERROR (default: INFO)
//	LOG_FORMAT    — json, text (default: json)
//	DB_URL        — PostgreSQL для истории запусков
//	RABBITMQ_URL  — RabbitMQ для событий
//	METRICS_ADDR  — адрес HTTP сервера метрик (например, :9090)
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/devstack/internal/cli"
	"github.com/shaiso/devstack/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "devstack",
		Short:         "devstack — run the local development stack with one command",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }
	loggerFn := func() *slog.Logger {
		return telemetry.SetupLogger().With("version", version)
	}

	rootCmd.AddCommand(
		cli.NewUpCmd(outputFn, loggerFn),
		cli.NewPlanCmd(outputFn),
		cli.NewAgentsCmd(outputFn),
		cli.NewHistoryCmd(outputFn),
		cli.NewEventsCmd(outputFn, loggerFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
