// Package telemetry обеспечивает наблюдаемость супервизора.
//
// Включает:
//   - logging.go — structured logging через slog (в stderr: stdout занят дочерними процессами)
//   - metrics.go — Prometheus метрики запусков и дочерних процессов
//   - server.go  — HTTP endpoint /metrics и /healthz
package telemetry
