// Package cli реализует команды devstack.
//
// # Команды
//
//   - up      — запустить процессы плана и дождаться их завершения
//   - plan    — показать итоговый план (после шаблонов и разрешения путей)
//   - agents  — список точек входа агентов в backend/src
//   - history — история запусков из PostgreSQL
//   - events  — события запусков из RabbitMQ в реальном времени
//
// Каждая команда создаётся фабричной функцией (NewUpCmd и т.д.),
// принимающей outputFn и loggerFn — замыкания для ленивого создания
// Output и логгера после парсинга PersistentFlags.
//
// ## Output
//
// Таблицы (text/tabwriter) по умолчанию, JSON с флагом --json.
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
package cli
