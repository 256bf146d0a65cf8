// Package mq публикует события жизненного цикла супервизора в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — exchange devstack.events и очереди подписчиков
//   - publisher.go  — Publisher: supervisor.Observer, публикующий события
//   - tail.go       — Tail: подписка на события (команда devstack events)
//
// Типы сообщений (они же routing keys):
//   - run.started    — фаза запуска завершена, run в RUNNING
//   - child.started  — результат запуска процесса (RUNNING или SPAWN_FAILED)
//   - child.exited   — процесс завершился
//   - run.finished   — все процессы завершились, run в DONE
//
// Exchange:
//   - devstack.events (topic) — все события
package mq
