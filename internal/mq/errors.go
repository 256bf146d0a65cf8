package mq

import "errors"

// ErrNoChannel — AMQP канал недоступен (нет соединения).
var ErrNoChannel = errors.New("no channel available")
