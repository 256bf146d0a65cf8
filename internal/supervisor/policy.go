package supervisor

import (
	"fmt"
	"strings"
)

// Policy — что делать при сбое одного из процессов.
type Policy string

const (
	// PolicyContinue — зафиксировать сбой и продолжать ждать остальных.
	PolicyContinue Policy = "continue"

	// PolicyAbort — остановить все работающие процессы.
	PolicyAbort Policy = "abort"
)

// ParsePolicy парсит строку в Policy. Пустая строка — PolicyContinue.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyContinue:
		return PolicyContinue, nil
	case PolicyAbort:
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// String возвращает строковое представление Policy.
func (p Policy) String() string {
	return string(p)
}
