package supervisor

import (
	"errors"
	"fmt"
)

// Ошибки супервизора.
var (
	// ErrSpawnFailed — процесс не удалось запустить.
	ErrSpawnFailed = errors.New("spawn failed")

	// ErrChildExited — процесс завершился с ненулевым кодом.
	ErrChildExited = errors.New("child exited with failure")

	// ErrUnknownPolicy — неизвестная политика сбоев.
	ErrUnknownPolicy = errors.New("unknown failure policy")
)

// ChildError — сбой конкретного дочернего процесса.
type ChildError struct {
	Child    string // имя процесса
	ExitCode int    // код выхода (-1 при ошибке запуска)
	Err      error  // базовая ошибка (ErrSpawnFailed или ErrChildExited)
}

// Error реализует интерфейс error.
func (e *ChildError) Error() string {
	if errors.Is(e.Err, ErrSpawnFailed) {
		return fmt.Sprintf("child %s: %v", e.Child, e.Err)
	}
	return fmt.Sprintf("child %s: %v (exit code %d)", e.Child, e.Err, e.ExitCode)
}

// Unwrap возвращает базовую ошибку.
func (e *ChildError) Unwrap() error {
	return e.Err
}
