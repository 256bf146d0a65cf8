package domain

import (
	"time"

	"github.com/google/uuid"
)

// Child — дочерний процесс внутри run.
type Child struct {
	// ID — уникальный идентификатор дочернего процесса.
	ID uuid.UUID `json:"id"`

	// RunID — ссылка на родительский run.
	RunID uuid.UUID `json:"run_id"`

	// Index — позиция в плане.
	Index int `json:"index"`

	// Spec — с чем процесс был запущен.
	Spec ChildSpec `json:"spec"`

	// Status — текущий статус.
	Status ChildStatus `json:"status"`

	// PID — идентификатор процесса ОС. 0, если процесс не запустился.
	PID int `json:"pid,omitempty"`

	// ExitCode — код выхода. Для процессов, убитых сигналом, 128+signal.
	ExitCode int `json:"exit_code"`

	// Error — текст ошибки запуска или ожидания.
	Error string `json:"error,omitempty"`

	// StartedAt — время успешного запуска.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения (или неудачного запуска).
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Name возвращает имя процесса из Spec.
func (c *Child) Name() string {
	return c.Spec.Name
}

// MarkRunning фиксирует успешный запуск.
func (c *Child) MarkRunning(pid int) {
	now := time.Now()
	c.Status = ChildStatusRunning
	c.PID = pid
	c.StartedAt = &now
}

// MarkSpawnFailed фиксирует неудачный запуск.
func (c *Child) MarkSpawnFailed(err string) {
	now := time.Now()
	c.Status = ChildStatusSpawnFailed
	c.ExitCode = -1
	c.Error = err
	c.FinishedAt = &now
}

// MarkExited фиксирует завершение процесса.
// stopped — процесс был остановлен супервизором.
func (c *Child) MarkExited(code int, err string, stopped bool) {
	now := time.Now()
	c.ExitCode = code
	c.Error = err
	c.FinishedAt = &now

	switch {
	case stopped:
		c.Status = ChildStatusStopped
	case code != 0 || err != "":
		c.Status = ChildStatusFailed
	default:
		c.Status = ChildStatusExited
	}
}

// Duration возвращает время работы процесса.
// Возвращает 0, если процесс не запускался или ещё работает.
func (c *Child) Duration() time.Duration {
	if c.StartedAt == nil || c.FinishedAt == nil {
		return 0
	}
	return c.FinishedAt.Sub(*c.StartedAt)
}
