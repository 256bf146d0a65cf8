package domain

// RunStatus — статус запуска группы процессов.
//
// Жизненный цикл:
//
//	RUNNING → DONE
//
// RUNNING выставляется сразу после фазы запуска (все spawn-запросы
// отправлены), DONE — когда последний дочерний процесс завершился.
type RunStatus string

const (
	// RunStatusRunning — хотя бы один дочерний процесс ещё работает.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusDone — все дочерние процессы завершились.
	RunStatusDone RunStatus = "DONE"
)

// IsTerminal возвращает true, если статус финальный.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusDone
}

// ChildStatus — статус дочернего процесса.
//
// Жизненный цикл:
//
//	(spawn) → RUNNING → EXITED
//	                  ↘ FAILED  (ненулевой код выхода)
//	                  ↘ STOPPED (остановлен супервизором при policy=abort)
//	(spawn) → SPAWN_FAILED
type ChildStatus string

const (
	// ChildStatusRunning — процесс запущен и ещё не завершился.
	ChildStatusRunning ChildStatus = "RUNNING"

	// ChildStatusExited — процесс завершился с кодом 0.
	ChildStatusExited ChildStatus = "EXITED"

	// ChildStatusFailed — процесс завершился с ненулевым кодом.
	ChildStatusFailed ChildStatus = "FAILED"

	// ChildStatusStopped — процесс остановлен супервизором.
	ChildStatusStopped ChildStatus = "STOPPED"

	// ChildStatusSpawnFailed — процесс не удалось запустить.
	ChildStatusSpawnFailed ChildStatus = "SPAWN_FAILED"
)

// IsTerminal возвращает true, если процесс больше не работает.
func (s ChildStatus) IsTerminal() bool {
	switch s {
	case ChildStatusExited, ChildStatusFailed, ChildStatusStopped, ChildStatusSpawnFailed:
		return true
	default:
		return false
	}
}

// IsFailure возвращает true для статусов, которые считаются сбоем запуска.
// STOPPED сбоем не считается: причиной остановки всегда является другой процесс.
func (s ChildStatus) IsFailure() bool {
	return s == ChildStatusFailed || s == ChildStatusSpawnFailed
}

// String возвращает строковое представление ChildStatus.
func (s ChildStatus) String() string {
	return string(s)
}
