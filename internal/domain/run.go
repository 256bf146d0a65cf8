package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — один запуск группы процессов.
//
// Каждый вызов супервизора создаёт новый Run с новым ID:
// между запусками нет общего состояния.
type Run struct {
	// ID — уникальный идентификатор запуска.
	ID uuid.UUID `json:"id"`

	// Status — RUNNING или DONE.
	Status RunStatus `json:"status"`

	// Policy — политика обработки сбоев, с которой выполнялся запуск.
	Policy string `json:"policy"`

	// Children — дочерние процессы в порядке плана.
	Children []*Child `json:"children"`

	// StartedAt — время начала фазы запуска.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время перехода в DONE.
	// Nil, пока запуск не завершён.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewRun создаёт Run для плана. Children заполняются в порядке плана.
func NewRun(plan Plan, policy string) *Run {
	run := &Run{
		ID:        uuid.New(),
		Policy:    policy,
		StartedAt: time.Now(),
		Children:  make([]*Child, plan.Len()),
	}
	for i := range run.Children {
		run.Children[i] = &Child{
			ID:    uuid.New(),
			RunID: run.ID,
			Index: i,
			Spec:  plan.At(i),
		}
	}
	return run
}

// MarkRunning переводит run в RUNNING.
func (r *Run) MarkRunning() {
	r.Status = RunStatusRunning
}

// MarkDone переводит run в DONE.
func (r *Run) MarkDone() {
	now := time.Now()
	r.Status = RunStatusDone
	r.FinishedAt = &now
}

// Duration возвращает продолжительность запуска.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed возвращает дочерние процессы со статусом сбоя.
func (r *Run) Failed() []*Child {
	var failed []*Child
	for _, c := range r.Children {
		if c.Status.IsFailure() {
			failed = append(failed, c)
		}
	}
	return failed
}

// Succeeded возвращает true, если все процессы запустились и завершились с кодом 0.
func (r *Run) Succeeded() bool {
	for _, c := range r.Children {
		if c.Status != ChildStatusExited {
			return false
		}
	}
	return true
}
