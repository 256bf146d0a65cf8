package supervisor

import (
	"context"
	"errors"

	"github.com/shaiso/devstack/internal/domain"
)

// Observer — получатель событий жизненного цикла запуска.
//
// Реализации: telemetry.Metrics, mq.EventPublisher, repo.History.
type Observer interface {
	// RunStarted вызывается после фазы запуска (run в статусе RUNNING).
	RunStarted(ctx context.Context, run *domain.Run) error

	// ChildStarted вызывается для каждого процесса после фазы запуска.
	// child.Status — RUNNING или SPAWN_FAILED.
	ChildStarted(ctx context.Context, run *domain.Run, child *domain.Child) error

	// ChildExited вызывается после завершения запущенного процесса.
	ChildExited(ctx context.Context, run *domain.Run, child *domain.Child) error

	// RunFinished вызывается после перехода run в DONE.
	RunFinished(ctx context.Context, run *domain.Run) error
}

// Observers рассылает события всем наблюдателям по порядку.
// Ошибка одного наблюдателя не мешает остальным.
type Observers []Observer

// RunStarted реализует Observer.
func (o Observers) RunStarted(ctx context.Context, run *domain.Run) error {
	var errs []error
	for _, obs := range o {
		errs = append(errs, obs.RunStarted(ctx, run))
	}
	return errors.Join(errs...)
}

// ChildStarted реализует Observer.
func (o Observers) ChildStarted(ctx context.Context, run *domain.Run, child *domain.Child) error {
	var errs []error
	for _, obs := range o {
		errs = append(errs, obs.ChildStarted(ctx, run, child))
	}
	return errors.Join(errs...)
}

// ChildExited реализует Observer.
func (o Observers) ChildExited(ctx context.Context, run *domain.Run, child *domain.Child) error {
	var errs []error
	for _, obs := range o {
		errs = append(errs, obs.ChildExited(ctx, run, child))
	}
	return errors.Join(errs...)
}

// RunFinished реализует Observer.
func (o Observers) RunFinished(ctx context.Context, run *domain.Run) error {
	var errs []error
	for _, obs := range o {
		errs = append(errs, obs.RunFinished(ctx, run))
	}
	return errors.Join(errs...)
}
