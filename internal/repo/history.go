package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/devstack/internal/domain"
)

// runWriter — запись runs (реализуется RunRepo).
type runWriter interface {
	Create(ctx context.Context, run *domain.Run) error
	Finish(ctx context.Context, run *domain.Run) error
}

// childWriter — запись run_children (реализуется ChildRepo).
type childWriter interface {
	Save(ctx context.Context, child *domain.Child) error
}

// History записывает запуски супервизора в PostgreSQL.
//
// Реализует supervisor.Observer.
type History struct {
	runs     runWriter
	children childWriter
}

// NewHistory создаёт History поверх пула.
func NewHistory(pool *pgxpool.Pool) *History {
	return &History{
		runs:     NewRunRepo(pool),
		children: NewChildRepo(pool),
	}
}

// RunStarted реализует supervisor.Observer.
func (h *History) RunStarted(ctx context.Context, run *domain.Run) error {
	return h.runs.Create(ctx, run)
}

// ChildStarted реализует supervisor.Observer.
func (h *History) ChildStarted(ctx context.Context, _ *domain.Run, child *domain.Child) error {
	return h.children.Save(ctx, child)
}

// ChildExited реализует supervisor.Observer.
func (h *History) ChildExited(ctx context.Context, _ *domain.Run, child *domain.Child) error {
	return h.children.Save(ctx, child)
}

// RunFinished реализует supervisor.Observer.
func (h *History) RunFinished(ctx context.Context, run *domain.Run) error {
	err := h.runs.Finish(ctx, run)
	if errors.Is(err, ErrNotFound) {
		// RunStarted не дошёл до БД — сохраняем итог целиком
		if err := h.runs.Create(ctx, run); err != nil {
			return err
		}
		var errs []error
		for _, c := range run.Children {
			errs = append(errs, h.children.Save(ctx, c))
		}
		return errors.Join(append(errs, h.runs.Finish(ctx, run))...)
	}
	return err
}
