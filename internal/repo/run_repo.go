package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/devstack/internal/domain"
)

// RunSummary — строка истории запусков.
type RunSummary struct {
	ID         uuid.UUID        `json:"id"`
	Status     domain.RunStatus `json:"status"`
	Policy     string           `json:"policy"`
	Children   int              `json:"children"`
	Failed     int              `json:"failed"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

// Duration возвращает продолжительность запуска. 0 — ещё не завершён.
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// RunRepo — репозиторий для работы с runs.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create сохраняет новый run.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO runs (id, status, policy, children, failed, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		run.Policy,
		len(run.Children),
		len(run.Failed()),
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish фиксирует переход run в DONE.
func (r *RunRepo) Finish(ctx context.Context, run *domain.Run) error {
	query := `
		UPDATE runs
		SET status = $2, failed = $3, finished_at = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		len(run.Failed()),
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает run по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*RunSummary, error) {
	query := `
		SELECT id, status, policy, children, failed, started_at, finished_at
		FROM runs
		WHERE id = $1
	`
	s, err := scanRunSummary(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// List возвращает последние runs, новые первыми.
func (r *RunRepo) List(ctx context.Context, limit, offset int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, status, policy, children, failed, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		s, err := scanRunSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *s)
	}
	return runs, rows.Err()
}

// scanRunSummary сканирует одну строку в RunSummary.
// pgx.Rows тоже реализует pgx.Row.
func scanRunSummary(row pgx.Row) (*RunSummary, error) {
	var s RunSummary
	err := row.Scan(
		&s.ID,
		&s.Status,
		&s.Policy,
		&s.Children,
		&s.Failed,
		&s.StartedAt,
		&s.FinishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return &s, nil
}

// --- Helpers ---

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullInt возвращает nil для нуля.
func nullInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}
