package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/devstack/internal/domain"
)

// ChildRepo — репозиторий дочерних процессов run.
type ChildRepo struct {
	pool *pgxpool.Pool
}

// NewChildRepo создаёт новый ChildRepo.
func NewChildRepo(pool *pgxpool.Pool) *ChildRepo {
	return &ChildRepo{pool: pool}
}

// Save создаёт или обновляет запись о процессе.
func (r *ChildRepo) Save(ctx context.Context, child *domain.Child) error {
	commandJSON, err := json.Marshal(child.Spec.Command)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	query := `
		INSERT INTO run_children (id, run_id, idx, name, command, dir, status,
		                          pid, exit_code, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    pid = EXCLUDED.pid,
		    exit_code = EXCLUDED.exit_code,
		    error = EXCLUDED.error,
		    started_at = EXCLUDED.started_at,
		    finished_at = EXCLUDED.finished_at
	`
	_, err = r.pool.Exec(ctx, query,
		child.ID,
		child.RunID,
		child.Index,
		child.Name(),
		commandJSON,
		nullString(child.Spec.Dir),
		child.Status,
		nullInt(child.PID),
		child.ExitCode,
		nullString(child.Error),
		child.StartedAt,
		child.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("save child %s: %w", child.Name(), err)
	}
	return nil
}

// ListByRun возвращает процессы run в порядке плана.
func (r *ChildRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.Child, error) {
	query := `
		SELECT id, run_id, idx, name, command, dir, status,
		       pid, exit_code, error, started_at, finished_at
		FROM run_children
		WHERE run_id = $1
		ORDER BY idx ASC
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []domain.Child
	for rows.Next() {
		var c domain.Child
		var commandJSON []byte
		var dir, errText *string
		var pid *int

		err := rows.Scan(
			&c.ID,
			&c.RunID,
			&c.Index,
			&c.Spec.Name,
			&commandJSON,
			&dir,
			&c.Status,
			&pid,
			&c.ExitCode,
			&errText,
			&c.StartedAt,
			&c.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}

		if err := json.Unmarshal(commandJSON, &c.Spec.Command); err != nil {
			return nil, fmt.Errorf("unmarshal command: %w", err)
		}
		if dir != nil {
			c.Spec.Dir = *dir
		}
		if errText != nil {
			c.Error = *errText
		}
		if pid != nil {
			c.PID = *pid
		}

		children = append(children, c)
	}
	return children, rows.Err()
}
