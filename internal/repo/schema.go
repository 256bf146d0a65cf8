package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema — таблицы истории запусков. Идемпотентно.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          UUID PRIMARY KEY,
	status      TEXT NOT NULL,
	policy      TEXT NOT NULL,
	children    INT NOT NULL,
	failed      INT NOT NULL DEFAULT 0,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS runs_started_at_idx ON runs (started_at DESC);

CREATE TABLE IF NOT EXISTS run_children (
	id          UUID PRIMARY KEY,
	run_id      UUID NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
	idx         INT NOT NULL,
	name        TEXT NOT NULL,
	command     JSONB NOT NULL,
	dir         TEXT,
	status      TEXT NOT NULL,
	pid         INT,
	exit_code   INT NOT NULL DEFAULT 0,
	error       TEXT,
	started_at  TIMESTAMPTZ,
	finished_at TIMESTAMPTZ,
	UNIQUE (run_id, idx)
);
`

// EnsureSchema создаёт таблицы истории, если их нет.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
