package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ryanbastic/noteboard/internal/board"
)

// RunMigrations creates the board and account tables.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS board_cells (
			cell_key   INTEGER PRIMARY KEY
			           CHECK (cell_key BETWEEN 1 AND %d),
			text       TEXT NOT NULL DEFAULT '',
			color      TEXT NOT NULL DEFAULT 'white',
			updated_by TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS accounts (
			name       TEXT PRIMARY KEY,
			secret     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`, board.BoardSize)

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
