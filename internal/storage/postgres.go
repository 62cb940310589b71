package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ryanbastic/noteboard/internal/board"
)

// PostgresBoardStore implements BoardStore on a single board_cells table.
type PostgresBoardStore struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// NewPostgresBoardStore creates a BoardStore. queryTimeout sets the
// per-query context deadline; zero means no timeout.
func NewPostgresBoardStore(pool *pgxpool.Pool, queryTimeout time.Duration) *PostgresBoardStore {
	return &PostgresBoardStore{pool: pool, queryTimeout: queryTimeout}
}

// withTimeout derives a child context with the configured query timeout.
// If queryTimeout is zero, the parent context is returned unchanged.
func (s *PostgresBoardStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout > 0 {
		return context.WithTimeout(ctx, s.queryTimeout)
	}
	return ctx, func() {}
}

func (s *PostgresBoardStore) Seed(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO board_cells (cell_key, text, color)
		SELECT k, '', '%s' FROM generate_series(1, %d) AS k
		ON CONFLICT (cell_key) DO NOTHING
	`, board.ColorWhite, board.BoardSize)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("seed board: %w", err)
	}
	return nil
}

func (s *PostgresBoardStore) WriteCell(ctx context.Context, key board.CellKey, c board.Cell) (board.Cell, error) {
	if err := key.Validate(); err != nil {
		return board.Cell{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE board_cells
		SET text = $2, color = $3, updated_by = $4, updated_at = now()
		WHERE cell_key = $1
		RETURNING text, color, updated_by, updated_at
	`

	var stored board.Cell
	err := s.pool.QueryRow(ctx, query, int(key), c.Text, string(c.Color), c.UpdatedBy).
		Scan(&stored.Text, (*string)(&stored.Color), &stored.UpdatedBy, &stored.UpdatedAt)
	if err != nil {
		return board.Cell{}, fmt.Errorf("write cell %d: %w", int(key), err)
	}
	return stored, nil
}

func (s *PostgresBoardStore) Snapshot(ctx context.Context) (board.Board, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT cell_key, text, color, updated_by, updated_at
		FROM board_cells
		ORDER BY cell_key
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer rows.Close()

	b := board.NewBoard()
	for rows.Next() {
		var key int
		var c board.Cell
		if err := rows.Scan(&key, &c.Text, (*string)(&c.Color), &c.UpdatedBy, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("snapshot scan: %w", err)
		}
		b[board.CellKey(key)] = c
	}
	return b, rows.Err()
}
