package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// PostgresAccountStore implements AccountStore on the accounts table.
// Secrets are stored verbatim; this directory replaces a browser
// local-storage lookup and inherits its (lack of) hashing.
type PostgresAccountStore struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

func NewPostgresAccountStore(pool *pgxpool.Pool, queryTimeout time.Duration) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool, queryTimeout: queryTimeout}
}

func (s *PostgresAccountStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout > 0 {
		return context.WithTimeout(ctx, s.queryTimeout)
	}
	return ctx, func() {}
}

func (s *PostgresAccountStore) Create(ctx context.Context, name, secret string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `INSERT INTO accounts (name, secret) VALUES ($1, $2)`
	if _, err := s.pool.Exec(ctx, query, name, secret); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrNameTaken
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresAccountStore) Lookup(ctx context.Context, name string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT secret FROM accounts WHERE name = $1`

	var secret string
	err := s.pool.QueryRow(ctx, query, name).Scan(&secret)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("lookup account: %w", err)
	}
	return secret, nil
}
