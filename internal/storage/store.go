package storage

import (
	"context"
	"errors"

	"github.com/ryanbastic/noteboard/internal/board"
)

var (
	// ErrAccountNotFound is returned when an account name lookup matches
	// no row.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNameTaken is returned when registering an account name that
	// already exists.
	ErrNameTaken = errors.New("account name taken")
)

// BoardStore is the durable home of the 22-cell board. The store assigns
// write timestamps itself; its write order is the last-write-wins order
// every client converges to.
type BoardStore interface {
	// Seed inserts any missing cells with blank white defaults.
	// Idempotent write-if-absent; existing content is never touched.
	Seed(ctx context.Context) error

	// WriteCell overwrites one cell and stamps it with the store's clock.
	// Returns the stored cell including the assigned timestamp.
	WriteCell(ctx context.Context, key board.CellKey, c board.Cell) (board.Cell, error)

	// Snapshot returns the full current board.
	Snapshot(ctx context.Context) (board.Board, error)
}

// AccountStore is the account directory consulted before any board or
// presence interaction.
type AccountStore interface {
	// Create registers a new account. Returns ErrNameTaken if the name
	// exists.
	Create(ctx context.Context, name, secret string) error

	// Lookup returns the stored secret for a name, or ErrAccountNotFound.
	Lookup(ctx context.Context, name string) (string, error)
}
