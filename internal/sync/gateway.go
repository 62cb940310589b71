// Package sync is the boundary between local board state and the replicated
// store: it publishes cell writes, delivers full-collection snapshots and
// presence updates, and surfaces transport connectivity.
package sync

import (
	"errors"
	"fmt"
	"time"

	"github.com/ryanbastic/noteboard/internal/board"
)

// State is the transport connection state.
type State string

const (
	StateConnecting State = "connecting"
	StateOnline     State = "online"
	StateOffline    State = "offline"
)

// Entry is one live connection in the online-users registry. Multiple
// entries may carry the same account name (one per tab/connection).
type Entry struct {
	ID          string    `json:"id"`
	AccountName string    `json:"account_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

// ErrClosed is returned when operating on a closed gateway.
var ErrClosed = errors.New("gateway closed")

// SyncError wraps a failed store interaction. The caller is expected to
// leave its edit state open and retry; no automatic retry happens here.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Gateway is the replicated store boundary. Implementations must deliver
// snapshots for one connection in the store's write order; no ordering is
// guaranteed across connections beyond last-write-wins per cell.
type Gateway interface {
	// PublishCell sends one fire-and-forget cell write to the store.
	PublishCell(key board.CellKey, c board.Cell) error

	// SubscribeCells registers a callback invoked with the full cell
	// collection whenever any cell changes.
	SubscribeCells(fn func(board.Board))

	// SubscribePresence registers a callback invoked with the full set of
	// presence entries whenever anyone joins or leaves.
	SubscribePresence(fn func([]Entry))

	// SubscribeConnectivity registers a callback for transport state
	// transitions.
	SubscribeConnectivity(fn func(State))

	// Close tears the connection down, which deregisters this
	// connection's presence entry server-side. Idempotent.
	Close() error
}
