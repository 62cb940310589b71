package sync

import "github.com/ryanbastic/noteboard/internal/board"

// Frame types on the websocket sync channel.
const (
	FrameWrite    = "write"    // client -> server: one cell write
	FrameSnapshot = "snapshot" // server -> client: full cell collection
	FramePresence = "presence" // server -> client: full presence registry
	FrameError    = "error"    // server -> client: rejected write
)

// Frame is the single JSON message shape used in both directions. Snapshots
// always carry the whole board, never per-cell diffs.
type Frame struct {
	Type    string        `json:"type"`
	CellKey board.CellKey `json:"cell_key,omitempty"`
	Cell    *board.Cell   `json:"cell,omitempty"`
	Cells   board.Board   `json:"cells,omitempty"`
	Entries []Entry       `json:"entries,omitempty"`
	Error   string        `json:"error,omitempty"`
}
