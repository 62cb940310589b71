package board

import (
	"errors"
	"fmt"
	"time"
)

// BoardSize is the fixed number of cells on the board.
const BoardSize = 22

// ErrInvalidCellKey is returned when a cell key falls outside 1..22.
var ErrInvalidCellKey = errors.New("cell key out of range")

// CellKey addresses one cell on the board. Valid keys are 1..22.
type CellKey int

// Validate reports whether the key is inside the board.
func (k CellKey) Validate() error {
	if k < 1 || k > BoardSize {
		return fmt.Errorf("%w: %d", ErrInvalidCellKey, int(k))
	}
	return nil
}

// Color is the background color of a cell.
type Color string

const (
	ColorWhite  Color = "white"
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
)

// ErrInvalidColor is returned when a color is not in the palette.
var ErrInvalidColor = errors.New("invalid color")

// ParseColor validates a color name. The empty string maps to white.
func ParseColor(s string) (Color, error) {
	switch Color(s) {
	case "":
		return ColorWhite, nil
	case ColorWhite, ColorGreen, ColorOrange, ColorRed, ColorBlue, ColorYellow:
		return Color(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// Cell is one note slot. The zero value is a blank white cell with no
// last-writer metadata.
type Cell struct {
	Text      string     `json:"text"`
	Color     Color      `json:"color"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Blank reports whether the cell carries no content.
func (c Cell) Blank() bool {
	return c.Text == "" && (c.Color == ColorWhite || c.Color == "")
}

// Board maps every cell key to its current content. A well-formed board
// holds exactly 22 keys; keys are never added or removed, only overwritten.
type Board map[CellKey]Cell

// NewBoard returns a board with all 22 cells defaulted to blank white.
func NewBoard() Board {
	b := make(Board, BoardSize)
	for k := CellKey(1); k <= BoardSize; k++ {
		b[k] = Cell{Color: ColorWhite}
	}
	return b
}

// Clone returns an independent copy of the board.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for k, c := range b {
		out[k] = c
	}
	return out
}

// Layout returns the display order of cell keys: first row ascending 1-11,
// second row descending 22-12. Spatial adjacency only; storage does not
// depend on it.
func Layout() [2][11]CellKey {
	var rows [2][11]CellKey
	for i := 0; i < 11; i++ {
		rows[0][i] = CellKey(i + 1)
		rows[1][i] = CellKey(BoardSize - i)
	}
	return rows
}
