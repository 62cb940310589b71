package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ryanbastic/noteboard/internal/board"
	"github.com/ryanbastic/noteboard/internal/hub"
	"github.com/ryanbastic/noteboard/internal/metrics"
	"github.com/ryanbastic/noteboard/internal/storage"
)

// --- Huma Input/Output types ---

type CellResponse struct {
	Text      string     `json:"text" doc:"Note text, empty means blank"`
	Color     string     `json:"color" doc:"Background color"`
	UpdatedBy string     `json:"updated_by,omitempty" doc:"Account that last wrote the cell"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" doc:"Store-assigned timestamp of the last write"`
}

type BoardResponse struct {
	Cells map[board.CellKey]CellResponse `json:"cells" doc:"All 22 cells keyed 1-22"`
}

type GetBoardOutput struct {
	Body BoardResponse
}

type WriteCellBody struct {
	Text    string `json:"text" doc:"Note text"`
	Color   string `json:"color" doc:"Background color" enum:"white,green,orange,red,blue,yellow"`
	Account string `json:"account" doc:"Writing account name" required:"true" minLength:"1"`
}

type WriteCellInput struct {
	Key  int `path:"key" doc:"Cell key, 1-22" minimum:"1" maximum:"22"`
	Body WriteCellBody
}

type WriteCellOutput struct {
	Body CellResponse
}

// --- Handler ---

// BoardHandler serves the REST view of the board. Writes land in the store
// and fan out to every sync subscriber, exactly like websocket writes.
type BoardHandler struct {
	store  storage.BoardStore
	hub    *hub.Hub
	logger *slog.Logger
}

func NewBoardHandler(store storage.BoardStore, h *hub.Hub, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{store: store, hub: h, logger: logger}
}

func registerBoardRoutes(api huma.API, h *BoardHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/v1/board",
		Summary:     "Get the full board",
		Tags:        []string{"board"},
	}, h.GetBoard)

	huma.Register(api, huma.Operation{
		OperationID: "write-cell",
		Method:      http.MethodPut,
		Path:        "/v1/board/cells/{key}",
		Summary:     "Overwrite one cell",
		Tags:        []string{"board"},
	}, h.WriteCell)
}

func (h *BoardHandler) GetBoard(ctx context.Context, _ *struct{}) (*GetBoardOutput, error) {
	b, err := h.store.Snapshot(ctx)
	if err != nil {
		h.logger.Error("failed to read board", "error", err)
		return nil, huma.Error500InternalServerError("failed to read board")
	}
	return &GetBoardOutput{Body: boardToResponse(b)}, nil
}

func (h *BoardHandler) WriteCell(ctx context.Context, input *WriteCellInput) (*WriteCellOutput, error) {
	key := board.CellKey(input.Key)
	if err := key.Validate(); err != nil {
		return nil, huma.Error400BadRequest("cell key out of range")
	}
	color, err := board.ParseColor(input.Body.Color)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid color")
	}

	stored, err := h.store.WriteCell(ctx, key, board.Cell{
		Text:      input.Body.Text,
		Color:     color,
		UpdatedBy: input.Body.Account,
	})
	if err != nil {
		h.logger.Error("failed to write cell", "cell_key", int(key), "error", err)
		return nil, huma.Error500InternalServerError("failed to write cell")
	}
	metrics.CellWrites.WithLabelValues("rest").Inc()

	h.broadcast(ctx)

	return &WriteCellOutput{Body: cellToResponse(stored)}, nil
}

// broadcast pushes the post-write board to every sync subscriber, including
// the originator's own connection if it has one.
func (h *BoardHandler) broadcast(ctx context.Context) {
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.logger.Error("failed to snapshot board for fan-out", "error", err)
		return
	}
	h.hub.BroadcastSnapshot(snap)
}

func boardToResponse(b board.Board) BoardResponse {
	cells := make(map[board.CellKey]CellResponse, len(b))
	for k, c := range b {
		cells[k] = cellToResponse(c)
	}
	return BoardResponse{Cells: cells}
}

func cellToResponse(c board.Cell) CellResponse {
	return CellResponse{
		Text:      c.Text,
		Color:     string(c.Color),
		UpdatedBy: c.UpdatedBy,
		UpdatedAt: c.UpdatedAt,
	}
}
