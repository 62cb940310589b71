package api

import (
	"context"
	"log/slog"
	"net/http"
	gosync "sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ryanbastic/noteboard/internal/board"
	"github.com/ryanbastic/noteboard/internal/hub"
	"github.com/ryanbastic/noteboard/internal/metrics"
	"github.com/ryanbastic/noteboard/internal/storage"
	"github.com/ryanbastic/noteboard/internal/sync"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// SyncHandler upgrades sync connections and bridges them to the hub.
// One connection is one presence entry: Join on upgrade, Leave on any
// disconnect — graceful close and network loss take the same path.
type SyncHandler struct {
	store    storage.BoardStore
	hub      *hub.Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewSyncHandler(store storage.BoardStore, h *hub.Hub, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		store:  store,
		hub:    h,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The board is an open shared widget; origin checks stay
			// permissive like the hosted store it replaces.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve handles GET /v1/sync?account=NAME.
func (h *SyncHandler) Serve(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		writeError(w, http.StatusBadRequest, "account query parameter required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "account", account, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Every new online connection re-seeds the board write-if-absent, so
	// the first client ever also finds 22 cells.
	if err := h.store.Seed(ctx); err != nil {
		h.logger.Error("seed on connect failed", "account", account, "error", err)
		conn.Close()
		return
	}

	sub := h.hub.Join(account)
	metrics.ObserveHub(h.hub)
	defer func() {
		h.hub.Leave(sub.ID)
		metrics.ObserveHub(h.hub)
		h.hub.BroadcastPresence()
	}()

	wc := &wsConn{conn: conn}

	// Initial state: full snapshot plus current presence, then tell
	// everyone else about the newcomer.
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.logger.Error("initial snapshot failed", "account", account, "error", err)
		conn.Close()
		return
	}
	if err := wc.writeFrame(sync.Frame{Type: sync.FrameSnapshot, Cells: snap}); err != nil {
		conn.Close()
		return
	}
	h.hub.BroadcastPresence()

	go h.pump(ctx, cancel, wc, sub)

	h.readLoop(ctx, conn, account)
}

// pump forwards hub messages and keepalive pings to one connection.
func (h *SyncHandler) pump(ctx context.Context, cancel context.CancelFunc, wc *wsConn, sub *hub.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			var f sync.Frame
			switch msg.Kind {
			case hub.KindSnapshot:
				f = sync.Frame{Type: sync.FrameSnapshot, Cells: msg.Board}
			case hub.KindPresence:
				f = sync.Frame{Type: sync.FramePresence, Entries: presenceFrame(msg.Presence)}
			default:
				continue
			}
			if err := wc.writeFrame(f); err != nil {
				cancel()
				return
			}
		case <-ticker.C:
			if err := wc.ping(); err != nil {
				cancel()
				return
			}
		}
	}
}

// readLoop consumes inbound write frames until the connection dies.
func (h *SyncHandler) readLoop(ctx context.Context, conn *websocket.Conn, account string) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f sync.Frame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("sync connection lost", "account", account, "error", err)
			}
			return
		}

		if f.Type != sync.FrameWrite || f.Cell == nil {
			h.logger.Warn("unexpected sync frame", "account", account, "type", f.Type)
			continue
		}
		h.handleWrite(ctx, account, f)
	}
}

func (h *SyncHandler) handleWrite(ctx context.Context, account string, f sync.Frame) {
	if err := f.CellKey.Validate(); err != nil {
		h.logger.Warn("write rejected", "account", account, "cell_key", int(f.CellKey), "error", err)
		return
	}
	color, err := board.ParseColor(string(f.Cell.Color))
	if err != nil {
		h.logger.Warn("write rejected", "account", account, "cell_key", int(f.CellKey), "error", err)
		return
	}

	// The socket's account owns the write regardless of what the frame
	// claims.
	_, err = h.store.WriteCell(ctx, f.CellKey, board.Cell{
		Text:      f.Cell.Text,
		Color:     color,
		UpdatedBy: account,
	})
	if err != nil {
		h.logger.Error("failed to write cell", "account", account, "cell_key", int(f.CellKey), "error", err)
		return
	}
	metrics.CellWrites.WithLabelValues("websocket").Inc()

	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.logger.Error("failed to snapshot board for fan-out", "error", err)
		return
	}
	h.hub.BroadcastSnapshot(snap)
}

func presenceFrame(entries []hub.Entry) []sync.Entry {
	out := make([]sync.Entry, len(entries))
	for i, e := range entries {
		out[i] = sync.Entry{
			ID:          e.ID.String(),
			AccountName: e.AccountName,
			JoinedAt:    e.JoinedAt,
		}
	}
	return out
}

// wsConn serializes writes; the pump goroutine and error paths share the
// connection.
type wsConn struct {
	mu   gosync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) writeFrame(f sync.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(f)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}
