package sync

import (
	"context"
	"log/slog"
	"net/url"
	gosync "sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ryanbastic/noteboard/internal/board"
)

const (
	publishMaxFailures  = 3
	publishResetTimeout = 5 * time.Second
	writeTimeout        = 10 * time.Second
)

// Client is the websocket Gateway implementation. One Client is one
// connection, and therefore one presence entry: joining presence is implicit
// in the dial and the server deregisters the entry when the connection
// drops, gracefully or not.
type Client struct {
	url     string
	account string
	logger  *slog.Logger
	dialer  *websocket.Dialer

	writeMu gosync.Mutex
	conn    *websocket.Conn

	mu         gosync.Mutex
	cellsFn    func(board.Board)
	presenceFn func([]Entry)
	connFn     func(State)
	state      State
	closed     bool

	breaker *publishBreaker
	done    chan struct{}
}

var _ Gateway = (*Client)(nil)

// NewClient prepares a gateway for the sync endpoint at rawURL
// (e.g. ws://host:8080/v1/sync). Register subscriptions before Connect.
func NewClient(rawURL, account string, logger *slog.Logger) *Client {
	return &Client{
		url:     rawURL,
		account: account,
		logger:  logger,
		dialer:  websocket.DefaultDialer,
		breaker: newPublishBreaker(publishMaxFailures, publishResetTimeout),
		done:    make(chan struct{}),
	}
}

// Connect dials the store and starts the subscription read loop. The
// connectivity callback observes connecting -> online on success, or
// connecting -> offline on failure.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.url)
	if err != nil {
		return &SyncError{Op: "connect", Err: err}
	}
	q := u.Query()
	q.Set("account", c.account)
	u.RawQuery = q.Encode()

	c.setState(StateConnecting)

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		c.setState(StateOffline)
		return &SyncError{Op: "connect", Err: err}
	}

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()

	c.setState(StateOnline)
	go c.readLoop(conn)
	return nil
}

// readLoop delivers server frames to the registered callbacks in arrival
// order until the connection dies.
func (c *Client) readLoop(conn *websocket.Conn) {
	defer close(c.done)

	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("sync read failed", "account", c.account, "error", err)
			}
			c.setState(StateOffline)
			return
		}

		switch f.Type {
		case FrameSnapshot:
			if fn := c.cellsCallback(); fn != nil {
				fn(f.Cells)
			}
		case FramePresence:
			if fn := c.presenceCallback(); fn != nil {
				fn(f.Entries)
			}
		case FrameError:
			c.logger.Warn("store rejected write", "account", c.account, "error", f.Error)
		default:
			c.logger.Warn("unknown sync frame", "type", f.Type)
		}
	}
}

// PublishCell sends one cell write. Fire-and-forget: a nil return means the
// frame was handed to the transport, not that the store accepted it; the
// authoritative result arrives as the next snapshot.
func (c *Client) PublishCell(key board.CellKey, cell board.Cell) error {
	if err := key.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return &SyncError{Op: "publish", Err: ErrClosed}
	}
	if !c.breaker.allow() {
		return &SyncError{Op: "publish", Err: ErrPublishSuppressed}
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return &SyncError{Op: "publish", Err: ErrClosed}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := c.conn.WriteJSON(Frame{Type: FrameWrite, CellKey: key, Cell: &cell})
	c.breaker.record(err)
	if err != nil {
		return &SyncError{Op: "publish", Err: err}
	}
	return nil
}

// SubscribeCells registers the snapshot callback.
func (c *Client) SubscribeCells(fn func(board.Board)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cellsFn = fn
}

// SubscribePresence registers the presence callback.
func (c *Client) SubscribePresence(fn func([]Entry)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presenceFn = fn
}

// SubscribeConnectivity registers the connectivity callback. It fires only
// on transitions, never twice for the same state.
func (c *Client) SubscribeConnectivity(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connFn = fn
}

// Close tears down the connection. Safe to call twice; the second call is a
// no-op. Server-side presence removal is triggered by the close either way.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		c.setState(StateOffline)
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "logout"))
	err := c.conn.Close()
	c.setState(StateOffline)
	return err
}

// Done is closed when the read loop exits (disconnect or Close).
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) cellsCallback() func(board.Board) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cellsFn
}

func (c *Client) presenceCallback() func([]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presenceFn
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	fn := c.connFn
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
