// Package hub fans board snapshots and presence updates out to every
// connected sync subscriber, and owns the server-side presence registry.
package hub

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ryanbastic/noteboard/internal/board"
)

// sendBuffer is the per-subscriber outbound queue depth. Messages beyond it
// are dropped rather than blocking the hub; snapshots are full-state, so the
// next one heals any gap.
const sendBuffer = 16

// Kind discriminates hub messages.
type Kind int

const (
	KindSnapshot Kind = iota + 1
	KindPresence
)

// Message is one outbound fan-out unit.
type Message struct {
	Kind     Kind
	Board    board.Board
	Presence []Entry
}

// Entry is one presence registration. One entry per connection; the same
// account may hold several.
type Entry struct {
	ID          uuid.UUID
	AccountName string
	JoinedAt    time.Time
}

// Subscription is a live subscriber's handle: its presence identity plus the
// channel its messages arrive on.
type Subscription struct {
	ID          uuid.UUID
	AccountName string
	JoinedAt    time.Time
	C           <-chan Message

	send chan Message
}

// Hub is the in-process replicated-store fan-out. Per-subscriber delivery
// order follows broadcast order; there is no ordering across subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]*Subscription
	logger *slog.Logger
}

func New(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]*Subscription),
		logger: logger,
	}
}

// Join registers a new presence entry and subscription for an account.
// Joining is what makes a user "online"; the caller must pair every Join
// with exactly one eventual Leave, normally via defer on the connection
// handler so an abrupt disconnect still deregisters.
func (h *Hub) Join(accountName string) *Subscription {
	send := make(chan Message, sendBuffer)
	sub := &Subscription{
		ID:          uuid.New(),
		AccountName: accountName,
		JoinedAt:    time.Now().UTC(),
		C:           send,
		send:        send,
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	n := len(h.subs)
	h.mu.Unlock()

	h.logger.Info("presence join", "connection_id", sub.ID, "account", accountName, "online_connections", n)
	return sub
}

// Leave removes a subscription and closes its channel. Idempotent: leaving
// twice (explicit logout racing the disconnect path) is a no-op.
func (h *Hub) Leave(id uuid.UUID) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	n := len(h.subs)
	h.mu.Unlock()

	if !ok {
		return
	}
	close(sub.send)
	h.logger.Info("presence leave", "connection_id", id, "account", sub.AccountName, "online_connections", n)
}

// Entries returns the current presence registry.
func (h *Hub) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, 0, len(h.subs))
	for _, sub := range h.subs {
		out = append(out, Entry{ID: sub.ID, AccountName: sub.AccountName, JoinedAt: sub.JoinedAt})
	}
	return out
}

// ConnectionCount returns the number of live subscriptions.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// AccountCount returns the number of distinct online account names.
func (h *Hub) AccountCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make(map[string]struct{}, len(h.subs))
	for _, sub := range h.subs {
		names[sub.AccountName] = struct{}{}
	}
	return len(names)
}

// BroadcastSnapshot delivers the full board to every subscriber, including
// the writer's own connection.
func (h *Hub) BroadcastSnapshot(b board.Board) {
	h.broadcast(Message{Kind: KindSnapshot, Board: b.Clone()})
}

// BroadcastPresence delivers the current presence registry to every
// subscriber.
func (h *Hub) BroadcastPresence() {
	h.broadcast(Message{Kind: KindPresence, Presence: h.Entries()})
}

// broadcast delivers under the lock so a concurrent Leave cannot close a
// channel mid-send. Sends never block: a full queue drops the message.
func (h *Hub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		select {
		case sub.send <- msg:
		default:
			h.logger.Warn("subscriber queue full, dropping message",
				"connection_id", sub.ID, "account", sub.AccountName, "kind", msg.Kind)
		}
	}
}
