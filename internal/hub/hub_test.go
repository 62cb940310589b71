package hub

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ryanbastic/noteboard/internal/board"
)

func newTestHub() *Hub {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func recv(t *testing.T, sub *Subscription) Message {
	t.Helper()
	select {
	case msg, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return Message{}
	}
}

func TestJoinCreatesDistinctEntries(t *testing.T) {
	h := newTestHub()

	s1 := h.Join("ayse")
	s2 := h.Join("ayse") // second tab
	s3 := h.Join("mehmet")

	if s1.ID == s2.ID {
		t.Error("connections must get distinct IDs")
	}
	if h.ConnectionCount() != 3 {
		t.Errorf("ConnectionCount() = %d, want 3", h.ConnectionCount())
	}
	if h.AccountCount() != 2 {
		t.Errorf("AccountCount() = %d, want 2", h.AccountCount())
	}
	_ = s3
}

func TestLeaveIsIdempotent(t *testing.T) {
	h := newTestHub()
	sub := h.Join("ayse")
	other := h.Join("mehmet")

	h.Leave(sub.ID)
	before := h.ConnectionCount()
	h.Leave(sub.ID) // logout racing disconnect: second removal is a no-op
	after := h.ConnectionCount()

	if before != 1 || after != 1 {
		t.Errorf("presence count disturbed by double leave: before=%d after=%d", before, after)
	}
	if got := h.Entries(); len(got) != 1 || got[0].ID != other.ID {
		t.Errorf("remaining entries = %v", got)
	}
}

func TestBroadcastSnapshotReachesAllSubscribersIncludingWriter(t *testing.T) {
	h := newTestHub()
	writer := h.Join("ayse")
	observer := h.Join("mehmet")

	b := board.NewBoard()
	b[5] = board.Cell{Text: "Toplantı 3PM", Color: board.ColorOrange, UpdatedBy: "ayse"}
	h.BroadcastSnapshot(b)

	for _, sub := range []*Subscription{writer, observer} {
		msg := recv(t, sub)
		if msg.Kind != KindSnapshot {
			t.Fatalf("kind = %v, want snapshot", msg.Kind)
		}
		if msg.Board[5].Text != "Toplantı 3PM" {
			t.Errorf("subscriber %s got %+v", sub.AccountName, msg.Board[5])
		}
	}
}

func TestBroadcastSnapshotIsACopy(t *testing.T) {
	h := newTestHub()
	sub := h.Join("ayse")

	b := board.NewBoard()
	h.BroadcastSnapshot(b)
	b[1] = board.Cell{Text: "mutated after broadcast", Color: board.ColorRed}

	msg := recv(t, sub)
	if msg.Board[1].Text != "" {
		t.Error("broadcast must snapshot the board, not alias it")
	}
}

func TestBroadcastPresence(t *testing.T) {
	h := newTestHub()
	sub := h.Join("ayse")
	h.Join("mehmet")

	h.BroadcastPresence()

	msg := recv(t, sub)
	if msg.Kind != KindPresence {
		t.Fatalf("kind = %v, want presence", msg.Kind)
	}
	if len(msg.Presence) != 2 {
		t.Errorf("presence entries = %d, want 2", len(msg.Presence))
	}
}

func TestSlowSubscriberDoesNotBlockBroadcast(t *testing.T) {
	h := newTestHub()
	slow := h.Join("ayse")
	_ = slow // never drained

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < sendBuffer*2; i++ {
			h.BroadcastSnapshot(board.NewBoard())
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow subscriber")
	}
}

func TestLeaveAfterBroadcastDoesNotPanic(t *testing.T) {
	h := newTestHub()
	sub := h.Join("ayse")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			h.BroadcastPresence()
		}
	}()
	h.Leave(sub.ID)
	<-done
}
