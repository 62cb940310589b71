// Package presence maintains the locally-observed online-users registry.
package presence

import (
	"sort"
	gosync "sync"

	"github.com/ryanbastic/noteboard/internal/sync"
)

// Tracker holds the last presence snapshot delivered by the gateway. The
// per-connection entries are the source of truth; the deduplicated name list
// is only a derived view for display.
type Tracker struct {
	mu      gosync.RWMutex
	entries map[string]sync.Entry // connection id -> entry
}

// NewTracker returns an empty tracker. Wire Apply to the gateway's presence
// subscription; the tracker has no lifecycle of its own.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]sync.Entry)}
}

// Apply replaces the observed registry with a presence snapshot. Entries the
// store no longer reports (disconnected tabs, expired sessions) drop out
// here; nothing is merged.
func (t *Tracker) Apply(entries []sync.Entry) {
	next := make(map[string]sync.Entry, len(entries))
	for _, e := range entries {
		next[e.ID] = e
	}
	t.mu.Lock()
	t.entries = next
	t.mu.Unlock()
}

// Entries returns the current per-connection entries in unspecified order.
func (t *Tracker) Entries() []sync.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]sync.Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	return out
}

// ConnectionCount returns the number of live connections, counting every
// tab separately.
func (t *Tracker) ConnectionCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// VisibleOnlineUsers returns the distinct account names across all current
// entries, sorted for stable display. Multiple connections by the same
// account collapse to one name.
func (t *Tracker) VisibleOnlineUsers() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[string]bool, len(t.entries))
	names := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		if seen[e.AccountName] {
			continue
		}
		seen[e.AccountName] = true
		names = append(names, e.AccountName)
	}
	sort.Strings(names)
	return names
}
