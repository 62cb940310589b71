package sync

import (
	"errors"
	"sync"
	"time"
)

// ErrPublishSuppressed is returned by PublishCell while the publish path is
// suppressed after repeated consecutive failures. The transport is almost
// certainly down; the caller should watch connectivity and retry later.
var ErrPublishSuppressed = errors.New("publish suppressed after repeated failures")

// publishBreaker fails writes fast once the transport has produced
// maxFailures consecutive errors, instead of letting every commit block on a
// dead socket. It re-admits writes after resetTimeout. There is deliberately
// no retry here: a suppressed or failed publish surfaces to the caller.
type publishBreaker struct {
	mu           sync.Mutex
	failures     int
	maxFailures  int
	resetTimeout time.Duration
	lastFailure  time.Time
}

func newPublishBreaker(maxFailures int, resetTimeout time.Duration) *publishBreaker {
	return &publishBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
	}
}

// allow reports whether a publish may proceed.
func (b *publishBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.maxFailures {
		return true
	}
	if time.Since(b.lastFailure) > b.resetTimeout {
		// Half-open: let one write through to probe the transport.
		b.failures = b.maxFailures - 1
		return true
	}
	return false
}

// record updates the failure streak from a publish outcome.
func (b *publishBreaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		b.lastFailure = time.Now()
		return
	}
	b.failures = 0
}
