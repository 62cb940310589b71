package sync

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerAllowsUntilMaxFailures(t *testing.T) {
	b := newPublishBreaker(3, time.Hour)
	fail := errors.New("write failed")

	for i := 0; i < 3; i++ {
		if !b.allow() {
			t.Fatalf("breaker should allow attempt %d", i+1)
		}
		b.record(fail)
	}

	if b.allow() {
		t.Error("breaker should suppress after max consecutive failures")
	}
}

func TestBreakerResetsOnSuccess(t *testing.T) {
	b := newPublishBreaker(2, time.Hour)
	fail := errors.New("write failed")

	b.record(fail)
	b.record(nil)
	b.record(fail)

	if !b.allow() {
		t.Error("success should reset the failure streak")
	}
}

func TestBreakerHalfOpensAfterTimeout(t *testing.T) {
	b := newPublishBreaker(1, 10*time.Millisecond)
	b.record(errors.New("write failed"))

	if b.allow() {
		t.Fatal("breaker should be open immediately after failure")
	}

	time.Sleep(20 * time.Millisecond)

	if !b.allow() {
		t.Error("breaker should admit a probe write after the reset timeout")
	}
	// The probe failing reopens it at once.
	b.record(errors.New("still down"))
	if b.allow() {
		t.Error("failed probe should reopen the breaker")
	}
}
