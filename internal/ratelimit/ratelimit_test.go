package ratelimit

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestAllowDrainsBucket(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewWithClock(3, 1, clock.Now)

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if l.Allow() {
		t.Error("bucket should be empty")
	}
}

func TestRefill(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewWithClock(2, 1, clock.Now)

	l.Allow()
	l.Allow()
	if l.Allow() {
		t.Fatal("bucket should be empty")
	}

	clock.Advance(time.Second)
	if !l.Allow() {
		t.Error("one token should have refilled after one second")
	}
	if l.Allow() {
		t.Error("only one token should have refilled")
	}
}

func TestRefillCapped(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewWithClock(2, 10, clock.Now)

	clock.Advance(time.Hour)
	if got := l.Tokens(); got != 2 {
		t.Errorf("tokens = %v, want capped at capacity 2", got)
	}
}

func TestPartialRefill(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewWithClock(1, 2, clock.Now)

	l.Allow()
	clock.Advance(250 * time.Millisecond)
	if l.Allow() {
		t.Error("half a token is not enough")
	}
	clock.Advance(250 * time.Millisecond)
	if !l.Allow() {
		t.Error("full token should be available after 500ms at 2/s")
	}
}
