// Package ratelimit provides a token-bucket limiter used to pace calls to
// external providers. The clock is injectable so pacing is testable without
// real sleeps.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limiter is a token bucket: capacity tokens maximum, refilled continuously
// at refillRate tokens per second.
type Limiter struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64
	last       time.Time
	now        func() time.Time
}

// New creates a full bucket holding capacity tokens refilled at
// refillPerSecond.
func New(capacity int, refillPerSecond float64) *Limiter {
	return NewWithClock(capacity, refillPerSecond, time.Now)
}

// NewWithClock is New with an explicit clock.
func NewWithClock(capacity int, refillPerSecond float64, now func() time.Time) *Limiter {
	return &Limiter{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillPerSecond,
		last:       now(),
		now:        now,
	}
}

func (l *Limiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.last).Seconds()
	if elapsed > 0 {
		l.tokens += elapsed * l.refillRate
		if l.tokens > l.capacity {
			l.tokens = l.capacity
		}
		l.last = now
	}
}

// Allow consumes a token if one is available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - l.tokens) / l.refillRate * float64(time.Second))
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limit wait: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}

// Tokens reports the current token count after refill, for monitoring.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	return l.tokens
}
