package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time        { return c.t }
func (c *fakeClock) Sleep(d time.Duration) { c.t = c.t.Add(d) }

func TestRunBoundedDuration(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

	runs := 0
	s := New(func(ctx context.Context) error {
		runs++
		return nil
	}, Options{
		Interval: time.Hour,
		Duration: 3 * time.Hour,
		Now:      clock.Now,
		Sleep:    clock.Sleep,
	})

	stats := s.Run(context.Background())

	// Runs fire at +1h and +2h; the +3h slot hits the end of the budget.
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
	if stats.Successful != 2 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRunImmediate(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

	runs := 0
	s := New(func(ctx context.Context) error {
		runs++
		return nil
	}, Options{
		Interval:  time.Hour,
		Duration:  2 * time.Hour,
		Immediate: true,
		Now:       clock.Now,
		Sleep:     clock.Sleep,
	})

	s.Run(context.Background())

	// Immediate run plus the +1h slot.
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestRunCountsFailures(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

	calls := 0
	s := New(func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("boom")
		}
		return nil
	}, Options{
		Interval: time.Hour,
		Duration: 3 * time.Hour,
		Now:      clock.Now,
		Sleep:    clock.Sleep,
	})

	stats := s.Run(context.Background())
	if stats.Failed != 1 || stats.Successful != 1 {
		t.Errorf("stats = %+v, want 1 failed and 1 successful", stats)
	}
}

func TestRunZeroDuration(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

	runs := 0
	s := New(func(ctx context.Context) error {
		runs++
		return nil
	}, Options{
		Interval: time.Hour,
		Duration: 0,
		Now:      clock.Now,
		Sleep:    clock.Sleep,
	})

	s.Run(context.Background())
	if runs != 0 {
		t.Errorf("runs = %d, want 0 for zero duration", runs)
	}
}
