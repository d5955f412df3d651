// Package scheduler re-runs the publishing pipeline at a fixed interval
// for a bounded wall-clock duration.
package scheduler

import (
	"context"
	"time"

	"github.com/nexustopic/autoblog/internal/logger"
)

// Runner executes one pipeline run.
type Runner func(ctx context.Context) error

type Options struct {
	Interval   time.Duration // time between runs
	Duration   time.Duration // total wall-clock budget
	RunTimeout time.Duration // per-run deadline
	Immediate  bool          // run once before the first interval elapses

	// Now and Sleep are injectable for tests; nil means the real clock.
	Now   func() time.Time
	Sleep func(time.Duration)
}

type Stats struct {
	Successful int
	Failed     int
}

type Scheduler struct {
	run  Runner
	opts Options
}

func New(run Runner, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 10 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Scheduler{run: run, opts: opts}
}

// Run executes the pipeline on the configured interval until the duration
// budget is spent or the context is cancelled, and reports run counts.
func (s *Scheduler) Run(ctx context.Context) Stats {
	start := s.opts.Now()
	end := start.Add(s.opts.Duration)
	var stats Stats

	logger.Info("Scheduler started",
		"interval", s.opts.Interval, "until", end.Format(time.RFC3339),
		"immediate", s.opts.Immediate)

	if s.opts.Immediate {
		s.execute(ctx, &stats)
	}

	next := start.Add(s.opts.Interval)
	for next.Before(end) {
		if wait := next.Sub(s.opts.Now()); wait > 0 {
			s.opts.Sleep(wait)
		}
		if ctx.Err() != nil {
			logger.Info("Scheduler cancelled")
			break
		}

		s.execute(ctx, &stats)
		next = next.Add(s.opts.Interval)
	}

	logger.Info("Scheduler finished",
		"successful", stats.Successful, "failed", stats.Failed)
	return stats
}

func (s *Scheduler) execute(ctx context.Context, stats *Stats) {
	runCtx, cancel := context.WithTimeout(ctx, s.opts.RunTimeout)
	defer cancel()

	logger.Info("Starting scheduled run", "run", stats.Successful+stats.Failed+1)
	if err := s.run(runCtx); err != nil {
		stats.Failed++
		logger.Error("Scheduled run failed", "error", err)
		return
	}
	stats.Successful++
	logger.Info("Scheduled run complete",
		"successful", stats.Successful, "failed", stats.Failed)
}
