package schedule

import (
	"context"
	"log/slog"
	"time"
)

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Runner fires a job on a schedule until its context ends. Runs never
// overlap: a run that overshoots the next activation delays it.
type Runner struct {
	Name     string
	Schedule Schedule
	Job      Job
	Logger   *slog.Logger
	Now      func() time.Time
}

// Run blocks until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("job", r.Name)
	now := r.Now
	if now == nil {
		now = time.Now
	}

	for {
		next := r.Schedule.Next(now())
		if next.IsZero() {
			logger.Info("schedule exhausted")
			return
		}
		logger.Debug("next run scheduled", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		start := time.Now()
		if err := r.Job(ctx); err != nil {
			logger.Error("scheduled job failed", "error", err, "duration", time.Since(start))
			continue
		}
		logger.Info("scheduled job done", "duration", time.Since(start))
	}
}
