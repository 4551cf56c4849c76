package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

type Logger interface {
	Infof(template string, args ...interface{})
}

// Scheduler runs a job serially: the next run starts one interval after the
// previous run returned. Runs never overlap.
type Scheduler struct {
	schedule cron.Schedule
	logger   Logger
}

// New returns a Scheduler with a constant delay. Intervals are truncated to
// whole seconds, with a one second minimum.
func New(interval time.Duration, logger Logger) *Scheduler {
	return &Scheduler{
		schedule: cron.Every(interval),
		logger:   logger,
	}
}

// Next reports when a run that finished at t would be followed by the next.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run calls job right away and then after every delay until ctx is done or
// job returns an error. Cancellation is not an error.
func (s *Scheduler) Run(ctx context.Context, job func(context.Context) error) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := job(ctx); err != nil {
			return err
		}

		next := s.Next(time.Now())
		if s.logger != nil {
			s.logger.Infof("Next run at %s (in %s)",
				next.Format(time.RFC3339), time.Until(next).Round(time.Second))
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
