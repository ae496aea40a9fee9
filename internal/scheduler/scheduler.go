// Package scheduler runs the periodic background jobs: market price refresh
// and the anomaly scan.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"cortex/internal/logger"

	"github.com/robfig/cron/v3"
)

// Job is a named unit of periodic work.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler wraps a cron runner. A job never overlaps with its own previous
// run, and a panic inside a job is logged instead of crashing the process.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	jobs   map[string]cron.EntryID
}

// New registers jobs on a cron runner using loc for schedule evaluation.
func New(loc *time.Location, jobs ...Job) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(logger.StdLog("cron"))
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: c, ctx: ctx, cancel: cancel, jobs: make(map[string]cron.EntryID, len(jobs))}
	for _, job := range jobs {
		id, err := c.AddFunc(job.Spec, s.wrap(job))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("scheduling %s (%q): %w", job.Name, job.Spec, err)
		}
		s.jobs[job.Name] = id
	}
	return s, nil
}

// wrap adds a per-run timeout and logs the outcome.
func (s *Scheduler) wrap(job Job) func() {
	return func() {
		ctx := s.ctx
		if job.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, job.Timeout)
			defer cancel()
		}

		start := time.Now()
		err := job.Run(ctx)
		log := logger.Named("scheduler").With("job", job.Name, "duration", time.Since(start))
		if err != nil {
			log.Errorw("Job failed", "error", err)
			return
		}
		log.Infow("Job completed")
	}
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	for name, id := range s.jobs {
		logger.Get().Infow("Job scheduled", "job", name, "next", s.cron.Entry(id).Next)
	}
}

// Stop cancels in-flight job contexts and waits for running jobs to return,
// or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}
