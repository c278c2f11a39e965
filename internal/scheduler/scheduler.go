// Package scheduler runs the periodic portfolio snapshot job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"vinvest/internal/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SnapshotJob is the work triggered on each tick.
type SnapshotJob interface {
	ComputeAndRecordSnapshots(ctx context.Context, recordedAt time.Time) (*services.SnapshotRun, error)
}

// Scheduler triggers SnapshotJob on a cron schedule. Overlapping runs are
// skipped rather than queued.
type Scheduler struct {
	cron    *cron.Cron
	job     SnapshotJob
	logger  *zap.SugaredLogger
	timeout time.Duration
}

// New registers job on schedule (standard five-field cron syntax). timeout bounds
// a single run.
func New(schedule string, job SnapshotJob, logger *zap.SugaredLogger, timeout time.Duration) (*Scheduler, error) {
	cl := cronLogger{logger}
	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		job:     job,
		logger:  logger,
		timeout: timeout,
	}

	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid snapshot schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running job, or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("snapshot job still running at shutdown")
	}
}

// RunOnce executes a single snapshot cycle.
func (s *Scheduler) RunOnce(ctx context.Context) (*services.SnapshotRun, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	run, err := s.job.ComputeAndRecordSnapshots(ctx, start.UTC())
	if err != nil {
		s.logger.Errorw("snapshot run failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	s.logger.Infow("snapshot run completed",
		"recorded", run.Recorded,
		"failed", run.Failed,
		"pruned", run.Pruned,
		"duration", time.Since(start),
	)
	return run, nil
}

func (s *Scheduler) tick() {
	_, _ = s.RunOnce(context.Background())
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
