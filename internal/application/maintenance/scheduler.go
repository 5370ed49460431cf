// Package maintenance runs the worker's scheduled housekeeping jobs: the
// compliance expiry sweep and the stale alert deactivation.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioSecure-Portal/internal/infrastructure/monitoring/prometheus"
)

// Job names.
const (
	JobComplianceSweep   = "compliance-sweep"
	JobAlertHousekeeping = "alert-housekeeping"
)

// Locker is a lease shared between workers.  A nil Locker runs the job
// unconditionally.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// Job is one scheduled task.  Run returns the number of rows it changed.
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Lock     Locker
	Run      func(ctx context.Context) (int64, error)
}

// Scheduler runs jobs on their cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	metrics *prometheus.AppMetrics
	logger  logging.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler.  metrics may be nil.
func NewScheduler(metrics *prometheus.AppMetrics, logger logging.Logger) *Scheduler {
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(),
		metrics: metrics,
		logger:  logger.Named("scheduler"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers job under its schedule.
func (s *Scheduler) Add(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s: run function required", job.Name)
	}
	if _, err := s.cron.AddFunc(job.Schedule, func() { s.RunOnce(s.ctx, job) }); err != nil {
		return fmt.Errorf("job %s: invalid schedule %q: %w", job.Name, job.Schedule, err)
	}
	s.logger.Info("Job scheduled", logging.String("job", job.Name), logging.String("schedule", job.Schedule))
	return nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for running jobs, or until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// RunOnce executes job now if its lock can be taken.  It reports whether the
// job ran.
func (s *Scheduler) RunOnce(ctx context.Context, job Job) bool {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	log := s.logger.With(logging.String("job", job.Name))

	if job.Lock != nil {
		ok, err := job.Lock.TryLock(ctx)
		if err != nil {
			log.Warn("Job lock unavailable", logging.Err(err))
			return false
		}
		if !ok {
			log.Debug("Job already running elsewhere")
			return false
		}
		defer func() {
			if err := job.Lock.Unlock(context.WithoutCancel(ctx)); err != nil {
				log.Warn("Job lock release failed", logging.Err(err))
			}
		}()
	}

	start := time.Now()
	affected, err := job.Run(ctx)
	elapsed := time.Since(start)
	prometheus.RecordJobRun(s.metrics, job.Name, elapsed, affected, err)
	if err != nil {
		log.Error("Job failed", logging.Err(err), logging.Duration("elapsed", elapsed))
		return true
	}
	log.Info("Job finished", logging.Int64("affected", affected), logging.Duration("elapsed", elapsed))
	return true
}
