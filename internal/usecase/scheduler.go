package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/domain"
	"DailyBrief/internal/ports"
)

// ErrRunInProgress is returned by RunNow while another run is executing.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Runner executes one full pipeline run.
type Runner interface {
	Run(ctx context.Context) domain.RunResult
}

// Scheduler wires the cron-like driver with the pipeline use case. Triggers
// that arrive while a run is in progress are skipped, whether they come from
// the driver or from RunNow.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline Runner
	logger   *slog.Logger
	running  atomic.Bool
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline Runner, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return errors.New("scheduler is not wired")
	}

	job := func(trigger time.Time) {
		s.info("scheduled run triggered", "at", trigger)
		if _, err := s.RunNow(ctx); err != nil {
			s.warn("scheduled run skipped", "reason", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// RunNow executes one run immediately unless another run holds the guard.
func (s *Scheduler) RunNow(ctx context.Context) (domain.RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.RunResult{}, ErrRunInProgress
	}
	defer s.running.Store(false)

	return s.pipeline.Run(ctx), nil
}

// Running reports whether a run currently holds the guard.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

func (s *Scheduler) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Scheduler) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
