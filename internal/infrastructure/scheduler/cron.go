package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	"DailyBrief/internal/logging"
	"DailyBrief/internal/ports"
)

// CronScheduler fires the job on a standard five-field cron expression in a
// fixed time zone. A firing that arrives while the previous run is still in
// progress is skipped.
type CronScheduler struct {
	spec     string
	location *time.Location
	logger   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via cron expression string.
func NewCronScheduler(spec string, location *time.Location, logger *slog.Logger) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{spec: spec, location: location, logger: logger}
}

// Start registers the job and begins firing. The scheduler stops on its own
// when ctx is cancelled.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return errors.New("scheduler job is nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return errors.New("scheduler already started")
	}

	cronLogger := logging.NewCronLogger(c.logger)
	driver := cron.New(
		cron.WithLocation(c.location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := driver.AddFunc(c.spec, func() { job(time.Now().In(c.location)) }); err != nil {
		return errors.Wrapf(err, "invalid schedule %q", c.spec)
	}

	driver.Start()
	c.cron = driver

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()
	return nil
}

// Next reports the next firing time, or zero when not started.
func (c *CronScheduler) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron == nil {
		return time.Time{}
	}
	entries := c.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop halts the driver and waits for a running job until ctx is done.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	driver := c.cron
	c.cron = nil
	c.mu.Unlock()

	if driver == nil {
		return nil
	}
	select {
	case <-driver.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
