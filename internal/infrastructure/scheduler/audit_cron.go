package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/printchain/backend/internal/infrastructure/lock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// nightlyAuditLockKey is held for the duration of one scheduled run
const nightlyAuditLockKey = "nightly-audit"

// AuditRunner performs one scheduled audit, repairing when asked to
type AuditRunner interface {
	RunScheduledAudit(ctx context.Context, repair bool) error
}

// AuditCronConfig holds configuration for the nightly audit trigger
type AuditCronConfig struct {
	Schedule string
	Timezone string
	Repair   bool
	LockTTL  time.Duration
}

// AuditCron triggers the synchronization audit on a cron schedule. Every
// replica schedules it; the lock lets only one of them run it.
type AuditCron struct {
	config AuditCronConfig
	runner AuditRunner
	queue  *TaskQueue
	locker lock.Locker
	logger *zap.Logger

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewAuditCron validates the schedule and creates the trigger
func NewAuditCron(cfg AuditCronConfig, runner AuditRunner, queue *TaskQueue, locker lock.Locker, logger *zap.Logger) (*AuditCron, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Minute
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Unknown scheduler timezone, using UTC", zap.String("timezone", cfg.Timezone))
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	a := &AuditCron{
		config: cfg,
		runner: runner,
		queue:  queue,
		locker: locker,
		logger: logger,
		cron:   c,
	}
	if _, err := c.AddFunc(cfg.Schedule, a.trigger); err != nil {
		return nil, fmt.Errorf("%w: audit schedule %q: %v", ErrInvalidConfig, cfg.Schedule, err)
	}
	return a, nil
}

// Start starts the cron trigger
func (a *AuditCron) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.isRunning {
		return
	}
	a.isRunning = true
	a.cron.Start()
	a.logger.Info("Audit cron started",
		zap.String("schedule", a.config.Schedule),
		zap.Bool("repair", a.config.Repair),
	)
}

// Stop stops scheduling and waits for a run in progress
func (a *AuditCron) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.isRunning {
		a.mu.Unlock()
		return nil
	}
	a.isRunning = false
	a.mu.Unlock()

	stopped := a.cron.Stop()
	select {
	case <-stopped.Done():
		a.logger.Info("Audit cron stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *AuditCron) trigger() {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.LockTTL)
	defer cancel()
	if err := a.RunNow(ctx); err != nil && !errors.Is(err, lock.ErrNotObtained) {
		a.logger.Error("Scheduled audit failed", zap.Error(err))
	}
}

// RunNow runs the audit immediately under the replica lock. It returns
// lock.ErrNotObtained when another replica is already running it.
func (a *AuditCron) RunNow(ctx context.Context) error {
	lease, err := a.locker.Obtain(ctx, nightlyAuditLockKey, a.config.LockTTL)
	if errors.Is(err, lock.ErrNotObtained) {
		a.logger.Info("Scheduled audit already running elsewhere, skipping")
		return err
	}
	if err != nil {
		return fmt.Errorf("obtain audit lock: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("Failed to release audit lock", zap.Error(err))
		}
	}()

	started := time.Now()
	run := func(ctx context.Context) error {
		return a.runner.RunScheduledAudit(ctx, a.config.Repair)
	}
	if a.queue != nil {
		err = a.queue.Do(ctx, TaskAudit, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return err
	}

	a.logger.Info("Scheduled audit finished", zap.Duration("elapsed", time.Since(started)))
	return nil
}
