package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StalledResumer re-runs inbound events left mid-pipeline
type StalledResumer interface {
	ResumeStalled(ctx context.Context, olderThan time.Duration) (int, error)
}

// StalledSweeper periodically resumes inbound events that stopped in a
// non-terminal state, e.g. after a crash between pipeline steps.
type StalledSweeper struct {
	resumer   StalledResumer
	queue     *TaskQueue
	olderThan time.Duration
	every     time.Duration
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewStalledSweeper creates a sweeper that runs every interval on the webhook pool
func NewStalledSweeper(resumer StalledResumer, queue *TaskQueue, olderThan, every time.Duration, logger *zap.Logger) *StalledSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if every <= 0 {
		every = time.Minute
	}
	return &StalledSweeper{
		resumer:   resumer,
		queue:     queue,
		olderThan: olderThan,
		every:     every,
		logger:    logger,
	}
}

// Start starts the sweep loop
func (s *StalledSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Stalled event sweeper started",
		zap.Duration("older_than", s.olderThan),
		zap.Duration("interval", s.every),
	)
}

// Stop stops the loop and waits for it
func (s *StalledSweeper) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *StalledSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns how many events were resumed
func (s *StalledSweeper) Sweep(ctx context.Context) int {
	var resumed int
	run := func(ctx context.Context) error {
		n, err := s.resumer.ResumeStalled(ctx, s.olderThan)
		resumed = n
		return err
	}

	var err error
	if s.queue != nil {
		err = s.queue.Do(ctx, TaskWebhook, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		s.logger.Error("Stalled event sweep failed", zap.Error(err))
		return 0
	}
	if resumed > 0 {
		s.logger.Info("Resumed stalled inbound events", zap.Int("count", resumed))
	}
	return resumed
}
