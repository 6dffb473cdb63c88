package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/printchain/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQueueConfig() QueueConfig {
	return QueueConfig{
		Workers:       2,
		QueueSize:     4,
		TaskTimeout:   time.Second,
		RetryAttempts: 2,
		RetryDelay:    10 * time.Millisecond,
	}
}

func startQueue(t *testing.T, cfg QueueConfig) *TaskQueue {
	t.Helper()
	q, err := NewTaskQueue(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, q.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = q.Stop(ctx)
	})
	return q
}

func TestNewTaskQueue_RejectsInvalidConfig(t *testing.T) {
	cfg := testQueueConfig()
	cfg.Workers = 0
	_, err := NewTaskQueue(cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestQueueConfigFrom(t *testing.T) {
	qc := QueueConfigFrom(config.SchedulerConfig{
		MaxConcurrentJobs: 5,
		QueueSize:         50,
		JobTimeout:        time.Minute,
		RetryAttempts:     1,
		RetryDelay:        time.Second,
	})
	assert.Equal(t, QueueConfig{Workers: 5, QueueSize: 50, TaskTimeout: time.Minute, RetryAttempts: 1, RetryDelay: time.Second}, qc)

	assert.Equal(t, 3, QueueConfigFrom(config.SchedulerConfig{}).Workers)
}

func TestTaskQueue_Do(t *testing.T) {
	q := startQueue(t, testQueueConfig())

	t.Run("returns the task result", func(t *testing.T) {
		assert.NoError(t, q.Do(context.Background(), TaskCascade, func(context.Context) error { return nil }))

		boom := errors.New("boom")
		assert.ErrorIs(t, q.Do(context.Background(), TaskInvoice, func(context.Context) error { return boom }), boom)
	})

	t.Run("panic becomes an error", func(t *testing.T) {
		err := q.Do(context.Background(), TaskAudit, func(context.Context) error { panic("bad row") })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad row")
	})

	t.Run("task context carries caller values", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "req-1")
		var got any
		require.NoError(t, q.Do(ctx, TaskWebhook, func(ctx context.Context) error {
			got = ctx.Value(key{})
			return nil
		}))
		assert.Equal(t, "req-1", got)
	})

	t.Run("task is bounded by the timeout", func(t *testing.T) {
		cfg := testQueueConfig()
		cfg.TaskTimeout = 20 * time.Millisecond
		short := startQueue(t, cfg)

		err := short.Do(context.Background(), TaskAudit, func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("unknown type", func(t *testing.T) {
		err := q.Do(context.Background(), TaskType("reports"), func(context.Context) error { return nil })
		assert.ErrorIs(t, err, ErrUnknownTaskType)
	})
}

func TestTaskQueue_NotRunning(t *testing.T) {
	q, err := NewTaskQueue(testQueueConfig(), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, q.Submit(TaskCascade, "x", func(context.Context) error { return nil }), ErrSchedulerNotRunning)
	assert.ErrorIs(t, q.Do(context.Background(), TaskCascade, func(context.Context) error { return nil }), ErrSchedulerNotRunning)
}

func TestTaskQueue_QueueFull(t *testing.T) {
	cfg := testQueueConfig()
	cfg.Workers = 1
	cfg.QueueSize = 1
	q := startQueue(t, cfg)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, q.Submit(TaskInvoice, "blocker", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	require.NoError(t, q.Submit(TaskInvoice, "queued", func(context.Context) error { return nil }))
	assert.ErrorIs(t, q.Submit(TaskInvoice, "overflow", func(context.Context) error { return nil }), ErrJobQueueFull)

	// other task types have their own pool
	assert.NoError(t, q.Do(context.Background(), TaskCascade, func(context.Context) error { return nil }))
	close(release)
}

func TestTaskQueue_SubmitRetries(t *testing.T) {
	q := startQueue(t, testQueueConfig())

	var calls atomic.Int32
	require.NoError(t, q.Submit(TaskCascade, "flaky", func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}))

	assert.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTaskQueue_SubmitGivesUpAfterRetries(t *testing.T) {
	q := startQueue(t, testQueueConfig())

	var calls atomic.Int32
	require.NoError(t, q.Submit(TaskCascade, "broken", func(context.Context) error {
		calls.Add(1)
		return errors.New("permanent")
	}))

	assert.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTaskQueue_BoundedConcurrency(t *testing.T) {
	cfg := testQueueConfig()
	cfg.Workers = 2
	cfg.QueueSize = 10
	q := startQueue(t, cfg)

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Do(context.Background(), TaskWebhook, func(context.Context) error {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestTaskQueue_Stop(t *testing.T) {
	q, err := NewTaskQueue(testQueueConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, q.Start(context.Background()))
	assert.True(t, q.Running())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))
	assert.False(t, q.Running())
	assert.NoError(t, q.Stop(ctx))
}
