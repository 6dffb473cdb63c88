package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/infrastructure/config"
	"github.com/printchain/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TaskType selects the worker pool a task runs on
type TaskType string

const (
	TaskCascade TaskType = "cascade"
	TaskInvoice TaskType = "invoice"
	TaskAudit   TaskType = "audit"
	TaskWebhook TaskType = "webhook"
)

// AllTaskTypes returns every task type that gets a pool
func AllTaskTypes() []TaskType {
	return []TaskType{TaskCascade, TaskInvoice, TaskAudit, TaskWebhook}
}

// TaskStatus represents the status of a queued task
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "PENDING"
	TaskStatusRunning TaskStatus = "RUNNING"
	TaskStatusSuccess TaskStatus = "SUCCESS"
	TaskStatusFailed  TaskStatus = "FAILED"
)

// TaskFunc is the unit of work
type TaskFunc func(ctx context.Context) error

// Task is one queued unit of work
type Task struct {
	ID         uuid.UUID
	Type       TaskType
	Name       string
	Status     TaskStatus
	Error      string
	RetryCount int
	MaxRetries int

	fn TaskFunc
	// parent carries request-scoped values for Do; nil for submitted tasks
	parent context.Context
	done   chan error
}

func newTask(typ TaskType, name string, fn TaskFunc, maxRetries int) *Task {
	return &Task{
		ID:         uuid.New(),
		Type:       typ,
		Name:       name,
		Status:     TaskStatusPending,
		MaxRetries: maxRetries,
		fn:         fn,
	}
}

func (t *Task) shouldRetry() bool {
	return t.done == nil && t.RetryCount < t.MaxRetries
}

// QueueConfig holds task queue configuration
type QueueConfig struct {
	Workers       int
	QueueSize     int
	TaskTimeout   time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultQueueConfig returns default queue configuration
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Workers:       3,
		QueueSize:     100,
		TaskTimeout:   2 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    5 * time.Second,
	}
}

// QueueConfigFrom maps the scheduler section of the application config
func QueueConfigFrom(cfg config.SchedulerConfig) QueueConfig {
	qc := DefaultQueueConfig()
	if cfg.MaxConcurrentJobs > 0 {
		qc.Workers = cfg.MaxConcurrentJobs
	}
	if cfg.QueueSize > 0 {
		qc.QueueSize = cfg.QueueSize
	}
	if cfg.JobTimeout > 0 {
		qc.TaskTimeout = cfg.JobTimeout
	}
	if cfg.RetryAttempts >= 0 {
		qc.RetryAttempts = cfg.RetryAttempts
	}
	if cfg.RetryDelay > 0 {
		qc.RetryDelay = cfg.RetryDelay
	}
	return qc
}

func (c QueueConfig) validate() error {
	if c.Workers < 1 || c.QueueSize < 1 || c.TaskTimeout <= 0 {
		return fmt.Errorf("%w: workers, queue size and task timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// TaskQueue runs tasks on a bounded worker pool per task type. Work of one
// type cannot starve another type.
type TaskQueue struct {
	config QueueConfig
	logger *zap.Logger

	queues    map[TaskType]chan *Task
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewTaskQueue creates a queue with one pool for each of AllTaskTypes
func NewTaskQueue(cfg QueueConfig, logger *zap.Logger) (*TaskQueue, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	queues := make(map[TaskType]chan *Task, len(AllTaskTypes()))
	for _, typ := range AllTaskTypes() {
		queues[typ] = make(chan *Task, cfg.QueueSize)
	}
	return &TaskQueue{
		config: cfg,
		logger: logger,
		queues: queues,
	}, nil
}

// Start starts the worker pools
func (q *TaskQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.isRunning {
		return nil
	}
	q.isRunning = true
	q.ctx, q.cancel = context.WithCancel(ctx)

	for typ, ch := range q.queues {
		for i := 0; i < q.config.Workers; i++ {
			q.wg.Add(1)
			go q.worker(q.ctx, typ, ch, i)
		}
	}

	q.logger.Info("Task queue started",
		zap.Int("workers_per_type", q.config.Workers),
		zap.Int("queue_size", q.config.QueueSize),
		zap.Duration("task_timeout", q.config.TaskTimeout),
	)
	return nil
}

// Stop cancels running tasks and waits for the workers to exit. Tasks still
// queued are dropped; blocked Do callers receive ErrSchedulerNotRunning.
func (q *TaskQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.isRunning {
		q.mu.Unlock()
		return nil
	}
	q.isRunning = false
	q.mu.Unlock()

	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		q.logger.Warn("Task queue stop timed out")
		return ctx.Err()
	}

	for _, ch := range q.queues {
		q.drain(ch)
	}
	q.logger.Info("Task queue stopped gracefully")
	return nil
}

func (q *TaskQueue) drain(ch chan *Task) {
	for {
		select {
		case task := <-ch:
			if task.done != nil {
				task.done <- ErrSchedulerNotRunning
			}
		default:
			return
		}
	}
}

// Running reports whether the workers are started
func (q *TaskQueue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.isRunning
}

// Submit queues fn without waiting for it. A failed task is retried after
// RetryDelay up to RetryAttempts times.
func (q *TaskQueue) Submit(typ TaskType, name string, fn TaskFunc) error {
	return q.enqueue(newTask(typ, name, fn, q.config.RetryAttempts))
}

// Do runs fn on the typ pool and waits for its result. ctx bounds the wait
// and is the parent of the task context; the task is not retried.
func (q *TaskQueue) Do(ctx context.Context, typ TaskType, fn TaskFunc) error {
	task := newTask(typ, "", fn, 0)
	task.parent = ctx
	task.done = make(chan error, 1)

	if err := q.enqueue(task); err != nil {
		return err
	}

	select {
	case err := <-task.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *TaskQueue) enqueue(task *Task) error {
	ch, ok := q.queues[task.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTaskType, task.Type)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case ch <- task:
		q.logger.Debug("Task submitted",
			zap.String("task_id", task.ID.String()),
			zap.String("task_type", string(task.Type)),
			zap.String("name", task.Name),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (q *TaskQueue) worker(ctx context.Context, typ TaskType, ch <-chan *Task, workerID int) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-ch:
			q.process(ctx, task, workerID)
		}
	}
}

func (q *TaskQueue) process(ctx context.Context, task *Task, workerID int) {
	task.Status = TaskStatusRunning

	parent := ctx
	if task.parent != nil {
		// stop on either the caller giving up or the queue shutting down
		var stop context.CancelFunc
		parent, stop = context.WithCancel(task.parent)
		defer stop()
		unregister := context.AfterFunc(ctx, stop)
		defer unregister()
	}
	taskCtx, cancel := context.WithTimeout(parent, q.config.TaskTimeout)
	defer cancel()

	err := q.run(taskCtx, task)
	if err == nil {
		task.Status = TaskStatusSuccess
		if task.done != nil {
			task.done <- nil
		}
		return
	}

	task.Status = TaskStatusFailed
	task.Error = err.Error()
	q.logger.Error("Task failed",
		zap.Int("worker_id", workerID),
		zap.String("task_id", task.ID.String()),
		zap.String("task_type", string(task.Type)),
		zap.String("name", task.Name),
		zap.Int("retry_count", task.RetryCount),
		zap.Error(err),
	)

	if task.done != nil {
		task.done <- err
		return
	}
	if task.shouldRetry() {
		task.RetryCount++
		task.Status = TaskStatusPending
		time.AfterFunc(q.config.RetryDelay, func() {
			if err := q.enqueue(task); err != nil {
				q.logger.Warn("Failed to re-queue task for retry",
					zap.String("task_id", task.ID.String()),
					zap.Error(err),
				)
			}
		})
	}
}

func (q *TaskQueue) run(ctx context.Context, task *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	telemetry.Labeled(ctx, func(ctx context.Context) {
		err = task.fn(ctx)
	}, "task_type", string(task.Type))
	return err
}
