package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a task to a stopped queue
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the task type's queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrUnknownTaskType is returned for a task type without a pool
	ErrUnknownTaskType = errors.New("unknown task type")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
