package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox row.
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	DefaultMaxRetries = 5
	// DefaultBaseBackoff is the delay before the first retry; each further
	// failure doubles it.
	DefaultBaseBackoff = time.Second
	maxRetryDelay      = 10 * time.Minute
)

// OutboxEntry is a domain event stored next to the aggregate that raised it,
// waiting to be dispatched to in-process handlers.
type OutboxEntry struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOutboxEntry wraps a serialized event as a pending entry
func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (e *OutboxEntry) IsDead() bool { return e.Status == OutboxStatusDead }

// CanRetry reports whether a failed entry still has attempts left
func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

// MarkProcessing claims a pending or failed entry for dispatch
func (e *OutboxEntry) MarkProcessing() error {
	switch e.Status {
	case OutboxStatusPending, OutboxStatusFailed:
	default:
		return fmt.Errorf("outbox entry %s is %s and cannot be claimed", e.ID, e.Status)
	}
	e.transition(OutboxStatusProcessing, time.Now())
	return nil
}

func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.transition(OutboxStatusSent, now)
	e.ProcessedAt = &now
}

// MarkFailed records a failed dispatch. The entry is scheduled for another
// attempt after retryDelay, or dead-lettered once MaxRetries is reached.
func (e *OutboxEntry) MarkFailed(errMsg string) {
	now := time.Now()
	e.RetryCount++
	e.LastError = errMsg
	if e.RetryCount >= e.MaxRetries {
		e.transition(OutboxStatusDead, now)
		e.NextRetryAt = nil
		return
	}
	e.transition(OutboxStatusFailed, now)
	next := now.Add(retryDelay(e.RetryCount))
	e.NextRetryAt = &next
}

// ResetForRetry puts a dead-lettered entry back in the pending queue with a
// fresh retry budget.
func (e *OutboxEntry) ResetForRetry() error {
	if !e.IsDead() {
		return fmt.Errorf("outbox entry %s is %s; only dead letters can be replayed", e.ID, e.Status)
	}
	e.transition(OutboxStatusPending, time.Now())
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	return nil
}

func (e *OutboxEntry) transition(to OutboxStatus, at time.Time) {
	e.Status = to
	e.UpdatedAt = at
}

// retryDelay is DefaultBaseBackoff doubled per prior failure, capped
func retryDelay(failures int) time.Duration {
	d := DefaultBaseBackoff << uint(failures-1)
	if d <= 0 || d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// OutboxRepository persists outbox entries.
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	// FindRetryable returns failed entries whose NextRetryAt is before the given time
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	FindDead(ctx context.Context, page, pageSize int) ([]*OutboxEntry, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	// MarkProcessing claims the given ids and returns only the entries this
	// caller won; concurrent processors never claim the same row.
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}
