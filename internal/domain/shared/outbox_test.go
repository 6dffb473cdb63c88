package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	BaseDomainEvent
}

func TestNewOutboxEntry(t *testing.T) {
	aggID := uuid.New()
	evt := &testEvent{BaseDomainEvent: NewBaseDomainEvent("JobPriced", "Job", aggID)}

	entry := NewOutboxEntry(evt, []byte(`{"ok":true}`))

	assert.Equal(t, evt.EventID(), entry.EventID)
	assert.Equal(t, "JobPriced", entry.EventType)
	assert.Equal(t, aggID, entry.AggregateID)
	assert.Equal(t, "Job", entry.AggregateType)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkFailed(t *testing.T) {
	t.Run("schedules exponential retry", func(t *testing.T) {
		entry := &OutboxEntry{ID: uuid.New(), Status: OutboxStatusProcessing, MaxRetries: 5}

		entry.MarkFailed("notifier unavailable")
		require.NotNil(t, entry.NextRetryAt)
		assert.Equal(t, OutboxStatusFailed, entry.Status)
		assert.Equal(t, 1, entry.RetryCount)
		assert.WithinDuration(t, time.Now().Add(time.Second), *entry.NextRetryAt, 500*time.Millisecond)

		entry.MarkFailed("notifier unavailable")
		assert.WithinDuration(t, time.Now().Add(2*time.Second), *entry.NextRetryAt, 500*time.Millisecond)
		assert.True(t, entry.CanRetry())
	})

	t.Run("moves to dead letter when retries are exhausted", func(t *testing.T) {
		entry := &OutboxEntry{ID: uuid.New(), Status: OutboxStatusProcessing, RetryCount: 4, MaxRetries: 5}

		entry.MarkFailed("still failing")
		assert.True(t, entry.IsDead())
		assert.False(t, entry.CanRetry())
		assert.Equal(t, "still failing", entry.LastError)
	})
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusPending}
	require.NoError(t, entry.MarkProcessing())
	assert.Equal(t, OutboxStatusProcessing, entry.Status)

	sent := &OutboxEntry{Status: OutboxStatusSent}
	assert.Error(t, sent.MarkProcessing())
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	t.Run("resets dead letter entry", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:         uuid.New(),
			EventType:  "InvoiceIssued",
			Status:     OutboxStatusDead,
			RetryCount: 5,
			MaxRetries: 5,
			LastError:  "smtp relay down",
		}

		require.NoError(t, entry.ResetForRetry())
		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Equal(t, 0, entry.RetryCount)
		assert.Empty(t, entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
	})

	t.Run("rejects live entries", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusProcessing, OutboxStatusSent, OutboxStatusFailed} {
			entry := &OutboxEntry{Status: status}
			assert.Error(t, entry.ResetForRetry())
		}
	})
}
