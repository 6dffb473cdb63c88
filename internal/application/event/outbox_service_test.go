package event

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutboxRepo struct {
	entries map[uuid.UUID]*shared.OutboxEntry
	failFor uuid.UUID
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

func (r *fakeOutboxRepo) add(status shared.OutboxStatus) *shared.OutboxEntry {
	e := &shared.OutboxEntry{
		ID:            uuid.New(),
		EventID:       uuid.New(),
		EventType:     "InvoiceIssued",
		AggregateID:   uuid.New(),
		AggregateType: "Invoice",
		Status:        status,
		MaxRetries:    shared.DefaultMaxRetries,
		CreatedAt:     time.Now(),
	}
	if status == shared.OutboxStatusDead {
		e.RetryCount = e.MaxRetries
		e.LastError = "smtp relay refused"
	}
	r.entries[e.ID] = e
	return e
}

func (r *fakeOutboxRepo) Save(_ context.Context, entries ...*shared.OutboxEntry) error {
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *fakeOutboxRepo) FindPending(context.Context, int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) FindRetryable(context.Context, time.Time, int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) FindDead(_ context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	var dead []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead {
			dead = append(dead, e)
		}
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i].ID.String() < dead[j].ID.String() })
	start := (page - 1) * pageSize
	if start >= len(dead) {
		return nil, int64(len(dead)), nil
	}
	end := min(start+pageSize, len(dead))
	return dead[start:end], int64(len(dead)), nil
}

func (r *fakeOutboxRepo) FindByID(_ context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	if e, ok := r.entries[id]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOutboxRepo) MarkProcessing(context.Context, []uuid.UUID) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) Update(_ context.Context, entry *shared.OutboxEntry) error {
	if entry.ID == r.failFor {
		return errors.New("connection reset")
	}
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeOutboxRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeOutboxRepo) CountByStatus(context.Context) (map[shared.OutboxStatus]int64, error) {
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func TestOutboxService_DeadLetters(t *testing.T) {
	repo := newFakeOutboxRepo()
	for i := 0; i < 5; i++ {
		repo.add(shared.OutboxStatusDead)
	}
	repo.add(shared.OutboxStatusPending)
	svc := NewOutboxService(repo, nil)

	page, err := svc.DeadLetters(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 2, page.TotalPages)
	for _, item := range page.Items {
		assert.Equal(t, "DEAD", item.Status)
		assert.Equal(t, "smtp relay refused", item.LastError)
	}

	page, err = svc.DeadLetters(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, 5)
}

func TestOutboxService_Retry(t *testing.T) {
	repo := newFakeOutboxRepo()
	dead := repo.add(shared.OutboxStatusDead)
	pending := repo.add(shared.OutboxStatusPending)
	svc := NewOutboxService(repo, nil)

	t.Run("dead entry is requeued", func(t *testing.T) {
		dto, err := svc.Retry(context.Background(), dead.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", dto.Status)
		assert.Zero(t, dto.RetryCount)
		assert.Empty(t, dto.LastError)
	})

	t.Run("live entry is left alone", func(t *testing.T) {
		_, err := svc.Retry(context.Background(), pending.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("unknown entry", func(t *testing.T) {
		_, err := svc.Retry(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOutboxService_RetryAll(t *testing.T) {
	repo := newFakeOutboxRepo()
	for i := 0; i < deadLetterBatch+20; i++ {
		repo.add(shared.OutboxStatusDead)
	}
	live := repo.add(shared.OutboxStatusSent)
	svc := NewOutboxService(repo, nil)

	count, err := svc.RetryAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(deadLetterBatch+20), count)
	for id, e := range repo.entries {
		if id == live.ID {
			assert.Equal(t, shared.OutboxStatusSent, e.Status)
			continue
		}
		assert.Equal(t, shared.OutboxStatusPending, e.Status)
	}
}

func TestOutboxService_RetryAll_StopsWhenNothingMoves(t *testing.T) {
	repo := newFakeOutboxRepo()
	stuck := repo.add(shared.OutboxStatusDead)
	repo.failFor = stuck.ID
	svc := NewOutboxService(repo, nil)

	count, err := svc.RetryAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOutboxService_Stats(t *testing.T) {
	repo := newFakeOutboxRepo()
	for _, s := range []shared.OutboxStatus{
		shared.OutboxStatusPending, shared.OutboxStatusPending,
		shared.OutboxStatusProcessing,
		shared.OutboxStatusSent, shared.OutboxStatusSent, shared.OutboxStatusSent,
		shared.OutboxStatusFailed,
		shared.OutboxStatusDead,
	} {
		repo.add(s)
	}

	stats, err := NewOutboxService(repo, nil).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Processing)
	assert.Equal(t, int64(3), stats.Sent)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Dead)
	assert.Equal(t, int64(8), stats.Total)
}
