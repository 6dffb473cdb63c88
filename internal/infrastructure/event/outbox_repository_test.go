package event

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/infrastructure/persistence/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func newEntry(t *testing.T, eventType string) *shared.OutboxEntry {
	t.Helper()
	return shared.NewOutboxEntry(newTestEvent(eventType), []byte(`{"data":"x"}`))
}

func TestGormOutboxRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(testdb.Open(t))

	first := newEntry(t, "A")
	first.CreatedAt = time.Now().Add(-time.Minute)
	second := newEntry(t, "B")
	require.NoError(t, repo.Save(ctx, first, second))
	require.NoError(t, repo.Save(ctx))

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, []byte(`{"data":"x"}`), pending[0].Payload)

	got, err := repo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.EventType)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormOutboxRepository_MarkProcessingClaimsOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(testdb.Open(t))

	entry := newEntry(t, "A")
	require.NoError(t, repo.Save(ctx, entry))

	claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, shared.OutboxStatusProcessing, claimed[0].Status)

	again, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	assert.Empty(t, again)

	none, err := repo.MarkProcessing(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGormOutboxRepository_RetryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(testdb.Open(t))

	entry := newEntry(t, "A")
	entry.MaxRetries = 2
	require.NoError(t, repo.Save(ctx, entry))

	entry.MarkFailed("first")
	require.NoError(t, repo.Update(ctx, entry))
	due, err := repo.FindRetryable(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "first", due[0].LastError)

	notYet, err := repo.FindRetryable(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, notYet)

	entry.MarkFailed("second")
	require.NoError(t, repo.Update(ctx, entry))
	dead, total, err := repo.FindDead(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, dead, 1)
	assert.Equal(t, 2, dead[0].RetryCount)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusDead])
}

func TestGormOutboxRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(testdb.Open(t))

	old := newEntry(t, "A")
	fresh := newEntry(t, "B")
	require.NoError(t, repo.Save(ctx, old, fresh))

	old.MarkSent()
	past := time.Now().Add(-48 * time.Hour)
	old.ProcessedAt = &past
	require.NoError(t, repo.Update(ctx, old))
	fresh.MarkSent()
	require.NoError(t, repo.Update(ctx, fresh))

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestGormOutboxRepository_MarkProcessingSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)
	won, lost := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "outbox_events" SET "status"=$1,"updated_at"=$2 WHERE id = $3 AND status IN ($4,$5)`)).
		WithArgs(shared.OutboxStatusProcessing, sqlmock.AnyArg(), won, shared.OutboxStatusPending, shared.OutboxStatusFailed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "outbox_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE id IN ($1)`)).
		WithArgs(won).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "status"}).
			AddRow(won, "A", shared.OutboxStatusProcessing))

	claimed, err := repo.MarkProcessing(context.Background(), []uuid.UUID{won, lost})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, won, claimed[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
