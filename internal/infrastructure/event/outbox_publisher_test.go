package event

import (
	"context"
	"testing"

	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/infrastructure/persistence/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOutboxPublisher_SaveEvents(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	serializer := NewEventSerializer()
	serializer.Register("TestEvent", &testEvent{})
	publisher := NewOutboxPublisher(serializer, 7)

	events := []shared.DomainEvent{newTestEvent("TestEvent"), newTestEvent("TestEvent")}
	err := db.Transaction(func(tx *gorm.DB) error {
		return publisher.SaveEvents(ctx, tx, events...)
	})
	require.NoError(t, err)

	pending, err := NewGormOutboxRepository(db).FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, 7, pending[0].MaxRetries)

	decoded, err := serializer.Deserialize(pending[0].EventType, pending[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "test data", decoded.(*testEvent).Data)
}

func TestOutboxPublisher_RolledBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t)
	publisher := NewOutboxPublisher(NewEventSerializer(), 0)

	_ = db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, publisher.SaveEvents(ctx, tx, newTestEvent("TestEvent")))
		return assert.AnError
	})

	counts, err := NewGormOutboxRepository(db).CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestOutboxPublisher_RejectsForeignTx(t *testing.T) {
	publisher := NewOutboxPublisher(NewEventSerializer(), 0)
	err := publisher.SaveEvents(context.Background(), "not a tx", newTestEvent("TestEvent"))
	assert.ErrorContains(t, err, "expected *gorm.DB")

	assert.NoError(t, publisher.SaveEvents(context.Background(), nil))
}
