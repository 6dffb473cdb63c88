package event

import (
	"context"
	"fmt"

	"github.com/printchain/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher is the OutboxEventSaver handed to repositories. Events are
// written with the repository's transaction and therefore commit or roll
// back with the aggregate row.
type OutboxPublisher struct {
	serializer *EventSerializer
	maxRetries int
}

// NewOutboxPublisher creates a publisher. A positive maxRetries overrides
// shared.DefaultMaxRetries on every entry it writes.
func NewOutboxPublisher(serializer *EventSerializer, maxRetries int) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer, maxRetries: maxRetries}
}

// SaveEvents stores events through tx, which must be a *gorm.DB
func (p *OutboxPublisher) SaveEvents(ctx context.Context, tx any, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	db, ok := tx.(*gorm.DB)
	if !ok {
		return fmt.Errorf("outbox: expected *gorm.DB transaction, got %T", tx)
	}
	return p.PublishWithTx(ctx, db, events...)
}

// PublishWithTx serializes events and saves them as pending outbox entries
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	entries := make([]*shared.OutboxEntry, len(events))
	for i, ev := range events {
		payload, err := p.serializer.Serialize(ev)
		if err != nil {
			return err
		}
		entries[i] = shared.NewOutboxEntry(ev, payload)
		if p.maxRetries > 0 {
			entries[i].MaxRetries = p.maxRetries
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
