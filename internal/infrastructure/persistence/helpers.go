package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// flushEvents stores the aggregate's pending events in the outbox using tx.
// The caller clears them once the transaction has committed.
func flushEvents(ctx context.Context, tx *gorm.DB, saver shared.OutboxEventSaver, agg shared.AggregateRoot) error {
	events := agg.GetDomainEvents()
	if saver == nil || len(events) == 0 {
		return nil
	}
	if err := saver.SaveEvents(ctx, tx, events...); err != nil {
		return fmt.Errorf("failed to save events to outbox: %w", err)
	}
	return nil
}

// nextSequence increments the named counter inside tx and returns the new
// value. The row update holds a lock until tx ends, so concurrent callers
// receive distinct values.
func nextSequence(tx *gorm.DB, name string) (int64, error) {
	now := time.Now()
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SequenceModel{Name: name, Value: 0, UpdatedAt: now}).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.SequenceModel{}).
		Where("name = ?", name).
		Updates(map[string]any{"value": gorm.Expr("value + 1"), "updated_at": now}).Error; err != nil {
		return 0, err
	}
	var seq models.SequenceModel
	if err := tx.Where("name = ?", name).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// sortColumns whitelists ORDER BY columns per table
var sortColumns = map[string]map[string]bool{
	"jobs": {"created_at": true, "updated_at": true, "job_no": true, "customer_total": true},
}

func applyOrder(q *gorm.DB, table string, filter shared.Filter) *gorm.DB {
	col := filter.OrderBy
	if !sortColumns[table][col] {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	return q.Order(col + " " + dir)
}
