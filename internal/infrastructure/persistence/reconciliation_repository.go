package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/reconciliation"
	"github.com/printchain/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSyncLogRepository implements reconciliation.SyncLogRepository and
// reconciliation.CorrectionStore using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Append inserts a log row. Rows are never updated or deleted.
func (r *GormSyncLogRepository) Append(ctx context.Context, l *reconciliation.SyncLog) error {
	return wrapErr(r.db.WithContext(ctx).Create(models.SyncLogModelFromDomain(l)).Error)
}

// List returns log rows, newest first
func (r *GormSyncLogRepository) List(ctx context.Context, filter reconciliation.SyncLogFilter) ([]reconciliation.SyncLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SyncLogModel{})
	if filter.SubjectID != nil {
		q = q.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.Trigger != "" {
		q = q.Where("trigger_type = ?", filter.Trigger)
	}
	if filter.Since != nil {
		q = q.Where("logged_at >= ?", *filter.Since)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err)
	}

	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	page := max(filter.Page, 1)

	var rows []models.SyncLogModel
	if err := q.Order("logged_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, wrapErr(err)
	}
	out := make([]reconciliation.SyncLog, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// CountBySubject counts log rows of one document
func (r *GormSyncLogRepository) CountBySubject(ctx context.Context, subjectID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SyncLogModel{}).Where("subject_id = ?", subjectID).Count(&n).Error
	return n, wrapErr(err)
}

// ApplyCorrection updates the invoice amount and appends the log row in one
// transaction. A concurrent change to the invoice aborts both.
func (r *GormSyncLogRepository) ApplyCorrection(ctx context.Context, c *reconciliation.Correction) error {
	inv := c.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND version = ?", inv.ID, inv.Version-1).
			Updates(map[string]any{
				"amount":     inv.Amount,
				"version":    inv.Version,
				"updated_at": inv.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflict("invoice " + inv.InvoiceNo)
		}
		return tx.Create(models.SyncLogModelFromDomain(c.Log)).Error
	})
	return wrapErr(err)
}

var (
	_ reconciliation.SyncLogRepository = (*GormSyncLogRepository)(nil)
	_ reconciliation.CorrectionStore   = (*GormSyncLogRepository)(nil)
)
