package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/printchain/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements trade.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB, outbox shared.OutboxEventSaver) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db, outbox: outbox}
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var m models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "purchase order")
	}
	return m.ToDomain(), nil
}

// FindByParties finds the order of a job between two companies
func (r *GormPurchaseOrderRepository) FindByParties(ctx context.Context, key trade.PartyKey) (*trade.PurchaseOrder, error) {
	var m models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Where("job_id = ? AND origin_company_id = ? AND target_company_id = ?", key.JobID, key.OriginCompanyID, key.TargetCompanyID).
		First(&m).Error; err != nil {
		return nil, notFound(err, "purchase order")
	}
	return m.ToDomain(), nil
}

// FindByExternalRef finds an order by the deduplication key it was created under
func (r *GormPurchaseOrderRepository) FindByExternalRef(ctx context.Context, ref string) (*trade.PurchaseOrder, error) {
	var m models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).Where("external_ref = ?", ref).First(&m).Error; err != nil {
		return nil, notFound(err, "purchase order")
	}
	return m.ToDomain(), nil
}

// FindByJob returns the orders of a job in creation order
func (r *GormPurchaseOrderRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]trade.PurchaseOrder, error) {
	var rows []models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at, po_number").
		Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	return toPurchaseOrders(rows), nil
}

// CountByJob counts the orders of a job
func (r *GormPurchaseOrderRepository) CountByJob(ctx context.Context, jobID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Where("job_id = ?", jobID).Count(&n).Error
	return n, wrapErr(err)
}

// List returns job-linked orders in creation order
func (r *GormPurchaseOrderRepository) List(ctx context.Context, filter trade.PurchaseOrderFilter) ([]trade.PurchaseOrder, error) {
	q := r.db.WithContext(ctx).Where("job_id IS NOT NULL")
	if len(filter.JobIDs) > 0 {
		q = q.Where("job_id IN ?", filter.JobIDs)
	}
	if len(filter.Legs) > 0 {
		q = q.Where("leg IN ?", filter.Legs)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var rows []models.PurchaseOrderModel
	if err := q.Order("created_at, po_number").Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	return toPurchaseOrders(rows), nil
}

// CreateIfAbsent inserts po unless an equivalent order exists
func (r *GormPurchaseOrderRepository) CreateIfAbsent(ctx context.Context, po *trade.PurchaseOrder) (*trade.PurchaseOrder, bool, error) {
	var existing *models.PurchaseOrderModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		existing, err = insertPurchaseOrder(ctx, tx, r.outbox, po)
		return err
	})
	if err != nil {
		if isDuplicate(err) {
			// lost the insert race; the winner's row is committed now
			found, ferr := findEquivalentPurchaseOrder(r.db.WithContext(ctx), po)
			if ferr != nil {
				return nil, false, wrapErr(ferr)
			}
			if found != nil {
				return found.ToDomain(), false, nil
			}
		}
		return nil, false, wrapErr(err)
	}
	if existing != nil {
		return existing.ToDomain(), false, nil
	}
	po.ClearDomainEvents()
	return po, true, nil
}

// Save writes a status change; amounts are never updated after issue
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *trade.PurchaseOrder) error {
	res := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("id = ? AND version = ?", po.ID, po.Version-1).
		Updates(map[string]any{
			"status":     po.Status,
			"version":    po.Version,
			"updated_at": po.UpdatedAt,
		})
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return conflict("purchase order " + po.PONumber)
	}
	return nil
}

// insertPurchaseOrder returns the equivalent stored row if there is one,
// otherwise inserts po and its events within tx and returns nil.
func insertPurchaseOrder(ctx context.Context, tx *gorm.DB, outbox shared.OutboxEventSaver, po *trade.PurchaseOrder) (*models.PurchaseOrderModel, error) {
	existing, err := findEquivalentPurchaseOrder(tx, po)
	if err != nil || existing != nil {
		return existing, err
	}
	if err := tx.Create(models.PurchaseOrderModelFromDomain(po)).Error; err != nil {
		return nil, err
	}
	return nil, flushEvents(ctx, tx, outbox, po)
}

// findEquivalentPurchaseOrder looks for a stored order with the same external
// reference or, for job-linked orders, the same party triple.
func findEquivalentPurchaseOrder(db *gorm.DB, po *trade.PurchaseOrder) (*models.PurchaseOrderModel, error) {
	var m models.PurchaseOrderModel
	if po.ExternalRef != nil {
		err := db.Where("external_ref = ?", *po.ExternalRef).First(&m).Error
		if err == nil {
			return &m, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if po.HasJob() {
		err := db.Where("job_id = ? AND origin_company_id = ? AND target_company_id = ?",
			*po.JobID, po.OriginCompanyID, po.TargetCompanyID).First(&m).Error
		if err == nil {
			return &m, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func toPurchaseOrders(rows []models.PurchaseOrderModel) []trade.PurchaseOrder {
	out := make([]trade.PurchaseOrder, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
