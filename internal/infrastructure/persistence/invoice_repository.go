package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/billing"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB, outbox shared.OutboxEventSaver) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db, outbox: outbox}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var m models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "invoice")
	}
	return m.ToDomain(), nil
}

// FindByInvoiceNo finds an invoice by its number
func (r *GormInvoiceRepository) FindByInvoiceNo(ctx context.Context, invoiceNo string) (*billing.Invoice, error) {
	var m models.InvoiceModel
	if err := r.db.WithContext(ctx).Where("invoice_no = ?", invoiceNo).First(&m).Error; err != nil {
		return nil, notFound(err, "invoice "+invoiceNo)
	}
	return m.ToDomain(), nil
}

// FindCustomerInvoice finds the broker-to-customer invoice of a job
func (r *GormInvoiceRepository) FindCustomerInvoice(ctx context.Context, jobID uuid.UUID) (*billing.Invoice, error) {
	var m models.InvoiceModel
	if err := r.db.WithContext(ctx).Where("customer_job_id = ?", jobID).First(&m).Error; err != nil {
		return nil, notFound(err, "customer invoice")
	}
	return m.ToDomain(), nil
}

// FindByPurchaseOrder finds the settlement invoice of a purchase order
func (r *GormInvoiceRepository) FindByPurchaseOrder(ctx context.Context, poID uuid.UUID) (*billing.Invoice, error) {
	var m models.InvoiceModel
	if err := r.db.WithContext(ctx).Where("purchase_order_id = ?", poID).First(&m).Error; err != nil {
		return nil, notFound(err, "settlement invoice")
	}
	return m.ToDomain(), nil
}

// FindSettlementsByPurchaseOrders maps purchase order id to its settlement invoice
func (r *GormInvoiceRepository) FindSettlementsByPurchaseOrders(ctx context.Context, poIDs []uuid.UUID) (map[uuid.UUID]*billing.Invoice, error) {
	out := make(map[uuid.UUID]*billing.Invoice, len(poIDs))
	const chunk = 500
	for start := 0; start < len(poIDs); start += chunk {
		end := min(start+chunk, len(poIDs))
		var rows []models.InvoiceModel
		if err := r.db.WithContext(ctx).
			Where("purchase_order_id IN ?", poIDs[start:end]).
			Find(&rows).Error; err != nil {
			return nil, wrapErr(err)
		}
		for i := range rows {
			out[*rows[i].PurchaseOrderID] = rows[i].ToDomain()
		}
	}
	return out, nil
}

// Issue numbers inv from the sequence of its issue year and inserts it with
// its events. Numbers are gap-free per year because the sequence increment
// rolls back with a failed insert.
func (r *GormInvoiceRepository) Issue(ctx context.Context, inv *billing.Invoice) error {
	year := inv.IssuedAt.Year()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequence(tx, fmt.Sprintf("invoice-%d", year))
		if err != nil {
			return err
		}
		if err := inv.AssignNumber(year, seq); err != nil {
			return err
		}
		if err := tx.Create(models.InvoiceModelFromDomain(inv)).Error; err != nil {
			return err
		}
		return flushEvents(ctx, tx, r.outbox, inv)
	})
	if err != nil {
		inv.InvoiceNo = ""
		inv.ClearDomainEvents()
		if isDuplicate(err) {
			return billing.ErrAlreadyInvoiced
		}
		return wrapErr(err)
	}
	inv.ClearDomainEvents()
	return nil
}

// Save writes a status change with an optimistic version check
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	res := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version-1).
		Updates(map[string]any{
			"status":     inv.Status,
			"paid_at":    inv.PaidAt,
			"version":    inv.Version,
			"updated_at": inv.UpdatedAt,
		})
	if res.Error != nil {
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return conflict("invoice " + inv.InvoiceNo)
	}
	return nil
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
