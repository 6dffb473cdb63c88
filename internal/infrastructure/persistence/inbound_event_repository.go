package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/intake"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/printchain/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInboundEventRepository implements intake.InboundEventRepository using GORM
type GormInboundEventRepository struct {
	db     *gorm.DB
	outbox shared.OutboxEventSaver
}

// NewGormInboundEventRepository creates a new GormInboundEventRepository.
// outbox receives the events of purchase orders created by CompleteWithPurchaseOrder.
func NewGormInboundEventRepository(db *gorm.DB, outbox shared.OutboxEventSaver) *GormInboundEventRepository {
	return &GormInboundEventRepository{db: db, outbox: outbox}
}

// Create inserts a newly received event
func (r *GormInboundEventRepository) Create(ctx context.Context, e *intake.InboundEvent) error {
	m, err := models.InboundEventModelFromDomain(e)
	if err != nil {
		return wrapErr(err)
	}
	return wrapErr(r.db.WithContext(ctx).Create(m).Error)
}

// Save writes the event if nobody else has since it was loaded, then bumps
// the in-memory version.
func (r *GormInboundEventRepository) Save(ctx context.Context, e *intake.InboundEvent) error {
	return wrapErr(saveInboundEvent(r.db.WithContext(ctx), e))
}

func saveInboundEvent(db *gorm.DB, e *intake.InboundEvent) error {
	m, err := models.InboundEventModelFromDomain(e)
	if err != nil {
		return err
	}
	m.Version = e.Version + 1
	m.UpdatedAt = time.Now()
	res := db.Model(&models.InboundEventModel{}).
		Where("id = ? AND version = ?", e.ID, e.Version).
		Select("*").
		Omit("id", "created_at", "received_at").
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return conflict("inbound event " + e.ID.String())
	}
	e.Version = m.Version
	e.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByID finds an event by its ID
func (r *GormInboundEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*intake.InboundEvent, error) {
	var m models.InboundEventModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "inbound event")
	}
	e, err := m.ToDomain()
	return e, wrapErr(err)
}

// List returns events newest first
func (r *GormInboundEventRepository) List(ctx context.Context, filter intake.InboundEventFilter) ([]intake.InboundEvent, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.InboundEventModel{})
	if len(filter.States) > 0 {
		q = q.Where("state IN ?", filter.States)
	}
	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err)
	}

	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	page := max(filter.Page, 1)

	var rows []models.InboundEventModel
	if err := q.Omit("attachment_content").
		Order("received_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, wrapErr(err)
	}
	events, err := toInboundEvents(rows)
	return events, total, err
}

// FindStalled returns non-terminal events last touched before the given time
func (r *GormInboundEventRepository) FindStalled(ctx context.Context, before time.Time, limit int) ([]intake.InboundEvent, error) {
	var rows []models.InboundEventModel
	if err := r.db.WithContext(ctx).
		Where("state IN ? AND updated_at < ?", intake.InFlightStates(), before).
		Order("updated_at").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, wrapErr(err)
	}
	return toInboundEvents(rows)
}

// CompleteWithPurchaseOrder inserts po unless an equivalent order exists and
// moves e to CREATED or DUPLICATE, in one transaction. On a lost insert race
// the whole unit is retried once, which then finds the winner's row.
func (r *GormInboundEventRepository) CompleteWithPurchaseOrder(ctx context.Context, e *intake.InboundEvent, po *trade.PurchaseOrder) (*trade.PurchaseOrder, bool, error) {
	var (
		stored  *trade.PurchaseOrder
		created bool
		err     error
	)
	for attempt := 0; attempt < 2; attempt++ {
		stored, created, err = r.complete(ctx, e, po)
		if err == nil || !isDuplicate(err) {
			break
		}
	}
	if err != nil {
		return nil, false, wrapErr(err)
	}
	if created {
		po.ClearDomainEvents()
	}
	return stored, created, nil
}

func (r *GormInboundEventRepository) complete(ctx context.Context, e *intake.InboundEvent, po *trade.PurchaseOrder) (*trade.PurchaseOrder, bool, error) {
	next := *e
	var (
		stored  *trade.PurchaseOrder
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := insertPurchaseOrder(ctx, tx, r.outbox, po)
		if err != nil {
			return err
		}
		if existing != nil {
			stored = existing.ToDomain()
		} else {
			stored, created = po, true
		}
		if err := next.Complete(stored.ID, created); err != nil {
			return err
		}
		return saveInboundEvent(tx, &next)
	})
	if err != nil {
		return nil, false, err
	}
	*e = next
	return stored, created, nil
}

func toInboundEvents(rows []models.InboundEventModel) ([]intake.InboundEvent, error) {
	out := make([]intake.InboundEvent, len(rows))
	for i := range rows {
		e, err := rows[i].ToDomain()
		if err != nil {
			return nil, wrapErr(err)
		}
		out[i] = *e
	}
	return out, nil
}

var _ intake.InboundEventRepository = (*GormInboundEventRepository)(nil)
