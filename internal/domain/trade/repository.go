package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
)

// ErrDuplicatePO signals that an equivalent purchase order already exists.
// It is an idempotency signal: callers continue with the existing order.
var ErrDuplicatePO = shared.NewDomainError("DUPLICATE_PO", "Purchase order already exists")

// PartyKey is the natural key of a cascade leg
type PartyKey struct {
	JobID           uuid.UUID
	OriginCompanyID uuid.UUID
	TargetCompanyID uuid.UUID
}

// PurchaseOrderFilter narrows List
type PurchaseOrderFilter struct {
	JobIDs        []uuid.UUID
	Legs          []Leg
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
	Limit         int
}

// PurchaseOrderRepository persists purchase orders
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByParties(ctx context.Context, key PartyKey) (*PurchaseOrder, error)
	FindByExternalRef(ctx context.Context, ref string) (*PurchaseOrder, error)
	FindByJob(ctx context.Context, jobID uuid.UUID) ([]PurchaseOrder, error)
	CountByJob(ctx context.Context, jobID uuid.UUID) (int64, error)
	// List returns job-linked orders in creation order
	List(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, error)
	// CreateIfAbsent inserts po with its pending events. When a row with the same
	// party triple or external reference exists (including a lost insert race) it
	// returns that row and created=false.
	CreateIfAbsent(ctx context.Context, po *PurchaseOrder) (stored *PurchaseOrder, created bool, err error)
	// Save updates status with an optimistic version check; amounts are never written
	Save(ctx context.Context, po *PurchaseOrder) error
}
