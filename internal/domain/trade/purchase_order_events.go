package trade

import (
	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type and event names for purchase orders
const (
	AggregateTypePurchaseOrder = "PurchaseOrder"

	EventTypePurchaseOrderIssued = "PurchaseOrderIssued"
)

// PurchaseOrderIssuedEvent is raised when a purchase order is first persisted
type PurchaseOrderIssuedEvent struct {
	shared.BaseDomainEvent
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id"`
	PONumber        string          `json:"po_number"`
	JobID           *uuid.UUID      `json:"job_id,omitempty"`
	Leg             string          `json:"leg"`
	Source          string          `json:"source"`
	OriginCompanyID uuid.UUID       `json:"origin_company_id"`
	TargetCompanyID uuid.UUID       `json:"target_company_id"`
	VendorAmount    decimal.Decimal `json:"vendor_amount"`
}

// NewPurchaseOrderIssuedEvent creates a PurchaseOrderIssuedEvent
func NewPurchaseOrderIssuedEvent(po *PurchaseOrder) *PurchaseOrderIssuedEvent {
	return &PurchaseOrderIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderIssued, AggregateTypePurchaseOrder, po.ID),
		PurchaseOrderID: po.ID,
		PONumber:        po.PONumber,
		JobID:           po.JobID,
		Leg:             string(po.Leg),
		Source:          string(po.Source),
		OriginCompanyID: po.OriginCompanyID,
		TargetCompanyID: po.TargetCompanyID,
		VendorAmount:    po.VendorAmount,
	}
}
