package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// PurchaseOrderResponse is the API view of a purchase order
type PurchaseOrderResponse struct {
	ID              uuid.UUID       `json:"id"`
	PONumber        string          `json:"po_number"`
	JobID           *uuid.UUID      `json:"job_id,omitempty"`
	Leg             string          `json:"leg"`
	Source          string          `json:"source"`
	OriginCompanyID uuid.UUID       `json:"origin_company_id"`
	TargetCompanyID uuid.UUID       `json:"target_company_id"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	VendorAmount    decimal.Decimal `json:"vendor_amount"`
	MarginAmount    decimal.Decimal `json:"margin_amount"`
	ExternalRef     *string         `json:"external_ref,omitempty"`
	Status          string          `json:"status"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
}

// LegResult is one purchase order of a cascade and whether this run created it
type LegResult struct {
	PurchaseOrder PurchaseOrderResponse `json:"purchase_order"`
	Created       bool                  `json:"created"`
}

// CascadeResult lists both legs of a job's purchase order chain
type CascadeResult struct {
	JobID uuid.UUID   `json:"job_id"`
	JobNo string      `json:"job_no"`
	Legs  []LegResult `json:"legs"`
}

// CreatedCount returns how many legs this run created
func (r *CascadeResult) CreatedCount() int {
	n := 0
	for _, l := range r.Legs {
		if l.Created {
			n++
		}
	}
	return n
}

// PurchaseOrderIDs returns the leg ids in chain order
func (r *CascadeResult) PurchaseOrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Legs))
	for i, l := range r.Legs {
		ids[i] = l.PurchaseOrder.ID
	}
	return ids
}

// ToPurchaseOrderResponse converts a purchase order
func ToPurchaseOrderResponse(po *trade.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:              po.ID,
		PONumber:        po.PONumber,
		JobID:           po.JobID,
		Leg:             string(po.Leg),
		Source:          string(po.Source),
		OriginCompanyID: po.OriginCompanyID,
		TargetCompanyID: po.TargetCompanyID,
		OriginalAmount:  po.OriginalAmount,
		VendorAmount:    po.VendorAmount,
		MarginAmount:    po.MarginAmount,
		ExternalRef:     po.ExternalRef,
		Status:          string(po.Status),
		Version:         po.GetVersion(),
		CreatedAt:       po.CreatedAt,
	}
}
