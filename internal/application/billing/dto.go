package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InvoiceResponse is the API view of an invoice
type InvoiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceNo       string          `json:"invoice_no"`
	Kind            string          `json:"kind"`
	FromCompanyID   uuid.UUID       `json:"from_company_id"`
	ToCompanyID     uuid.UUID       `json:"to_company_id"`
	JobID           uuid.UUID       `json:"job_id"`
	PurchaseOrderID *uuid.UUID      `json:"purchase_order_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	IssuedAt        time.Time       `json:"issued_at"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	Version         int             `json:"version"`
}

// GenerateResult is the invoice a generator produced or found. Created is false
// when an invoice for the same document already existed.
type GenerateResult struct {
	Invoice InvoiceResponse `json:"invoice"`
	Created bool            `json:"created"`
}

// MarkPaidRequest records payment of an invoice
type MarkPaidRequest struct {
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

// ToInvoiceResponse converts an invoice
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:              inv.ID,
		InvoiceNo:       inv.InvoiceNo,
		Kind:            string(inv.Kind),
		FromCompanyID:   inv.FromCompanyID,
		ToCompanyID:     inv.ToCompanyID,
		JobID:           inv.JobID,
		PurchaseOrderID: inv.PurchaseOrderID,
		Amount:          inv.Amount,
		Status:          string(inv.Status),
		IssuedAt:        inv.IssuedAt,
		PaidAt:          inv.PaidAt,
		Version:         inv.GetVersion(),
	}
}
