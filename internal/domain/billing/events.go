package billing

import (
	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type and event names for invoices
const (
	AggregateTypeInvoice = "Invoice"

	EventTypeInvoiceIssued = "InvoiceIssued"
)

// InvoiceIssuedEvent is raised when an invoice is numbered and stored.
// The notification handler delivers it to the billed company.
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNo     string          `json:"invoice_no"`
	Kind          string          `json:"kind"`
	JobID         uuid.UUID       `json:"job_id"`
	FromCompanyID uuid.UUID       `json:"from_company_id"`
	ToCompanyID   uuid.UUID       `json:"to_company_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewInvoiceIssuedEvent creates an InvoiceIssuedEvent
func NewInvoiceIssuedEvent(i *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, i.ID),
		InvoiceID:       i.ID,
		InvoiceNo:       i.InvoiceNo,
		Kind:            string(i.Kind),
		JobID:           i.JobID,
		FromCompanyID:   i.FromCompanyID,
		ToCompanyID:     i.ToCompanyID,
		Amount:          i.Amount,
	}
}
