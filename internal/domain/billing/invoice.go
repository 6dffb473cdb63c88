package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ErrAlreadyInvoiced is the idempotency signal for a second invoice on the same
// job (customer) or purchase order (settlement).
var ErrAlreadyInvoiced = shared.NewDomainError("ALREADY_INVOICED", "An invoice already exists for this document")

// Kind distinguishes customer invoices from settlement invoices
type Kind string

const (
	KindCustomer   Kind = "CUSTOMER"
	KindSettlement Kind = "SETTLEMENT"
)

// Status represents the status of an invoice
type Status string

const (
	StatusIssued Status = "ISSUED"
	StatusPaid   Status = "PAID"
	StatusVoid   Status = "VOID"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusIssued, StatusPaid, StatusVoid:
		return true
	}
	return false
}

// Invoice is a bill from one company to another for a job
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNo       string
	Kind            Kind
	FromCompanyID   uuid.UUID
	ToCompanyID     uuid.UUID
	JobID           uuid.UUID
	PurchaseOrderID *uuid.UUID
	Amount          decimal.Decimal
	Status          Status
	IssuedAt        time.Time
	PaidAt          *time.Time
}

// NewCustomerInvoice bills the job's customer for the customer total.
// The invoice number is assigned by the repository.
func NewCustomerInvoice(j *job.Job) (*Invoice, error) {
	if !j.Financials.CustomerTotal.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("job %s has no customer total", j.JobNo))
	}
	inv := newInvoice(KindCustomer, j.BrokerID, j.CustomerID, j.ID, nil, j.Financials.CustomerTotal)
	return inv, nil
}

// NewSettlementInvoice bills the origin of po for its vendor amount, issued by the target.
func NewSettlementInvoice(po *trade.PurchaseOrder) (*Invoice, error) {
	if !po.HasJob() {
		return nil, shared.ErrInvalidState.WithMessage(fmt.Sprintf("purchase order %s is not linked to a job", po.PONumber))
	}
	if po.Status == trade.PurchaseOrderStatusCancelled {
		return nil, shared.ErrInvalidState.WithMessage(fmt.Sprintf("purchase order %s is cancelled", po.PONumber))
	}
	poID := po.ID
	return newInvoice(KindSettlement, po.TargetCompanyID, po.OriginCompanyID, *po.JobID, &poID, po.VendorAmount), nil
}

func newInvoice(kind Kind, from, to, jobID uuid.UUID, poID *uuid.UUID, amount decimal.Decimal) *Invoice {
	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		FromCompanyID:     from,
		ToCompanyID:       to,
		JobID:             jobID,
		PurchaseOrderID:   poID,
		Amount:            amount,
		Status:            StatusIssued,
		IssuedAt:          time.Now(),
	}
}

// AssignNumber sets the sequential invoice number and raises InvoiceIssued.
// It is called once, inside the transaction that inserts the invoice.
func (i *Invoice) AssignNumber(year int, seq int64) error {
	if i.InvoiceNo != "" {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("invoice already numbered %s", i.InvoiceNo))
	}
	i.InvoiceNo = FormatInvoiceNo(year, seq)
	i.AddDomainEvent(NewInvoiceIssuedEvent(i))
	return nil
}

// MarkPaid records payment
func (i *Invoice) MarkPaid(at time.Time) error {
	if i.Status != StatusIssued {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("invoice %s is %s", i.InvoiceNo, i.Status))
	}
	i.Status = StatusPaid
	i.PaidAt = &at
	i.Touch(time.Now())
	i.IncrementVersion()
	return nil
}

// CorrectAmount replaces the amount with the authoritative purchase order value
// and returns the previous one. Only the reconciliation auditor calls it.
func (i *Invoice) CorrectAmount(amount decimal.Decimal) decimal.Decimal {
	old := i.Amount
	i.Amount = amount
	i.Touch(time.Now())
	i.IncrementVersion()
	return old
}

// FormatInvoiceNo renders INV-{year}-{6-digit sequence}
func FormatInvoiceNo(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%06d", year, seq)
}
