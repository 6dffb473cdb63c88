package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Field and subject names written to the sync log on an invoice repair
const (
	SubjectTypeInvoice = "Invoice"
	FieldAmount        = "amount"
)

// PairRow is one purchase order matched with its settlement invoice. It is the
// unit of the audit export.
type PairRow struct {
	JobID           uuid.UUID
	JobNo           string
	PurchaseOrderID uuid.UUID
	PONumber        string
	Leg             string
	POOrigin        string
	POTarget        string
	POVendorAmount  decimal.Decimal

	InvoiceID     *uuid.UUID
	InvoiceNo     string
	InvoiceFrom   string
	InvoiceTo     string
	InvoiceAmount *decimal.Decimal

	Mismatch       bool
	MissingInvoice bool
	// Difference is invoice amount minus PO vendor amount
	Difference decimal.Decimal
}

// InSync reports whether the pair needs no attention
func (r PairRow) InSync() bool {
	return !r.Mismatch && !r.MissingInvoice
}

// Mismatch is a pair whose invoice amount drifted from the PO vendor amount
type Mismatch struct {
	JobNo           string
	PurchaseOrderID uuid.UUID
	InvoiceID       uuid.UUID
	InvoiceNo       string
	Expected        decimal.Decimal
	Actual          decimal.Decimal
	Difference      decimal.Decimal
}

// ComparePair fills in the mismatch fields of row. A nil invoice amount means
// no settlement invoice exists for the PO.
func ComparePair(row *PairRow, tolerance decimal.Decimal) {
	if row.InvoiceAmount == nil {
		row.MissingInvoice = true
		row.Mismatch = false
		row.Difference = decimal.Zero
		return
	}
	row.MissingInvoice = false
	row.Difference = row.InvoiceAmount.Sub(row.POVendorAmount)
	row.Mismatch = !valueobject.WithinTolerance(*row.InvoiceAmount, row.POVendorAmount, tolerance)
}

// AsMismatch converts a mismatched row; ok is false for rows that are in sync
// or have no invoice to repair.
func (r PairRow) AsMismatch() (Mismatch, bool) {
	if !r.Mismatch || r.InvoiceID == nil || r.InvoiceAmount == nil {
		return Mismatch{}, false
	}
	return Mismatch{
		JobNo:           r.JobNo,
		PurchaseOrderID: r.PurchaseOrderID,
		InvoiceID:       *r.InvoiceID,
		InvoiceNo:       r.InvoiceNo,
		Expected:        r.POVendorAmount,
		Actual:          *r.InvoiceAmount,
		Difference:      r.Difference,
	}, true
}

// Report is the result of an audit run
type Report struct {
	GeneratedAt     time.Time
	Rows            []PairRow
	TotalPairs      int
	InSync          int
	Mismatched      int
	MissingInvoices int
	PercentInSync   decimal.Decimal
	Repaired        int
	// CancelledUnbilled counts cancelled legs left out of the pairs
	CancelledUnbilled int
}

// NewReport summarizes rows. An empty audit is 100% in sync.
func NewReport(rows []PairRow) *Report {
	r := &Report{GeneratedAt: time.Now(), Rows: rows, TotalPairs: len(rows)}
	for _, row := range rows {
		switch {
		case row.MissingInvoice:
			r.MissingInvoices++
		case row.Mismatch:
			r.Mismatched++
		default:
			r.InSync++
		}
	}
	if r.TotalPairs == 0 {
		r.PercentInSync = decimal.NewFromInt(100)
	} else {
		r.PercentInSync = decimal.NewFromInt(int64(r.InSync)).
			Mul(decimal.NewFromInt(100)).
			DivRound(decimal.NewFromInt(int64(r.TotalPairs)), 2)
	}
	return r
}

// Mismatches returns the repairable rows of the report
func (r *Report) Mismatches() []Mismatch {
	out := make([]Mismatch, 0, r.Mismatched)
	for _, row := range r.Rows {
		if m, ok := row.AsMismatch(); ok {
			out = append(out, m)
		}
	}
	return out
}

// Scope limits an audit run. The zero value audits everything.
type Scope struct {
	JobIDs []uuid.UUID
	JobNos []string
	// From and Before bound the purchase order creation time
	From   *time.Time
	Before *time.Time
}
