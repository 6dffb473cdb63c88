package reconciliation

import (
	"context"
	"fmt"

	"github.com/printchain/backend/internal/domain/billing"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// Correction is a pending invoice amount fix and the log row that records it
type Correction struct {
	Invoice *billing.Invoice
	Log     *SyncLog
}

// NewCorrection aligns inv with the vendor amount of po. It returns nil when the
// pair is already within tolerance, so repeated repairs write nothing. An
// invoice that is no longer open is still corrected and its status is recorded
// in the notes so the difference can be settled by hand.
func NewCorrection(inv *billing.Invoice, po *trade.PurchaseOrder, tolerance decimal.Decimal, trigger Trigger, actor string) (*Correction, error) {
	if inv.Amount.Sub(po.VendorAmount).Abs().LessThanOrEqual(tolerance) {
		return nil, nil
	}
	notes := fmt.Sprintf("aligned %s with %s vendor amount", inv.InvoiceNo, po.PONumber)
	if inv.Status != billing.StatusIssued {
		notes += fmt.Sprintf("; invoice was %s, settle the difference manually", inv.Status)
	}
	old := inv.CorrectAmount(po.VendorAmount)
	entry, err := NewSyncLog(trigger, SubjectTypeInvoice, inv.ID, FieldAmount,
		old.StringFixed(2), po.VendorAmount.StringFixed(2), actor, notes)
	if err != nil {
		return nil, err
	}
	return &Correction{Invoice: inv, Log: entry}, nil
}

// CorrectionStore writes a correction. The invoice update carries an optimistic
// version check and the log row is appended in the same transaction.
type CorrectionStore interface {
	ApplyCorrection(ctx context.Context, c *Correction) error
}
