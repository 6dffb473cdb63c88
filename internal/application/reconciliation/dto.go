package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/reconciliation"
	"github.com/shopspring/decimal"
)

// AuditRowResponse is one purchase order and settlement invoice pair
type AuditRowResponse struct {
	JobNo           string           `json:"job_no"`
	PurchaseOrderID uuid.UUID        `json:"purchase_order_id"`
	PONumber        string           `json:"po_number"`
	Leg             string           `json:"leg"`
	POOrigin        string           `json:"po_origin"`
	POTarget        string           `json:"po_target"`
	POVendorAmount  decimal.Decimal  `json:"po_vendor_amount"`
	InvoiceID       *uuid.UUID       `json:"invoice_id,omitempty"`
	InvoiceNo       string           `json:"invoice_no,omitempty"`
	InvoiceFrom     string           `json:"invoice_from,omitempty"`
	InvoiceTo       string           `json:"invoice_to,omitempty"`
	InvoiceAmount   *decimal.Decimal `json:"invoice_amount,omitempty"`
	Mismatch        bool             `json:"mismatch"`
	MissingInvoice  bool             `json:"missing_invoice"`
	Difference      decimal.Decimal  `json:"difference"`
}

// AuditReportResponse is the API view of an audit
type AuditReportResponse struct {
	GeneratedAt       time.Time          `json:"generated_at"`
	TotalPairs        int                `json:"total_pairs"`
	InSync            int                `json:"in_sync"`
	Mismatched        int                `json:"mismatched"`
	MissingInvoices   int                `json:"missing_invoices"`
	CancelledUnbilled int                `json:"cancelled_unbilled"`
	PercentInSync     decimal.Decimal    `json:"percent_in_sync"`
	Repaired          int                `json:"repaired"`
	Rows              []AuditRowResponse `json:"rows"`
}

// RepairRequest asks for one mismatch to be repaired
type RepairRequest struct {
	InvoiceID       uuid.UUID `json:"invoice_id" binding:"required" validate:"required"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id" binding:"required" validate:"required"`
	Actor           string    `json:"actor" validate:"max=100"`
}

// SyncLogResponse is the API view of a sync log row
type SyncLogResponse struct {
	ID          uuid.UUID `json:"id"`
	Trigger     string    `json:"trigger"`
	SubjectType string    `json:"subject_type"`
	SubjectID   uuid.UUID `json:"subject_id"`
	Field       string    `json:"field"`
	OldValue    string    `json:"old_value"`
	NewValue    string    `json:"new_value"`
	ChangedBy   string    `json:"changed_by"`
	Notes       string    `json:"notes,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// SyncLogListFilter narrows Logs
type SyncLogListFilter struct {
	SubjectID *uuid.UUID `form:"subject_id"`
	Trigger   string     `form:"trigger" validate:"omitempty,oneof=PO_UPDATE MANUAL_AUDIT SCHEDULED_AUDIT"`
	Since     *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Page      int        `form:"page" validate:"omitempty,min=1"`
	PageSize  int        `form:"page_size" validate:"omitempty,min=1,max=200"`
}

// ToAuditReportResponse converts a report
func ToAuditReportResponse(r *reconciliation.Report) AuditReportResponse {
	rows := make([]AuditRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = AuditRowResponse{
			JobNo:           row.JobNo,
			PurchaseOrderID: row.PurchaseOrderID,
			PONumber:        row.PONumber,
			Leg:             row.Leg,
			POOrigin:        row.POOrigin,
			POTarget:        row.POTarget,
			POVendorAmount:  row.POVendorAmount,
			InvoiceID:       row.InvoiceID,
			InvoiceNo:       row.InvoiceNo,
			InvoiceFrom:     row.InvoiceFrom,
			InvoiceTo:       row.InvoiceTo,
			InvoiceAmount:   row.InvoiceAmount,
			Mismatch:        row.Mismatch,
			MissingInvoice:  row.MissingInvoice,
			Difference:      row.Difference,
		}
	}
	return AuditReportResponse{
		GeneratedAt:       r.GeneratedAt,
		TotalPairs:        r.TotalPairs,
		InSync:            r.InSync,
		Mismatched:        r.Mismatched,
		MissingInvoices:   r.MissingInvoices,
		CancelledUnbilled: r.CancelledUnbilled,
		PercentInSync:     r.PercentInSync,
		Repaired:          r.Repaired,
		Rows:              rows,
	}
}

// ToSyncLogResponse converts a sync log row
func ToSyncLogResponse(l *reconciliation.SyncLog) SyncLogResponse {
	return SyncLogResponse{
		ID:          l.ID,
		Trigger:     string(l.Trigger),
		SubjectType: l.SubjectType,
		SubjectID:   l.SubjectID,
		Field:       l.Field,
		OldValue:    l.OldValue,
		NewValue:    l.NewValue,
		ChangedBy:   l.ChangedBy,
		Notes:       l.Notes,
		Timestamp:   l.Timestamp,
	}
}
