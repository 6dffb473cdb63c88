package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByInvoiceNo(ctx context.Context, invoiceNo string) (*Invoice, error)
	FindCustomerInvoice(ctx context.Context, jobID uuid.UUID) (*Invoice, error)
	FindByPurchaseOrder(ctx context.Context, poID uuid.UUID) (*Invoice, error)
	// FindSettlementsByPurchaseOrders maps purchase order id to its settlement invoice
	FindSettlementsByPurchaseOrders(ctx context.Context, poIDs []uuid.UUID) (map[uuid.UUID]*Invoice, error)
	// Issue numbers the invoice from the yearly sequence and inserts it together
	// with its events. A conflicting customer or settlement invoice yields ErrAlreadyInvoiced.
	Issue(ctx context.Context, inv *Invoice) error
	// Save updates status with an optimistic version check
	Save(ctx context.Context, inv *Invoice) error
}
