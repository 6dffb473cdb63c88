// Package billing issues customer and settlement invoices and reacts to job
// events by generating a job's documents in order: cascade first, then the
// settlement invoice of each leg, then the customer invoice.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	tradeapp "github.com/printchain/backend/internal/application/trade"
	"github.com/printchain/backend/internal/domain/billing"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/printchain/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InvoiceService generates invoices from jobs and purchase orders. Amounts are
// copied from the source document and never recomputed here.
type InvoiceService struct {
	invoices billing.InvoiceRepository
	jobs     job.JobRepository
	orders   trade.PurchaseOrderRepository
	metrics  *telemetry.SupplyChainMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoices billing.InvoiceRepository, jobs job.JobRepository, orders trade.PurchaseOrderRepository, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoices: invoices,
		jobs:     jobs,
		orders:   orders,
		logger:   logger,
		now:      time.Now,
	}
}

// SetMetrics sets the metrics collector
func (s *InvoiceService) SetMetrics(m *telemetry.SupplyChainMetrics) {
	s.metrics = m
}

// GenerateCustomerInvoice bills the job's customer for the customer total,
// issued by the broker. A second call returns the existing invoice.
func (s *InvoiceService) GenerateCustomerInvoice(ctx context.Context, jobID uuid.UUID) (*GenerateResult, error) {
	if existing, err := s.invoices.FindCustomerInvoice(ctx, jobID); err == nil {
		return existingResult(existing), nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !j.ReadyForCascade() {
		return nil, tradeapp.ErrAwaitingApproval.WithMessage(fmt.Sprintf("job %s is awaiting approval", j.JobNo))
	}
	inv, err := billing.NewCustomerInvoice(j)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, inv, j.JobNo, func() (*billing.Invoice, error) {
		return s.invoices.FindCustomerInvoice(ctx, jobID)
	})
}

// GenerateSettlementInvoice bills the origin of a purchase order for its vendor
// amount, issued by the order's target. A second call returns the existing invoice.
func (s *InvoiceService) GenerateSettlementInvoice(ctx context.Context, poID uuid.UUID) (*GenerateResult, error) {
	if existing, err := s.invoices.FindByPurchaseOrder(ctx, poID); err == nil {
		return existingResult(existing), nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	inv, err := billing.NewSettlementInvoice(po)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, inv, po.PONumber, func() (*billing.Invoice, error) {
		return s.invoices.FindByPurchaseOrder(ctx, poID)
	})
}

func (s *InvoiceService) issue(ctx context.Context, inv *billing.Invoice, source string, reload func() (*billing.Invoice, error)) (*GenerateResult, error) {
	inv.IssuedAt = s.now()
	err := s.invoices.Issue(ctx, inv)
	if errors.Is(err, billing.ErrAlreadyInvoiced) {
		// another caller issued it between our check and insert
		existing, ferr := reload()
		if ferr != nil {
			return nil, ferr
		}
		return existingResult(existing), nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice issued",
		zap.String("invoice_no", inv.InvoiceNo),
		zap.String("kind", string(inv.Kind)),
		zap.String("source", source),
		zap.String("amount", inv.Amount.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordInvoiceIssued(ctx, string(inv.Kind))
	}
	return &GenerateResult{Invoice: ToInvoiceResponse(inv), Created: true}, nil
}

// MarkPaid records payment. A zero paidAt means now.
func (s *InvoiceService) MarkPaid(ctx context.Context, invoiceID uuid.UUID, paidAt time.Time) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if paidAt.IsZero() {
		paidAt = s.now()
	}
	if err := inv.MarkPaid(paidAt); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("Invoice paid", zap.String("invoice_no", inv.InvoiceNo), zap.Time("paid_at", paidAt))
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetInvoice returns an invoice by id
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

func existingResult(inv *billing.Invoice) *GenerateResult {
	return &GenerateResult{Invoice: ToInvoiceResponse(inv), Created: false}
}
