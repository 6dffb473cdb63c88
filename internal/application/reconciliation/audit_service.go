// Package reconciliation audits purchase orders against their settlement
// invoices and repairs drifted invoice amounts.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/billing"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/partner"
	"github.com/printchain/backend/internal/domain/reconciliation"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/domain/shared/valueobject"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/printchain/backend/internal/infrastructure/config"
	"github.com/printchain/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AuditConfig holds auditor settings
type AuditConfig struct {
	// Tolerance is the largest difference still considered in sync
	Tolerance decimal.Decimal
	// SystemActor is recorded on repairs nobody asked for by name
	SystemActor string
}

// AuditConfigFrom parses the reconciliation section of the configuration
func AuditConfigFrom(cfg config.ReconciliationConfig) (AuditConfig, error) {
	out := AuditConfig{Tolerance: valueobject.CentTolerance, SystemActor: cfg.SystemActor}
	if cfg.Tolerance != "" {
		tol, err := decimal.NewFromString(cfg.Tolerance)
		if err != nil || tol.IsNegative() {
			return AuditConfig{}, fmt.Errorf("reconciliation.tolerance %q is not a non-negative decimal", cfg.Tolerance)
		}
		out.Tolerance = tol
	}
	if out.SystemActor == "" {
		out.SystemActor = "system"
	}
	return out, nil
}

// AuditService compares every job purchase order with its settlement invoice.
// Purchase order vendor amounts are authoritative; only invoice amounts are
// ever corrected.
type AuditService struct {
	jobs        job.JobRepository
	orders      trade.PurchaseOrderRepository
	invoices    billing.InvoiceRepository
	companies   partner.CompanyRepository
	corrections reconciliation.CorrectionStore
	logs        reconciliation.SyncLogRepository
	config      AuditConfig
	metrics     *telemetry.SupplyChainMetrics
	logger      *zap.Logger
}

// AuditServiceDeps groups the repositories the auditor reads and writes
type AuditServiceDeps struct {
	Jobs        job.JobRepository
	Orders      trade.PurchaseOrderRepository
	Invoices    billing.InvoiceRepository
	Companies   partner.CompanyRepository
	Corrections reconciliation.CorrectionStore
	Logs        reconciliation.SyncLogRepository
}

// NewAuditService creates a new AuditService
func NewAuditService(deps AuditServiceDeps, cfg AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SystemActor == "" {
		cfg.SystemActor = "system"
	}
	return &AuditService{
		jobs:        deps.Jobs,
		orders:      deps.Orders,
		invoices:    deps.Invoices,
		companies:   deps.Companies,
		corrections: deps.Corrections,
		logs:        deps.Logs,
		config:      cfg,
		logger:      logger,
	}
}

// SetMetrics sets the metrics collector
func (s *AuditService) SetMetrics(m *telemetry.SupplyChainMetrics) {
	s.metrics = m
}

// Audit pairs every cascade leg in scope with its settlement invoice. Legs
// cancelled before they were invoiced are counted but not paired. The report
// is read-only; use AuditAndRepair to fix what it finds.
func (s *AuditService) Audit(ctx context.Context, scope reconciliation.Scope) (*reconciliation.Report, error) {
	jobIDs, err := s.resolveJobs(ctx, scope)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.List(ctx, trade.PurchaseOrderFilter{
		JobIDs:        jobIDs,
		Legs:          trade.CascadeLegs,
		CreatedFrom:   scope.From,
		CreatedBefore: scope.Before,
	})
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}

	poIDs := make([]uuid.UUID, len(orders))
	orderJobs := make([]uuid.UUID, 0, len(orders))
	for i, po := range orders {
		poIDs[i] = po.ID
		orderJobs = append(orderJobs, *po.JobID)
	}
	settlements, err := s.invoices.FindSettlementsByPurchaseOrders(ctx, poIDs)
	if err != nil {
		return nil, fmt.Errorf("load settlement invoices: %w", err)
	}
	jobNos, err := s.jobs.JobNumbers(ctx, orderJobs)
	if err != nil {
		return nil, fmt.Errorf("load job numbers: %w", err)
	}
	names, err := s.companyNames(ctx, orders, settlements)
	if err != nil {
		return nil, err
	}

	rows := make([]reconciliation.PairRow, 0, len(orders))
	cancelled := 0
	for _, po := range orders {
		inv, invoiced := settlements[po.ID]
		if po.Status == trade.PurchaseOrderStatusCancelled && !invoiced {
			// nothing to settle
			cancelled++
			continue
		}
		row := reconciliation.PairRow{
			JobID:           *po.JobID,
			JobNo:           jobNos[*po.JobID],
			PurchaseOrderID: po.ID,
			PONumber:        po.PONumber,
			Leg:             string(po.Leg),
			POOrigin:        names[po.OriginCompanyID],
			POTarget:        names[po.TargetCompanyID],
			POVendorAmount:  po.VendorAmount,
		}
		if invoiced {
			id, amount := inv.ID, inv.Amount
			row.InvoiceID = &id
			row.InvoiceNo = inv.InvoiceNo
			row.InvoiceFrom = names[inv.FromCompanyID]
			row.InvoiceTo = names[inv.ToCompanyID]
			row.InvoiceAmount = &amount
		}
		reconciliation.ComparePair(&row, s.config.Tolerance)
		rows = append(rows, row)
	}

	report := reconciliation.NewReport(rows)
	report.CancelledUnbilled = cancelled
	return report, nil
}

// resolveJobs turns the scope into job ids. nil means every job.
func (s *AuditService) resolveJobs(ctx context.Context, scope reconciliation.Scope) ([]uuid.UUID, error) {
	if len(scope.JobIDs) == 0 && len(scope.JobNos) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(scope.JobIDs)+len(scope.JobNos))
	ids = append(ids, scope.JobIDs...)
	for _, no := range scope.JobNos {
		j, err := s.jobs.FindByJobNo(ctx, strings.TrimSpace(no))
		if err != nil {
			return nil, err
		}
		ids = append(ids, j.ID)
	}
	return ids, nil
}

func (s *AuditService) companyNames(ctx context.Context, orders []trade.PurchaseOrder, settlements map[uuid.UUID]*billing.Invoice) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, po := range orders {
		add(po.OriginCompanyID)
		add(po.TargetCompanyID)
	}
	for _, inv := range settlements {
		add(inv.FromCompanyID)
		add(inv.ToCompanyID)
	}
	companies, err := s.companies.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if c, ok := companies[id]; ok {
			names[id] = c.Name
		} else {
			names[id] = id.String()
		}
	}
	return names, nil
}

// Repair sets the invoice amount of m to the current vendor amount of its
// purchase order and appends one sync log row. Both rows are re-read first; a
// pair that is already within tolerance returns (nil, nil) and writes nothing.
func (s *AuditService) Repair(ctx context.Context, m reconciliation.Mismatch, actor string, trigger reconciliation.Trigger) (*reconciliation.SyncLog, error) {
	inv, err := s.invoices.FindByID(ctx, m.InvoiceID)
	if err != nil {
		return nil, err
	}
	po, err := s.orders.FindByID(ctx, m.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if inv.PurchaseOrderID == nil || *inv.PurchaseOrderID != po.ID {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("invoice %s does not settle purchase order %s", inv.InvoiceNo, po.PONumber))
	}
	if actor == "" {
		actor = s.config.SystemActor
	}

	correction, err := reconciliation.NewCorrection(inv, po, s.config.Tolerance, trigger, actor)
	if err != nil {
		return nil, err
	}
	if correction == nil {
		return nil, nil
	}
	if err := s.corrections.ApplyCorrection(ctx, correction); err != nil {
		return nil, err
	}

	if inv.Status != billing.StatusIssued {
		s.logger.Warn("Repaired invoice is not open; settle the difference manually",
			zap.String("invoice_no", inv.InvoiceNo),
			zap.String("status", string(inv.Status)),
		)
	}
	s.logger.Warn("Invoice amount repaired",
		zap.String("invoice_no", inv.InvoiceNo),
		zap.String("po_number", po.PONumber),
		zap.String("old_amount", correction.Log.OldValue),
		zap.String("new_amount", correction.Log.NewValue),
		zap.String("trigger", string(trigger)),
		zap.String("actor", actor),
	)
	if s.metrics != nil {
		s.metrics.RecordRepair(ctx, string(trigger))
	}
	return correction.Log, nil
}

// AuditAndRepair audits scope and repairs every mismatch it finds. A repair
// that loses a race with another writer is skipped and picked up by the next
// audit; any other failure stops the run.
func (s *AuditService) AuditAndRepair(ctx context.Context, scope reconciliation.Scope, actor string, trigger reconciliation.Trigger) (*reconciliation.Report, error) {
	report, err := s.Audit(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, m := range report.Mismatches() {
		entry, err := s.Repair(ctx, m, actor, trigger)
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			s.logger.Warn("Repair skipped after concurrent change", zap.String("invoice_no", m.InvoiceNo))
			continue
		}
		if err != nil {
			return report, fmt.Errorf("repair %s: %w", m.InvoiceNo, err)
		}
		if entry != nil {
			report.Repaired++
		}
	}
	s.record(ctx, trigger, report)
	return report, nil
}

// RunScheduledAudit is the nightly run. It satisfies scheduler.AuditRunner.
func (s *AuditService) RunScheduledAudit(ctx context.Context, repair bool) error {
	var (
		report *reconciliation.Report
		err    error
	)
	if repair {
		report, err = s.AuditAndRepair(ctx, reconciliation.Scope{}, s.config.SystemActor, reconciliation.TriggerScheduledAudit)
	} else {
		report, err = s.Audit(ctx, reconciliation.Scope{})
		if err == nil {
			s.record(ctx, reconciliation.TriggerScheduledAudit, report)
		}
	}
	if err != nil {
		return err
	}
	s.logger.Info("Scheduled audit finished",
		zap.Int("total_pairs", report.TotalPairs),
		zap.Int("mismatched", report.Mismatched),
		zap.Int("missing_invoices", report.MissingInvoices),
		zap.Int("repaired", report.Repaired),
		zap.String("percent_in_sync", report.PercentInSync.String()),
	)
	return nil
}

func (s *AuditService) record(ctx context.Context, trigger reconciliation.Trigger, report *reconciliation.Report) {
	if s.metrics == nil {
		return
	}
	pct, _ := report.PercentInSync.Float64()
	s.metrics.RecordAudit(ctx, string(trigger), pct, report.Mismatched+report.MissingInvoices)
}

// Logs lists sync log rows, newest first
func (s *AuditService) Logs(ctx context.Context, filter SyncLogListFilter) (shared.Paginated[SyncLogResponse], error) {
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	rows, total, err := s.logs.List(ctx, reconciliation.SyncLogFilter{
		SubjectID: filter.SubjectID,
		Trigger:   reconciliation.Trigger(filter.Trigger),
		Since:     filter.Since,
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		return shared.Paginated[SyncLogResponse]{}, err
	}
	items := make([]SyncLogResponse, len(rows))
	for i := range rows {
		items[i] = ToSyncLogResponse(&rows[i])
	}
	return shared.NewPaginated(items, total, page, size), nil
}
