// Package trade derives the purchase order chain of a priced job and exposes
// purchase order lookups and status changes.
package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/printchain/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrAwaitingApproval is returned when the cascade is asked for a job priced
// below the rate card that nobody has approved yet.
var ErrAwaitingApproval = shared.NewDomainError("AWAITING_APPROVAL", "Job is awaiting approval")

// CascadeService generates the broker→intermediary and intermediary→manufacturer
// purchase orders of a job. Running it any number of times yields the same two orders.
type CascadeService struct {
	jobs    job.JobRepository
	orders  trade.PurchaseOrderRepository
	metrics *telemetry.SupplyChainMetrics
	logger  *zap.Logger
}

// NewCascadeService creates a new CascadeService
func NewCascadeService(jobs job.JobRepository, orders trade.PurchaseOrderRepository, logger *zap.Logger) *CascadeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CascadeService{jobs: jobs, orders: orders, logger: logger}
}

// SetMetrics sets the metrics collector
func (s *CascadeService) SetMetrics(m *telemetry.SupplyChainMetrics) {
	s.metrics = m
}

// EnsureCascade creates whichever legs of the chain are missing. Each leg is
// its own write, so a retry after a partial failure completes the chain.
// Existing orders are returned untouched.
func (s *CascadeService) EnsureCascade(ctx context.Context, jobID uuid.UUID) (*CascadeResult, error) {
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !j.ReadyForCascade() {
		return nil, ErrAwaitingApproval.WithMessage(fmt.Sprintf("job %s is awaiting approval", j.JobNo))
	}

	result := &CascadeResult{JobID: j.ID, JobNo: j.JobNo}

	brokerLeg, created, err := s.ensureLeg(ctx, j, j.BrokerID, j.IntermediaryID, func() (*trade.PurchaseOrder, error) {
		return trade.BrokerLeg(j)
	})
	if err != nil {
		return nil, fmt.Errorf("broker leg of job %s: %w", j.JobNo, err)
	}
	result.Legs = append(result.Legs, LegResult{PurchaseOrder: ToPurchaseOrderResponse(brokerLeg), Created: created})

	manufacturerLeg, created, err := s.ensureLeg(ctx, j, j.IntermediaryID, j.ManufacturerID, func() (*trade.PurchaseOrder, error) {
		return trade.ManufacturerLeg(j, brokerLeg)
	})
	if err != nil {
		return nil, fmt.Errorf("manufacturer leg of job %s: %w", j.JobNo, err)
	}
	result.Legs = append(result.Legs, LegResult{PurchaseOrder: ToPurchaseOrderResponse(manufacturerLeg), Created: created})

	if n := result.CreatedCount(); n > 0 {
		s.logger.Info("Purchase order cascade created",
			zap.String("job_no", j.JobNo),
			zap.Int("created", n),
			zap.String("broker_leg_vendor_amount", brokerLeg.VendorAmount.String()),
			zap.String("manufacturer_leg_vendor_amount", manufacturerLeg.VendorAmount.String()),
		)
	} else {
		s.logger.Debug("Purchase order cascade already complete", zap.String("job_no", j.JobNo))
	}
	return result, nil
}

func (s *CascadeService) ensureLeg(ctx context.Context, j *job.Job, origin, target uuid.UUID, build func() (*trade.PurchaseOrder, error)) (*trade.PurchaseOrder, bool, error) {
	existing, err := s.orders.FindByParties(ctx, trade.PartyKey{JobID: j.ID, OriginCompanyID: origin, TargetCompanyID: target})
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	po, err := build()
	if err != nil {
		return nil, false, err
	}
	stored, created, err := s.orders.CreateIfAbsent(ctx, po)
	if err != nil {
		return nil, false, err
	}
	if created && s.metrics != nil {
		s.metrics.RecordPurchaseOrderCreated(ctx, string(trade.SourceCascade))
	}
	return stored, created, nil
}

// GetPurchaseOrder returns a purchase order by id
func (s *CascadeService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// ListForJob returns the purchase orders of a job in chain order
func (s *CascadeService) ListForJob(ctx context.Context, jobID uuid.UUID) ([]PurchaseOrderResponse, error) {
	orders, err := s.orders.FindByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	out := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return out, nil
}

// Acknowledge records that the target company accepted the order
func (s *CascadeService) Acknowledge(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.changeStatus(ctx, id, (*trade.PurchaseOrder).Acknowledge)
}

// Cancel cancels an order. Amounts are never changed; a cancelled order can no
// longer be invoiced.
func (s *CascadeService) Cancel(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.changeStatus(ctx, id, (*trade.PurchaseOrder).Cancel)
}

func (s *CascadeService) changeStatus(ctx context.Context, id uuid.UUID, apply func(*trade.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	po, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(po); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, po); err != nil {
		return nil, err
	}
	s.logger.Info("Purchase order status changed", zap.String("po_number", po.PONumber), zap.String("status", string(po.Status)))
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}
