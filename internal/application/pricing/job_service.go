// Package pricing is the job service: the only writer of a job's financial
// record. It prices jobs through the allocation calculator, persists them
// together with their JobPriced event, and handles approval and reprice.
package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/application/validation"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/partner"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/printchain/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// JobService creates and prices jobs
type JobService struct {
	jobs      job.JobRepository
	rates     pricing.RateCard
	orders    trade.PurchaseOrderRepository
	companies partner.CompanyRepository
	metrics   *telemetry.SupplyChainMetrics
	logger    *zap.Logger
}

// NewJobService creates a new JobService
func NewJobService(
	jobs job.JobRepository,
	rates pricing.RateCard,
	orders trade.PurchaseOrderRepository,
	companies partner.CompanyRepository,
	logger *zap.Logger,
) *JobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{
		jobs:      jobs,
		rates:     rates,
		orders:    orders,
		companies: companies,
		logger:    logger,
	}
}

// SetMetrics sets the metrics collector
func (s *JobService) SetMetrics(m *telemetry.SupplyChainMetrics) {
	s.metrics = m
}

// Quote runs the calculator without persisting anything
func (s *JobService) Quote(ctx context.Context, req QuoteRequest) (*AllocationResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	result, err := s.allocate(ctx, req.SizeKey, req.Quantity, modeOrDefault(req.AllocationMode), pricing.Overrides{CustomerCPM: req.CustomerCPM})
	if err != nil {
		return nil, err
	}
	resp := ToAllocationResponse(result)
	return &resp, nil
}

// CreateJob prices and stores a job. Pricing happens before any write, so a
// pricing error leaves nothing behind.
func (s *JobService) CreateJob(ctx context.Context, req CreateJobRequest) (*JobResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	parties := job.Parties{
		CustomerID:     req.CustomerID,
		BrokerID:       req.BrokerID,
		IntermediaryID: req.IntermediaryID,
		ManufacturerID: req.ManufacturerID,
	}
	if err := parties.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkRoles(ctx, parties); err != nil {
		return nil, err
	}

	rate, err := s.rates.Lookup(ctx, req.SizeKey)
	if err != nil {
		return nil, err
	}
	// Price before reserving a job number so a rejected request never burns a sequence value
	mode := modeOrDefault(req.AllocationMode)
	overrides := pricing.Overrides{CustomerCPM: req.CustomerCPM}
	if _, err := pricing.Allocate(rate, req.Quantity, mode, overrides); err != nil {
		return nil, err
	}

	jobNo := req.JobNo
	if jobNo == "" {
		if jobNo, err = s.jobs.NextJobNo(ctx); err != nil {
			return nil, err
		}
	}

	j, err := job.NewJob(jobNo, req.Description, parties, rate, req.Quantity, mode, overrides)
	if err != nil {
		return nil, err
	}
	s.warnNegativeMargin(j)

	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, err
	}

	s.logger.Info("Job priced",
		zap.String("job_no", j.JobNo),
		zap.String("job_id", j.ID.String()),
		zap.String("allocation_mode", string(mode)),
		zap.String("customer_total", j.Financials.CustomerTotal.String()),
		zap.Bool("requires_approval", j.Financials.RequiresApproval),
	)
	if s.metrics != nil {
		s.metrics.RecordJobPriced(ctx, string(mode), j.Financials.RequiresApproval)
	}

	resp := ToJobResponse(j)
	return &resp, nil
}

// GetJob returns a job by id
func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*JobResponse, error) {
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToJobResponse(j)
	return &resp, nil
}

// GetJobByNo returns a job by its job number
func (s *JobService) GetJobByNo(ctx context.Context, jobNo string) (*JobResponse, error) {
	j, err := s.jobs.FindByJobNo(ctx, jobNo)
	if err != nil {
		return nil, err
	}
	resp := ToJobResponse(j)
	return &resp, nil
}

// List pages through jobs, newest first
func (s *JobService) List(ctx context.Context, f JobListFilter) (shared.Paginated[JobResponse], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.Approval != "" {
		filter.Filters["approval_status"] = f.Approval
	}
	if f.CustomerID != "" {
		filter.Filters["customer_id"] = f.CustomerID
	}
	if f.AllocationMode != "" {
		filter.Filters["allocation_mode"] = f.AllocationMode
	}

	jobs, total, err := s.jobs.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[JobResponse]{}, err
	}
	items := make([]JobResponse, len(jobs))
	for i := range jobs {
		items[i] = ToJobResponse(&jobs[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit()), nil
}

// ApproveJob signs off an undercharged job. The JobApproved event releases the cascade.
func (s *JobService) ApproveJob(ctx context.Context, id uuid.UUID, req ApproveJobRequest) (*JobResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := j.Approve(req.ApprovedBy); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, j); err != nil {
		return nil, err
	}

	s.logger.Info("Job approved",
		zap.String("job_no", j.JobNo),
		zap.String("approved_by", req.ApprovedBy),
		zap.String("undercharge_amount", j.Financials.UnderchargeAmount.String()),
	)
	resp := ToJobResponse(j)
	return &resp, nil
}

// RepriceJob recomputes the financial record with a new mode or override.
// Once a purchase order exists the financials are frozen.
func (s *JobService) RepriceJob(ctx context.Context, id uuid.UUID, req RepriceJobRequest) (*JobResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	issued, err := s.orders.CountByJob(ctx, j.ID)
	if err != nil {
		return nil, err
	}
	if issued > 0 {
		return nil, shared.ErrInvalidState.WithMessage(fmt.Sprintf("job %s already has %d purchase orders; its financials are final", j.JobNo, issued))
	}

	rate, err := s.rates.Lookup(ctx, j.Financials.SizeKey)
	if err != nil {
		return nil, err
	}
	mode := j.Financials.Mode
	if req.AllocationMode != "" {
		mode = pricing.AllocationMode(req.AllocationMode)
	}
	previous := j.Financials.CustomerTotal
	if err := j.Reprice(rate, mode, pricing.Overrides{CustomerCPM: req.CustomerCPM}); err != nil {
		return nil, err
	}
	s.warnNegativeMargin(j)
	if err := s.jobs.Save(ctx, j); err != nil {
		return nil, err
	}

	s.logger.Info("Job repriced",
		zap.String("job_no", j.JobNo),
		zap.String("allocation_mode", string(mode)),
		zap.String("previous_customer_total", previous.String()),
		zap.String("customer_total", j.Financials.CustomerTotal.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordJobPriced(ctx, string(mode), j.Financials.RequiresApproval)
	}
	resp := ToJobResponse(j)
	return &resp, nil
}

func (s *JobService) allocate(ctx context.Context, sizeKey string, quantity int64, mode pricing.AllocationMode, overrides pricing.Overrides) (pricing.AllocationResult, error) {
	rate, err := s.rates.Lookup(ctx, sizeKey)
	if err != nil {
		return pricing.AllocationResult{}, err
	}
	return pricing.Allocate(rate, quantity, mode, overrides)
}

// checkRoles verifies each party exists and holds the role it is used in
func (s *JobService) checkRoles(ctx context.Context, p job.Parties) error {
	if s.companies == nil {
		return nil
	}
	want := map[uuid.UUID]partner.Role{
		p.CustomerID:     partner.RoleCustomer,
		p.BrokerID:       partner.RoleBroker,
		p.IntermediaryID: partner.RoleIntermediary,
		p.ManufacturerID: partner.RoleManufacturer,
	}
	ids := make([]uuid.UUID, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}
	found, err := s.companies.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for id, role := range want {
		c, ok := found[id]
		if !ok {
			return shared.ErrNotFound.WithMessage(fmt.Sprintf("company %s not found", id))
		}
		if c.Role != role {
			return shared.NewDomainError("INVALID_PARTIES", fmt.Sprintf("company %s is a %s, not a %s", c.Name, c.Role, role))
		}
	}
	return nil
}

func (s *JobService) warnNegativeMargin(j *job.Job) {
	if !j.Financials.HasNegativeMargin() {
		return
	}
	s.logger.Warn("Job priced with a negative margin",
		zap.String("job_no", j.JobNo),
		zap.String("allocation_mode", string(j.Financials.Mode)),
		zap.String("broker_margin_cpm", j.Financials.BrokerMarginCPM.String()),
		zap.String("intermediary_total_margin_cpm", j.Financials.IntermediaryTotalMarginCPM.String()),
	)
}
