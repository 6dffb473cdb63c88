package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	tradeapp "github.com/printchain/backend/internal/application/trade"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// TaskRunner runs fn on a worker pool and waits for it
type TaskRunner interface {
	Do(ctx context.Context, typ scheduler.TaskType, fn scheduler.TaskFunc) error
}

// JobDocumentsHandler builds a job's purchase orders and invoices once the job
// is priced and, where needed, approved. Every step is idempotent, so a
// redelivered event only fills in what is missing.
type JobDocumentsHandler struct {
	jobs     job.JobRepository
	cascade  *tradeapp.CascadeService
	invoices *InvoiceService
	runner   TaskRunner
	logger   *zap.Logger
}

// NewJobDocumentsHandler creates a new JobDocumentsHandler. A nil runner runs
// the steps on the caller's goroutine.
func NewJobDocumentsHandler(jobs job.JobRepository, cascade *tradeapp.CascadeService, invoices *InvoiceService, runner TaskRunner, logger *zap.Logger) *JobDocumentsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobDocumentsHandler{
		jobs:     jobs,
		cascade:  cascade,
		invoices: invoices,
		runner:   runner,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *JobDocumentsHandler) EventTypes() []string {
	return []string{job.EventTypeJobPriced, job.EventTypeJobApproved}
}

// Handle processes JobPricedEvent and JobApprovedEvent
func (h *JobDocumentsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var jobID uuid.UUID
	switch e := event.(type) {
	case *job.JobPricedEvent:
		jobID = e.JobID
	case *job.JobApprovedEvent:
		jobID = e.JobID
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	j, err := h.jobs.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if !j.ReadyForCascade() {
		h.logger.Info("Job awaiting approval, documents deferred",
			zap.String("job_no", j.JobNo),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	var cascade *tradeapp.CascadeResult
	err = h.run(ctx, scheduler.TaskCascade, func(ctx context.Context) error {
		var err error
		cascade, err = h.cascade.EnsureCascade(ctx, jobID)
		return err
	})
	if err != nil {
		return fmt.Errorf("cascade job %s: %w", j.JobNo, err)
	}

	return h.run(ctx, scheduler.TaskInvoice, func(ctx context.Context) error {
		for _, poID := range cascade.PurchaseOrderIDs() {
			if _, err := h.invoices.GenerateSettlementInvoice(ctx, poID); err != nil {
				return fmt.Errorf("settlement invoice for job %s: %w", j.JobNo, err)
			}
		}
		if _, err := h.invoices.GenerateCustomerInvoice(ctx, jobID); err != nil {
			return fmt.Errorf("customer invoice for job %s: %w", j.JobNo, err)
		}
		return nil
	})
}

func (h *JobDocumentsHandler) run(ctx context.Context, typ scheduler.TaskType, fn scheduler.TaskFunc) error {
	if h.runner == nil {
		return fn(ctx)
	}
	return h.runner.Do(ctx, typ, fn)
}

var _ shared.EventHandler = (*JobDocumentsHandler)(nil)
