package job

import (
	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type and event names for jobs
const (
	AggregateTypeJob = "Job"

	EventTypeJobPriced   = "JobPriced"
	EventTypeJobApproved = "JobApproved"
)

// JobPricedEvent is raised when a job's financial record is (re)computed
type JobPricedEvent struct {
	shared.BaseDomainEvent
	JobID            uuid.UUID       `json:"job_id"`
	JobNo            string          `json:"job_no"`
	AllocationMode   string          `json:"allocation_mode"`
	CustomerTotal    decimal.Decimal `json:"customer_total"`
	RequiresApproval bool            `json:"requires_approval"`
}

// NewJobPricedEvent creates a JobPricedEvent
func NewJobPricedEvent(j *Job) *JobPricedEvent {
	return &JobPricedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeJobPriced, AggregateTypeJob, j.ID),
		JobID:            j.ID,
		JobNo:            j.JobNo,
		AllocationMode:   string(j.Financials.Mode),
		CustomerTotal:    j.Financials.CustomerTotal,
		RequiresApproval: j.Financials.RequiresApproval,
	}
}

// JobApprovedEvent is raised when an undercharged job is signed off
type JobApprovedEvent struct {
	shared.BaseDomainEvent
	JobID      uuid.UUID `json:"job_id"`
	JobNo      string    `json:"job_no"`
	ApprovedBy string    `json:"approved_by"`
}

// NewJobApprovedEvent creates a JobApprovedEvent
func NewJobApprovedEvent(j *Job) *JobApprovedEvent {
	return &JobApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobApproved, AggregateTypeJob, j.ID),
		JobID:           j.ID,
		JobNo:           j.JobNo,
		ApprovedBy:      j.ApprovedBy,
	}
}
