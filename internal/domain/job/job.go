package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/printchain/backend/internal/domain/shared"
)

// ApprovalStatus tracks sign-off for jobs priced below the rate card
type ApprovalStatus string

const (
	ApprovalNotRequired ApprovalStatus = "NOT_REQUIRED"
	ApprovalPending     ApprovalStatus = "PENDING"
	ApprovalApproved    ApprovalStatus = "APPROVED"
)

// IsValid checks if the approval status is valid
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalNotRequired, ApprovalPending, ApprovalApproved:
		return true
	}
	return false
}

// Parties identifies the four companies on a job.
type Parties struct {
	CustomerID     uuid.UUID
	BrokerID       uuid.UUID
	IntermediaryID uuid.UUID
	ManufacturerID uuid.UUID
}

// Validate checks that every party is set and the supply chain has no loops
func (p Parties) Validate() error {
	if p.CustomerID == uuid.Nil || p.BrokerID == uuid.Nil || p.IntermediaryID == uuid.Nil || p.ManufacturerID == uuid.Nil {
		return shared.NewDomainError("INVALID_PARTIES", "Customer, broker, intermediary and manufacturer are all required")
	}
	if p.BrokerID == p.IntermediaryID || p.IntermediaryID == p.ManufacturerID || p.BrokerID == p.ManufacturerID {
		return shared.NewDomainError("INVALID_PARTIES", "Broker, intermediary and manufacturer must be different companies")
	}
	return nil
}

// Job is the canonical financial record of a print job. Its money fields are
// computed once by the allocation calculator and only replaced by an explicit reprice.
type Job struct {
	shared.BaseAggregateRoot
	JobNo       string
	Description string
	Parties
	Financials     pricing.AllocationResult
	ApprovalStatus ApprovalStatus
	ApprovedBy     string
	ApprovedAt     *time.Time
	PricedAt       time.Time
}

// NewJob prices a job and returns it ready to persist. Pricing errors abort creation.
func NewJob(jobNo, description string, parties Parties, rate *pricing.RateCardEntry, quantity int64, mode pricing.AllocationMode, overrides pricing.Overrides) (*Job, error) {
	if err := parties.Validate(); err != nil {
		return nil, err
	}
	jobNo = strings.TrimSpace(jobNo)
	if jobNo == "" || len(jobNo) > 50 {
		return nil, shared.NewDomainError("INVALID_JOB_NO", "Job number must be 1-50 characters")
	}

	financials, err := pricing.Allocate(rate, quantity, mode, overrides)
	if err != nil {
		return nil, err
	}

	j := &Job{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		JobNo:             jobNo,
		Description:       description,
		Parties:           parties,
	}
	j.applyFinancials(financials)
	j.AddDomainEvent(NewJobPricedEvent(j))
	return j, nil
}

func (j *Job) applyFinancials(financials pricing.AllocationResult) {
	j.Financials = financials
	j.PricedAt = time.Now()
	j.ApprovedBy = ""
	j.ApprovedAt = nil
	if financials.RequiresApproval {
		j.ApprovalStatus = ApprovalPending
	} else {
		j.ApprovalStatus = ApprovalNotRequired
	}
}

// Approve signs off an undercharged job
func (j *Job) Approve(actor string) error {
	if j.ApprovalStatus != ApprovalPending {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("job %s has no pending approval", j.JobNo))
	}
	if strings.TrimSpace(actor) == "" {
		return shared.ErrInvalidInput.WithMessage("approver is required")
	}
	now := time.Now()
	j.ApprovalStatus = ApprovalApproved
	j.ApprovedBy = actor
	j.ApprovedAt = &now
	j.Touch(now)
	j.IncrementVersion()
	j.AddDomainEvent(NewJobApprovedEvent(j))
	return nil
}

// Reprice replaces the financial record with a fresh allocation. The caller
// must ensure no purchase order has been issued for the job yet.
func (j *Job) Reprice(rate *pricing.RateCardEntry, mode pricing.AllocationMode, overrides pricing.Overrides) error {
	financials, err := pricing.Allocate(rate, j.Financials.Quantity, mode, overrides)
	if err != nil {
		return err
	}
	j.applyFinancials(financials)
	j.Touch(time.Now())
	j.IncrementVersion()
	j.AddDomainEvent(NewJobPricedEvent(j))
	return nil
}

// ReadyForCascade reports whether purchase orders may be issued
func (j *Job) ReadyForCascade() bool {
	return j.ApprovalStatus != ApprovalPending
}
