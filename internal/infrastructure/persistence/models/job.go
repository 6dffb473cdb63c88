package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/printchain/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// JobModel stores a job with its flattened allocation result
type JobModel struct {
	AggregateModel
	JobNo          string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description    string             `gorm:"type:text"`
	CustomerID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	BrokerID       uuid.UUID          `gorm:"type:uuid;not null"`
	IntermediaryID uuid.UUID          `gorm:"type:uuid;not null"`
	ManufacturerID uuid.UUID          `gorm:"type:uuid;not null"`
	ApprovalStatus job.ApprovalStatus `gorm:"type:varchar(20);not null;default:NOT_REQUIRED"`
	ApprovedBy     string             `gorm:"type:varchar(100)"`
	ApprovedAt     *time.Time
	PricedAt       time.Time `gorm:"not null"`

	SizeKey        string                 `gorm:"type:varchar(50);not null"`
	Quantity       int64                  `gorm:"not null"`
	AllocationMode pricing.AllocationMode `gorm:"type:varchar(40);not null"`

	StandardCustomerCPM decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	CustomerCPM         decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	CustomerTotal       decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	ManufacturerCPM     decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	ManufacturerTotal   decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	PaperCostCPM        decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	PaperCostTotal      decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	PaperChargedCPM     decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	PaperChargedTotal   decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	PaperWeightTotal    decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	BrokerMarginCPM     decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	BrokerMarginTotal   decimal.Decimal `gorm:"type:decimal(20,8);not null"`

	IntermediaryPrintMarginCPM   decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	IntermediaryPrintMarginTotal decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	IntermediaryPaperMarginCPM   decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	IntermediaryPaperMarginTotal decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	IntermediaryTotalMarginCPM   decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	IntermediaryTotalMarginTotal decimal.Decimal `gorm:"type:decimal(20,8);not null"`

	RequiresApproval  bool            `gorm:"not null;default:false"`
	UnderchargeAmount decimal.Decimal `gorm:"type:decimal(20,8);not null"`
}

// TableName returns the table name for GORM
func (JobModel) TableName() string {
	return "jobs"
}

// ToDomain converts the model to a job
func (m *JobModel) ToDomain() *job.Job {
	return &job.Job{
		BaseAggregateRoot: m.AggregateModel.ToAggregateRoot(),
		JobNo:             m.JobNo,
		Description:       m.Description,
		Parties: job.Parties{
			CustomerID:     m.CustomerID,
			BrokerID:       m.BrokerID,
			IntermediaryID: m.IntermediaryID,
			ManufacturerID: m.ManufacturerID,
		},
		Financials: pricing.AllocationResult{
			Mode:                         m.AllocationMode,
			SizeKey:                      m.SizeKey,
			Quantity:                     m.Quantity,
			QuantityInThousands:          valueobject.PerThousand(m.Quantity),
			StandardCustomerCPM:          m.StandardCustomerCPM,
			CustomerCPM:                  m.CustomerCPM,
			CustomerTotal:                m.CustomerTotal,
			ManufacturerCPM:              m.ManufacturerCPM,
			ManufacturerTotal:            m.ManufacturerTotal,
			PaperCostCPM:                 m.PaperCostCPM,
			PaperCostTotal:               m.PaperCostTotal,
			PaperChargedCPM:              m.PaperChargedCPM,
			PaperChargedTotal:            m.PaperChargedTotal,
			PaperWeightTotal:             m.PaperWeightTotal,
			BrokerMarginCPM:              m.BrokerMarginCPM,
			BrokerMarginTotal:            m.BrokerMarginTotal,
			IntermediaryPrintMarginCPM:   m.IntermediaryPrintMarginCPM,
			IntermediaryPrintMarginTotal: m.IntermediaryPrintMarginTotal,
			IntermediaryPaperMarginCPM:   m.IntermediaryPaperMarginCPM,
			IntermediaryPaperMarginTotal: m.IntermediaryPaperMarginTotal,
			IntermediaryTotalMarginCPM:   m.IntermediaryTotalMarginCPM,
			IntermediaryTotalMarginTotal: m.IntermediaryTotalMarginTotal,
			RequiresApproval:             m.RequiresApproval,
			UnderchargeAmount:            m.UnderchargeAmount,
		},
		ApprovalStatus: m.ApprovalStatus,
		ApprovedBy:     m.ApprovedBy,
		ApprovedAt:     m.ApprovedAt,
		PricedAt:       m.PricedAt,
	}
}

// JobModelFromDomain builds a model from a job
func JobModelFromDomain(j *job.Job) *JobModel {
	f := j.Financials
	m := &JobModel{
		JobNo:          j.JobNo,
		Description:    j.Description,
		CustomerID:     j.CustomerID,
		BrokerID:       j.BrokerID,
		IntermediaryID: j.IntermediaryID,
		ManufacturerID: j.ManufacturerID,
		ApprovalStatus: j.ApprovalStatus,
		ApprovedBy:     j.ApprovedBy,
		ApprovedAt:     j.ApprovedAt,
		PricedAt:       j.PricedAt,

		SizeKey:        f.SizeKey,
		Quantity:       f.Quantity,
		AllocationMode: f.Mode,

		StandardCustomerCPM: f.StandardCustomerCPM,
		CustomerCPM:         f.CustomerCPM,
		CustomerTotal:       f.CustomerTotal,
		ManufacturerCPM:     f.ManufacturerCPM,
		ManufacturerTotal:   f.ManufacturerTotal,
		PaperCostCPM:        f.PaperCostCPM,
		PaperCostTotal:      f.PaperCostTotal,
		PaperChargedCPM:     f.PaperChargedCPM,
		PaperChargedTotal:   f.PaperChargedTotal,
		PaperWeightTotal:    f.PaperWeightTotal,
		BrokerMarginCPM:     f.BrokerMarginCPM,
		BrokerMarginTotal:   f.BrokerMarginTotal,

		IntermediaryPrintMarginCPM:   f.IntermediaryPrintMarginCPM,
		IntermediaryPrintMarginTotal: f.IntermediaryPrintMarginTotal,
		IntermediaryPaperMarginCPM:   f.IntermediaryPaperMarginCPM,
		IntermediaryPaperMarginTotal: f.IntermediaryPaperMarginTotal,
		IntermediaryTotalMarginCPM:   f.IntermediaryTotalMarginCPM,
		IntermediaryTotalMarginTotal: f.IntermediaryTotalMarginTotal,

		RequiresApproval:  f.RequiresApproval,
		UnderchargeAmount: f.UnderchargeAmount,
	}
	m.FromDomainAggregateRoot(j.BaseAggregateRoot)
	return m
}

// SequenceModel is a named counter used for document numbering
type SequenceModel struct {
	Name      string `gorm:"type:varchar(100);primaryKey"`
	Value     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "document_sequences"
}
