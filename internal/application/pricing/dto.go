package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// QuoteRequest asks for an allocation without storing anything
type QuoteRequest struct {
	SizeKey        string           `json:"size_key" binding:"required,max=50" validate:"required,max=50"`
	Quantity       int64            `json:"quantity" binding:"required,gt=0" validate:"gt=0"`
	AllocationMode string           `json:"allocation_mode" binding:"omitempty,oneof=NORMAL MANUFACTURER_SUPPLIES_PAPER INTERMEDIARY_WAIVES_PAPER_MARGIN" validate:"omitempty,oneof=NORMAL MANUFACTURER_SUPPLIES_PAPER INTERMEDIARY_WAIVES_PAPER_MARGIN"`
	CustomerCPM    *decimal.Decimal `json:"customer_cpm,omitempty"`
}

// CreateJobRequest creates and prices a job
type CreateJobRequest struct {
	QuoteRequest
	JobNo          string    `json:"job_no" binding:"omitempty,max=50" validate:"omitempty,max=50"`
	Description    string    `json:"description" binding:"max=500" validate:"max=500"`
	CustomerID     uuid.UUID `json:"customer_id" binding:"required" validate:"required"`
	BrokerID       uuid.UUID `json:"broker_id" binding:"required" validate:"required"`
	IntermediaryID uuid.UUID `json:"intermediary_id" binding:"required" validate:"required"`
	ManufacturerID uuid.UUID `json:"manufacturer_id" binding:"required" validate:"required"`
}

// RepriceJobRequest replaces a job's financials before any purchase order exists
type RepriceJobRequest struct {
	AllocationMode string           `json:"allocation_mode" binding:"omitempty,oneof=NORMAL MANUFACTURER_SUPPLIES_PAPER INTERMEDIARY_WAIVES_PAPER_MARGIN" validate:"omitempty,oneof=NORMAL MANUFACTURER_SUPPLIES_PAPER INTERMEDIARY_WAIVES_PAPER_MARGIN"`
	CustomerCPM    *decimal.Decimal `json:"customer_cpm,omitempty"`
}

// ApproveJobRequest signs off an undercharged job
type ApproveJobRequest struct {
	ApprovedBy string `json:"approved_by" binding:"required,max=100" validate:"required,max=100"`
}

// JobListFilter narrows List
type JobListFilter struct {
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Approval       string `form:"approval" binding:"omitempty,oneof=NOT_REQUIRED PENDING APPROVED"`
	CustomerID     string `form:"customer_id" binding:"omitempty,uuid"`
	AllocationMode string `form:"allocation_mode" binding:"omitempty,oneof=NORMAL MANUFACTURER_SUPPLIES_PAPER INTERMEDIARY_WAIVES_PAPER_MARGIN"`
}

// AllocationResponse is the full money breakdown of a priced job or quote
type AllocationResponse struct {
	AllocationMode      string          `json:"allocation_mode"`
	SizeKey             string          `json:"size_key"`
	Quantity            int64           `json:"quantity"`
	QuantityInThousands decimal.Decimal `json:"quantity_in_thousands"`

	StandardCustomerCPM decimal.Decimal `json:"standard_customer_cpm"`
	CustomerCPM         decimal.Decimal `json:"customer_cpm"`
	CustomerTotal       decimal.Decimal `json:"customer_total"`
	ManufacturerCPM     decimal.Decimal `json:"manufacturer_cpm"`
	ManufacturerTotal   decimal.Decimal `json:"manufacturer_total"`
	PaperCostCPM        decimal.Decimal `json:"paper_cost_cpm"`
	PaperCostTotal      decimal.Decimal `json:"paper_cost_total"`
	PaperChargedCPM     decimal.Decimal `json:"paper_charged_cpm"`
	PaperChargedTotal   decimal.Decimal `json:"paper_charged_total"`
	PaperWeightTotal    decimal.Decimal `json:"paper_weight_total"`

	BrokerMarginCPM              decimal.Decimal `json:"broker_margin_cpm"`
	BrokerMarginTotal            decimal.Decimal `json:"broker_margin_total"`
	IntermediaryPrintMarginCPM   decimal.Decimal `json:"intermediary_print_margin_cpm"`
	IntermediaryPrintMarginTotal decimal.Decimal `json:"intermediary_print_margin_total"`
	IntermediaryPaperMarginCPM   decimal.Decimal `json:"intermediary_paper_margin_cpm"`
	IntermediaryPaperMarginTotal decimal.Decimal `json:"intermediary_paper_margin_total"`
	IntermediaryTotalMarginCPM   decimal.Decimal `json:"intermediary_total_margin_cpm"`
	IntermediaryTotalMarginTotal decimal.Decimal `json:"intermediary_total_margin_total"`

	RequiresApproval  bool            `json:"requires_approval"`
	UnderchargeAmount decimal.Decimal `json:"undercharge_amount"`
}

// JobResponse is a job with its financial record
type JobResponse struct {
	ID             uuid.UUID          `json:"id"`
	JobNo          string             `json:"job_no"`
	Description    string             `json:"description,omitempty"`
	CustomerID     uuid.UUID          `json:"customer_id"`
	BrokerID       uuid.UUID          `json:"broker_id"`
	IntermediaryID uuid.UUID          `json:"intermediary_id"`
	ManufacturerID uuid.UUID          `json:"manufacturer_id"`
	Financials     AllocationResponse `json:"financials"`
	ApprovalStatus string             `json:"approval_status"`
	ApprovedBy     string             `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time         `json:"approved_at,omitempty"`
	PricedAt       time.Time          `json:"priced_at"`
	Version        int                `json:"version"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// ToAllocationResponse converts a calculator result
func ToAllocationResponse(r pricing.AllocationResult) AllocationResponse {
	return AllocationResponse{
		AllocationMode:               string(r.Mode),
		SizeKey:                      r.SizeKey,
		Quantity:                     r.Quantity,
		QuantityInThousands:          r.QuantityInThousands,
		StandardCustomerCPM:          r.StandardCustomerCPM,
		CustomerCPM:                  r.CustomerCPM,
		CustomerTotal:                r.CustomerTotal,
		ManufacturerCPM:              r.ManufacturerCPM,
		ManufacturerTotal:            r.ManufacturerTotal,
		PaperCostCPM:                 r.PaperCostCPM,
		PaperCostTotal:               r.PaperCostTotal,
		PaperChargedCPM:              r.PaperChargedCPM,
		PaperChargedTotal:            r.PaperChargedTotal,
		PaperWeightTotal:             r.PaperWeightTotal,
		BrokerMarginCPM:              r.BrokerMarginCPM,
		BrokerMarginTotal:            r.BrokerMarginTotal,
		IntermediaryPrintMarginCPM:   r.IntermediaryPrintMarginCPM,
		IntermediaryPrintMarginTotal: r.IntermediaryPrintMarginTotal,
		IntermediaryPaperMarginCPM:   r.IntermediaryPaperMarginCPM,
		IntermediaryPaperMarginTotal: r.IntermediaryPaperMarginTotal,
		IntermediaryTotalMarginCPM:   r.IntermediaryTotalMarginCPM,
		IntermediaryTotalMarginTotal: r.IntermediaryTotalMarginTotal,
		RequiresApproval:             r.RequiresApproval,
		UnderchargeAmount:            r.UnderchargeAmount,
	}
}

// ToJobResponse converts a job
func ToJobResponse(j *job.Job) JobResponse {
	return JobResponse{
		ID:             j.ID,
		JobNo:          j.JobNo,
		Description:    j.Description,
		CustomerID:     j.CustomerID,
		BrokerID:       j.BrokerID,
		IntermediaryID: j.IntermediaryID,
		ManufacturerID: j.ManufacturerID,
		Financials:     ToAllocationResponse(j.Financials),
		ApprovalStatus: string(j.ApprovalStatus),
		ApprovedBy:     j.ApprovedBy,
		ApprovedAt:     j.ApprovedAt,
		PricedAt:       j.PricedAt,
		Version:        j.GetVersion(),
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func modeOrDefault(mode string) pricing.AllocationMode {
	if mode == "" {
		return pricing.AllocationModeNormal
	}
	return pricing.AllocationMode(mode)
}
