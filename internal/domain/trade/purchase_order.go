package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusIssued       PurchaseOrderStatus = "ISSUED"
	PurchaseOrderStatusAcknowledged PurchaseOrderStatus = "ACKNOWLEDGED"
	PurchaseOrderStatusCancelled    PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusIssued, PurchaseOrderStatusAcknowledged, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusIssued:
		return target == PurchaseOrderStatusAcknowledged || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusAcknowledged:
		return target == PurchaseOrderStatusCancelled
	}
	return false
}

// Leg identifies which hop of the supply chain a purchase order covers
type Leg string

const (
	LegBrokerToIntermediary       Leg = "BROKER_TO_INTERMEDIARY"
	LegIntermediaryToManufacturer Leg = "INTERMEDIARY_TO_MANUFACTURER"
	// LegInbound is a purchase order received by webhook that is not yet tied to a cascade leg
	LegInbound Leg = "INBOUND"
)

// CascadeLegs are the two legs every priced job settles through
var CascadeLegs = []Leg{LegBrokerToIntermediary, LegIntermediaryToManufacturer}

// Source records which path created a purchase order
type Source string

const (
	SourceCascade Source = "CASCADE"
	SourceWebhook Source = "WEBHOOK"
)

// PurchaseOrder is one party ordering production from the next one down the chain.
// Amounts are fixed at creation; drift against invoices is repaired on the invoice side.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PONumber        string
	JobID           *uuid.UUID
	Leg             Leg
	Source          Source
	OriginCompanyID uuid.UUID
	TargetCompanyID uuid.UUID
	OriginalAmount  decimal.Decimal
	VendorAmount    decimal.Decimal
	MarginAmount    decimal.Decimal
	ExternalRef     *string
	Status          PurchaseOrderStatus
}

// NewPurchaseOrderParams holds the inputs for NewPurchaseOrder
type NewPurchaseOrderParams struct {
	PONumber        string
	JobID           *uuid.UUID
	Leg             Leg
	Source          Source
	OriginCompanyID uuid.UUID
	TargetCompanyID uuid.UUID
	OriginalAmount  decimal.Decimal
	VendorAmount    decimal.Decimal
	MarginAmount    decimal.Decimal
	ExternalRef     string
}

// NewPurchaseOrder validates params and returns an issued purchase order
func NewPurchaseOrder(p NewPurchaseOrderParams) (*PurchaseOrder, error) {
	if p.OriginCompanyID == uuid.Nil || p.TargetCompanyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTIES", "Origin and target companies are required")
	}
	if p.OriginCompanyID == p.TargetCompanyID {
		return nil, shared.NewDomainError("INVALID_PARTIES", "A company cannot order from itself")
	}
	if strings.TrimSpace(p.PONumber) == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if p.VendorAmount.IsNegative() || p.OriginalAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Purchase order amounts cannot be negative")
	}

	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PONumber:          strings.TrimSpace(p.PONumber),
		JobID:             p.JobID,
		Leg:               p.Leg,
		Source:            p.Source,
		OriginCompanyID:   p.OriginCompanyID,
		TargetCompanyID:   p.TargetCompanyID,
		OriginalAmount:    p.OriginalAmount,
		VendorAmount:      p.VendorAmount,
		MarginAmount:      p.MarginAmount,
		Status:            PurchaseOrderStatusIssued,
	}
	if ref := strings.TrimSpace(p.ExternalRef); ref != "" {
		po.ExternalRef = &ref
	}
	po.AddDomainEvent(NewPurchaseOrderIssuedEvent(po))
	return po, nil
}

// Acknowledge records that the target accepted the order
func (po *PurchaseOrder) Acknowledge() error {
	return po.transition(PurchaseOrderStatusAcknowledged)
}

// Cancel cancels the order
func (po *PurchaseOrder) Cancel() error {
	return po.transition(PurchaseOrderStatusCancelled)
}

func (po *PurchaseOrder) transition(target PurchaseOrderStatus) error {
	if !po.Status.CanTransitionTo(target) {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("cannot move purchase order %s from %s to %s", po.PONumber, po.Status, target))
	}
	po.Status = target
	po.Touch(time.Now())
	po.IncrementVersion()
	return nil
}

// HasJob reports whether the order belongs to a job
func (po *PurchaseOrder) HasJob() bool {
	return po.JobID != nil && *po.JobID != uuid.Nil
}

// CascadePONumber formats the number of a cascade leg: PO-{jobNo}-{1|2}
func CascadePONumber(jobNo string, leg Leg) string {
	n := 1
	if leg == LegIntermediaryToManufacturer {
		n = 2
	}
	return fmt.Sprintf("PO-%s-%d", jobNo, n)
}

// BrokerLeg builds the broker→intermediary order for a priced job
func BrokerLeg(j *job.Job) (*PurchaseOrder, error) {
	f := j.Financials
	id := j.ID
	return NewPurchaseOrder(NewPurchaseOrderParams{
		PONumber:        CascadePONumber(j.JobNo, LegBrokerToIntermediary),
		JobID:           &id,
		Leg:             LegBrokerToIntermediary,
		Source:          SourceCascade,
		OriginCompanyID: j.BrokerID,
		TargetCompanyID: j.IntermediaryID,
		OriginalAmount:  f.CustomerTotal,
		VendorAmount:    f.IntermediaryPayable(),
		MarginAmount:    f.BrokerMarginTotal,
	})
}

// ManufacturerLeg builds the intermediary→manufacturer order. Its original amount
// is what the intermediary receives on the broker leg.
func ManufacturerLeg(j *job.Job, brokerLeg *PurchaseOrder) (*PurchaseOrder, error) {
	return NewPurchaseOrder(manufacturerLegParams(j, brokerLeg))
}

// InboundManufacturerLeg builds the manufacturer leg of j for a purchase order
// received by webhook. Parties and amounts are those of the cascade leg, so the
// party triple makes both paths converge on one row.
func InboundManufacturerLeg(j *job.Job, externalRef string) (*PurchaseOrder, error) {
	brokerLeg, err := BrokerLeg(j)
	if err != nil {
		return nil, err
	}
	p := manufacturerLegParams(j, brokerLeg)
	p.Source = SourceWebhook
	p.ExternalRef = externalRef
	return NewPurchaseOrder(p)
}

func manufacturerLegParams(j *job.Job, brokerLeg *PurchaseOrder) NewPurchaseOrderParams {
	f := j.Financials
	id := j.ID
	return NewPurchaseOrderParams{
		PONumber:        CascadePONumber(j.JobNo, LegIntermediaryToManufacturer),
		JobID:           &id,
		Leg:             LegIntermediaryToManufacturer,
		Source:          SourceCascade,
		OriginCompanyID: j.IntermediaryID,
		TargetCompanyID: j.ManufacturerID,
		OriginalAmount:  brokerLeg.VendorAmount,
		VendorAmount:    f.ManufacturerTotal,
		MarginAmount:    f.IntermediaryTotalMarginTotal,
	}
}
