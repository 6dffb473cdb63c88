package pricing

import (
	"fmt"

	"github.com/printchain/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AllocationMode is the business rule governing how margin is split for a job.
type AllocationMode string

const (
	AllocationModeNormal                    AllocationMode = "NORMAL"
	AllocationModeManufacturerSuppliesPaper AllocationMode = "MANUFACTURER_SUPPLIES_PAPER"
	AllocationModeIntermediaryWaivesPaper   AllocationMode = "INTERMEDIARY_WAIVES_PAPER_MARGIN"
)

// IsValid returns true if the mode is one of the supported allocation modes
func (m AllocationMode) IsValid() bool {
	_, ok := policies[m]
	return ok
}

// String returns the string representation of the mode
func (m AllocationMode) String() string {
	return string(m)
}

// AllAllocationModes returns every supported mode
func AllAllocationModes() []AllocationMode {
	return []AllocationMode{
		AllocationModeNormal,
		AllocationModeManufacturerSuppliesPaper,
		AllocationModeIntermediaryWaivesPaper,
	}
}

var (
	half      = decimal.New(5, -1)
	tenPct    = decimal.New(1, -1)
	eightyPct = decimal.New(8, -1)
)

// Overrides carries optional per-job replacements for rate card values.
type Overrides struct {
	CustomerCPM *decimal.Decimal
}

// AllocationResult holds every per-unit and extended money field of a priced job.
// Each *Total equals its *CPM multiplied by QuantityInThousands.
type AllocationResult struct {
	Mode                AllocationMode
	SizeKey             string
	Quantity            int64
	QuantityInThousands decimal.Decimal

	StandardCustomerCPM decimal.Decimal
	CustomerCPM         decimal.Decimal
	CustomerTotal       decimal.Decimal

	ManufacturerCPM   decimal.Decimal
	ManufacturerTotal decimal.Decimal

	PaperCostCPM      decimal.Decimal
	PaperCostTotal    decimal.Decimal
	PaperChargedCPM   decimal.Decimal
	PaperChargedTotal decimal.Decimal
	PaperWeightTotal  decimal.Decimal

	BrokerMarginCPM   decimal.Decimal
	BrokerMarginTotal decimal.Decimal

	IntermediaryPrintMarginCPM   decimal.Decimal
	IntermediaryPrintMarginTotal decimal.Decimal
	IntermediaryPaperMarginCPM   decimal.Decimal
	IntermediaryPaperMarginTotal decimal.Decimal
	IntermediaryTotalMarginCPM   decimal.Decimal
	IntermediaryTotalMarginTotal decimal.Decimal

	RequiresApproval  bool
	UnderchargeAmount decimal.Decimal
}

// PartyTotal is the amount the customer total is split into: broker margin,
// intermediary margin, manufacturer and (where the intermediary buys it) paper cost.
func (r AllocationResult) PartyTotal() decimal.Decimal {
	return r.BrokerMarginTotal.
		Add(r.IntermediaryTotalMarginTotal).
		Add(r.ManufacturerTotal).
		Add(r.PaperCostTotal)
}

// IntermediaryPayable is what the broker pays the intermediary.
func (r AllocationResult) IntermediaryPayable() decimal.Decimal {
	return r.CustomerTotal.Sub(r.BrokerMarginTotal)
}

// HasNegativeMargin reports whether either split margin went below zero.
func (r AllocationResult) HasNegativeMargin() bool {
	return r.BrokerMarginCPM.IsNegative() || r.IntermediaryTotalMarginCPM.IsNegative()
}

// unitRates are the per-thousand figures a policy settles on.
type unitRates struct {
	manufacturer decimal.Decimal
	paperCost    decimal.Decimal
	paperCharged decimal.Decimal
	brokerMargin decimal.Decimal
	printMargin  decimal.Decimal
	paperMargin  decimal.Decimal
}

// allocationPolicy computes the unit rates for one mode from the rate card and
// the effective customer CPM.
type allocationPolicy func(rate *RateCardEntry, customerCPM decimal.Decimal) unitRates

var policies = map[AllocationMode]allocationPolicy{
	AllocationModeNormal:                    normalPolicy,
	AllocationModeManufacturerSuppliesPaper: manufacturerSuppliesPaperPolicy,
	AllocationModeIntermediaryWaivesPaper:   intermediaryWaivesPaperPolicy,
}

// normalPolicy splits what is left after manufacturing and charged paper evenly
// between broker and intermediary; the intermediary also keeps the paper markup.
func normalPolicy(rate *RateCardEntry, customerCPM decimal.Decimal) unitRates {
	split := customerCPM.Sub(rate.ManufacturerCPM).Sub(rate.PaperChargedCPM).Mul(half)
	return unitRates{
		manufacturer: rate.ManufacturerCPM,
		paperCost:    rate.PaperCostCPM,
		paperCharged: rate.PaperChargedCPM,
		brokerMargin: split,
		printMargin:  split,
		paperMargin:  rate.PaperChargedCPM.Sub(rate.PaperCostCPM),
	}
}

// manufacturerSuppliesPaperPolicy is a fixed 10/10/80 split of the customer price.
// There is no paper line at all.
func manufacturerSuppliesPaperPolicy(_ *RateCardEntry, customerCPM decimal.Decimal) unitRates {
	margin := customerCPM.Mul(tenPct)
	return unitRates{
		manufacturer: customerCPM.Mul(eightyPct),
		brokerMargin: margin,
		printMargin:  margin,
	}
}

// intermediaryWaivesPaperPolicy charges paper at cost and splits the remainder evenly.
func intermediaryWaivesPaperPolicy(rate *RateCardEntry, customerCPM decimal.Decimal) unitRates {
	split := customerCPM.Sub(rate.ManufacturerCPM).Sub(rate.PaperCostCPM).Mul(half)
	return unitRates{
		manufacturer: rate.ManufacturerCPM,
		paperCost:    rate.PaperCostCPM,
		paperCharged: rate.PaperCostCPM,
		brokerMargin: split,
		printMargin:  split,
	}
}

// Allocate prices quantity units of rate under mode. It has no side effects;
// the caller persists the result.
func Allocate(rate *RateCardEntry, quantity int64, mode AllocationMode, overrides Overrides) (AllocationResult, error) {
	if rate == nil {
		return AllocationResult{}, ErrUnknownSize
	}
	if quantity <= 0 {
		return AllocationResult{}, ErrInvalidQuantity.WithMessage(fmt.Sprintf("quantity must be greater than zero, got %d", quantity))
	}
	policy, ok := policies[mode]
	if !ok {
		return AllocationResult{}, ErrInvalidMode.WithMessage(fmt.Sprintf("unknown allocation mode %q", mode))
	}
	if err := rate.Validate(); err != nil {
		return AllocationResult{}, err
	}

	standard := rate.StandardCustomerCPM()
	customerCPM := standard
	if overrides.CustomerCPM != nil {
		if !overrides.CustomerCPM.IsPositive() {
			return AllocationResult{}, ErrInvalidRate.WithMessage("customer CPM override must be positive")
		}
		customerCPM = *overrides.CustomerCPM
	}

	q := valueobject.PerThousand(quantity)
	u := policy(rate, customerCPM)
	totalMargin := u.printMargin.Add(u.paperMargin)

	result := AllocationResult{
		Mode:                mode,
		SizeKey:             rate.SizeKey,
		Quantity:            quantity,
		QuantityInThousands: q,

		StandardCustomerCPM: standard,
		CustomerCPM:         customerCPM,
		CustomerTotal:       valueobject.ExtendCPM(customerCPM, q),

		ManufacturerCPM:   u.manufacturer,
		ManufacturerTotal: valueobject.ExtendCPM(u.manufacturer, q),

		PaperCostCPM:      u.paperCost,
		PaperCostTotal:    valueobject.ExtendCPM(u.paperCost, q),
		PaperChargedCPM:   u.paperCharged,
		PaperChargedTotal: valueobject.ExtendCPM(u.paperCharged, q),
		PaperWeightTotal:  valueobject.ExtendCPM(rate.PaperWeightPer1000, q),

		BrokerMarginCPM:   u.brokerMargin,
		BrokerMarginTotal: valueobject.ExtendCPM(u.brokerMargin, q),

		IntermediaryPrintMarginCPM:   u.printMargin,
		IntermediaryPrintMarginTotal: valueobject.ExtendCPM(u.printMargin, q),
		IntermediaryPaperMarginCPM:   u.paperMargin,
		IntermediaryPaperMarginTotal: valueobject.ExtendCPM(u.paperMargin, q),
		IntermediaryTotalMarginCPM:   totalMargin,
		IntermediaryTotalMarginTotal: valueobject.ExtendCPM(totalMargin, q),

		UnderchargeAmount: decimal.Zero,
	}

	if customerCPM.LessThan(standard) {
		result.RequiresApproval = true
		result.UnderchargeAmount = valueobject.ExtendCPM(standard.Sub(customerCPM), q)
	}

	return result, nil
}
