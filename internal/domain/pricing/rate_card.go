package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RateCardEntry holds the per-thousand rates for one product size.
type RateCardEntry struct {
	shared.BaseEntity
	SizeKey                 string
	ManufacturerCPM         decimal.Decimal
	PaperCostCPM            decimal.Decimal
	PaperChargedCPM         decimal.Decimal
	PaperWeightPer1000      decimal.Decimal
	IntermediaryInvoicePerM decimal.Decimal
	// BrokerInvoicePerM is the standard customer CPM.
	BrokerInvoicePerM decimal.Decimal
}

// NewRateCardEntry creates a validated rate card entry
func NewRateCardEntry(sizeKey string, manufacturerCPM, paperCostCPM, paperChargedCPM, customerCPM decimal.Decimal) (*RateCardEntry, error) {
	entry := &RateCardEntry{
		BaseEntity:        shared.NewBaseEntity(),
		SizeKey:           NormalizeSizeKey(sizeKey),
		ManufacturerCPM:   manufacturerCPM,
		PaperCostCPM:      paperCostCPM,
		PaperChargedCPM:   paperChargedCPM,
		BrokerInvoicePerM: customerCPM,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// StandardCustomerCPM returns the rate-card customer price per thousand
func (r *RateCardEntry) StandardCustomerCPM() decimal.Decimal {
	return r.BrokerInvoicePerM
}

// Validate checks that the entry can be priced
func (r *RateCardEntry) Validate() error {
	if r.SizeKey == "" {
		return shared.NewDomainError("INVALID_SIZE_KEY", "Size key cannot be empty")
	}
	fields := map[string]decimal.Decimal{
		"manufacturer_cpm":           r.ManufacturerCPM,
		"paper_cost_cpm":             r.PaperCostCPM,
		"paper_charged_cpm":          r.PaperChargedCPM,
		"paper_weight_per_1000":      r.PaperWeightPer1000,
		"intermediary_invoice_per_m": r.IntermediaryInvoicePerM,
		"broker_invoice_per_m":       r.BrokerInvoicePerM,
	}
	for name, v := range fields {
		if v.IsNegative() {
			return ErrInvalidRate.WithMessage(fmt.Sprintf("%s must be non-negative for size %s", name, r.SizeKey))
		}
	}
	if !r.BrokerInvoicePerM.IsPositive() {
		return ErrInvalidRate.WithMessage(fmt.Sprintf("customer CPM must be positive for size %s", r.SizeKey))
	}
	return nil
}

// NormalizeSizeKey canonicalizes size identifiers ("6x9 " and "6X9" are the same size).
func NormalizeSizeKey(sizeKey string) string {
	return strings.ToUpper(strings.Join(strings.Fields(sizeKey), ""))
}

// RateCard is the read-only rate lookup used by the job service.
type RateCard interface {
	// Lookup returns the entry for sizeKey or ErrUnknownSize
	Lookup(ctx context.Context, sizeKey string) (*RateCardEntry, error)
}

// RateCardRepository persists rate card entries
type RateCardRepository interface {
	RateCard
	FindByID(ctx context.Context, id uuid.UUID) (*RateCardEntry, error)
	FindAll(ctx context.Context) ([]RateCardEntry, error)
	Save(ctx context.Context, entry *RateCardEntry) error
}
