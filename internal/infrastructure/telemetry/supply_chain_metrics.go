package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is given
var ErrMeterNil = errors.New("NewSupplyChainMetrics: meter cannot be nil")

// SupplyChainMetrics records pricing, document and reconciliation activity.
type SupplyChainMetrics struct {
	jobsPriced        *Counter
	purchaseOrders    *Counter
	invoicesIssued    *Counter
	percentInSync     *FloatGauge
	auditRuns         *Counter
	mismatches        *Counter
	repairs           *Counter
	inboundEvents     *Counter
	extractionSeconds *Histogram
}

// NewSupplyChainMetrics creates all instruments on meter
func NewSupplyChainMetrics(meter metric.Meter) (*SupplyChainMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &SupplyChainMetrics{}
	var err error

	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&m.jobsPriced, "pricing.jobs_priced", "Jobs priced by the allocation calculator", "{jobs}"},
		{&m.purchaseOrders, "trade.purchase_orders_created", "Purchase orders created by the cascade or intake", "{orders}"},
		{&m.invoicesIssued, "billing.invoices_issued", "Invoices issued", "{invoices}"},
		{&m.auditRuns, "reconciliation.audit_runs", "Synchronization audits run", "{runs}"},
		{&m.mismatches, "reconciliation.mismatches", "Purchase order and invoice pairs found out of sync", "{pairs}"},
		{&m.repairs, "reconciliation.repairs", "Invoice amounts corrected by the auditor", "{corrections}"},
		{&m.inboundEvents, "intake.inbound_events", "Inbound webhook events by final state", "{events}"},
	}
	for _, c := range counters {
		if *c.dst, err = NewCounter(meter, c.name, c.desc, c.unit); err != nil {
			return nil, err
		}
	}

	m.percentInSync, err = NewFloatGauge(meter,
		"reconciliation.percent_in_sync",
		"Share of purchase orders whose settlement invoice matches, from the last audit",
		"%",
	)
	if err != nil {
		return nil, err
	}

	m.extractionSeconds, err = NewHistogram(meter, HistogramOpts{
		Name:        "intake.extraction_duration_seconds",
		Description: "Time spent extracting purchase order fields from a document",
		Unit:        "s",
		Boundaries:  ExtractionDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordJobPriced counts a priced job
func (m *SupplyChainMetrics) RecordJobPriced(ctx context.Context, mode string, requiresApproval bool) {
	m.jobsPriced.Inc(ctx,
		AttrAllocationMode.String(mode),
		attribute.Bool("requires_approval", requiresApproval),
	)
}

// RecordPurchaseOrderCreated counts a new purchase order by origin ("cascade" or an intake source)
func (m *SupplyChainMetrics) RecordPurchaseOrderCreated(ctx context.Context, source string) {
	m.purchaseOrders.Inc(ctx, AttrSource.String(source))
}

// RecordInvoiceIssued counts an issued invoice by kind
func (m *SupplyChainMetrics) RecordInvoiceIssued(ctx context.Context, kind string) {
	m.invoicesIssued.Inc(ctx, AttrInvoiceKind.String(kind))
}

// RecordAudit publishes the outcome of one audit
func (m *SupplyChainMetrics) RecordAudit(ctx context.Context, trigger string, percentInSync float64, outOfSync int) {
	attrs := []attribute.KeyValue{AttrTrigger.String(trigger)}
	m.auditRuns.Inc(ctx, attrs...)
	m.percentInSync.Record(ctx, percentInSync)
	if outOfSync > 0 {
		m.mismatches.Add(ctx, int64(outOfSync), attrs...)
	}
}

// RecordRepair counts one applied correction
func (m *SupplyChainMetrics) RecordRepair(ctx context.Context, trigger string) {
	m.repairs.Inc(ctx, AttrTrigger.String(trigger))
}

// RecordInboundEvent counts an inbound event reaching a resting state
func (m *SupplyChainMetrics) RecordInboundEvent(ctx context.Context, source, channel, state string) {
	m.inboundEvents.Inc(ctx,
		AttrSource.String(source),
		AttrChannel.String(channel),
		AttrState.String(state),
	)
}

// RecordExtraction records one extractor call, retries included
func (m *SupplyChainMetrics) RecordExtraction(ctx context.Context, d time.Duration, outcome string) {
	m.extractionSeconds.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}
