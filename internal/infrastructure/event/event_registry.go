package event

import (
	"github.com/printchain/backend/internal/domain/billing"
	"github.com/printchain/backend/internal/domain/job"
	"github.com/printchain/backend/internal/domain/trade"
)

// RegisterAllEvents registers every event the domain raises so the outbox
// processor can rebuild them from stored payloads.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(job.EventTypeJobPriced, &job.JobPricedEvent{})
	serializer.Register(job.EventTypeJobApproved, &job.JobApprovedEvent{})
	serializer.Register(trade.EventTypePurchaseOrderIssued, &trade.PurchaseOrderIssuedEvent{})
	serializer.Register(billing.EventTypeInvoiceIssued, &billing.InvoiceIssuedEvent{})
}

// NewDefaultSerializer returns a serializer with all domain events registered
func NewDefaultSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterAllEvents(s)
	return s
}
