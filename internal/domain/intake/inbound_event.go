package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// Channel is how an inbound purchase order arrived
type Channel string

const (
	ChannelEmail      Channel = "EMAIL"
	ChannelStructured Channel = "STRUCTURED"
)

// Attachment is the document consumed from an inbound email
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
	// StorageKey is set once the document is archived for review
	StorageKey string
}

// IsPDF reports whether the attachment looks like a PDF
func (a Attachment) IsPDF() bool {
	return strings.EqualFold(a.ContentType, "application/pdf") ||
		strings.HasSuffix(strings.ToLower(a.Filename), ".pdf")
}

// ExtractedPO is what parsing yields, from a document or a structured payload
type ExtractedPO struct {
	CustomerCode string          `json:"customer_code"`
	PONumber     string          `json:"po_number"`
	Amount       decimal.Decimal `json:"amount"`
	CustomerID   string          `json:"customer_id,omitempty"`
	JobNo        string          `json:"job_no,omitempty"`
	ComponentID  string          `json:"component_id,omitempty"`
}

// Validate checks the fields that do not need a lookup
func (e ExtractedPO) Validate() error {
	if !e.Amount.IsPositive() {
		return ErrParseValidationFailed.WithMessage(fmt.Sprintf("amount must be greater than zero, got %s", e.Amount.String()))
	}
	if strings.TrimSpace(e.CustomerCode) == "" && strings.TrimSpace(e.CustomerID) == "" {
		return ErrParseValidationFailed.WithMessage("customer code or customer id is required")
	}
	return nil
}

// DedupKey builds {intermediary}-{customerCode}-{poNumber||timestamp}
func DedupKey(intermediaryCode, customerCode, poNumber string, receivedAt time.Time) string {
	ref := strings.TrimSpace(poNumber)
	if ref == "" {
		ref = fmt.Sprintf("%d", receivedAt.Unix())
	}
	return fmt.Sprintf("%s-%s-%s",
		strings.ToUpper(strings.TrimSpace(intermediaryCode)),
		strings.ToUpper(strings.TrimSpace(customerCode)),
		ref)
}

// InboundEvent tracks one webhook delivery through the pipeline. It is retained
// whatever the outcome.
type InboundEvent struct {
	shared.BaseAggregateRoot
	Source          string
	Channel         Channel
	Sender          string
	Subject         string
	Body            string
	Attachment      *Attachment
	Structured      *ExtractedPO
	State           State
	RejectReason    RejectReason
	CustomerCode    string
	Extracted       *ExtractedPO
	DedupKey        string
	PurchaseOrderID *uuid.UUID
	Attempts        int
	LastError       string
	ReceivedAt      time.Time
	ProcessedAt     *time.Time
}

// NewEmailEvent records an inbound email. Only the first PDF attachment is kept.
func NewEmailEvent(source, from, subject, body string, attachments []Attachment) *InboundEvent {
	e := newEvent(source, ChannelEmail)
	e.Sender = from
	e.Subject = subject
	e.Body = body
	for _, a := range attachments {
		if a.IsPDF() {
			att := a
			e.Attachment = &att
			break
		}
	}
	return e
}

// NewStructuredEvent records a structured payload posted by a source system.
// authenticatedAs is the source identity established by the transport.
func NewStructuredEvent(source, authenticatedAs string, payload ExtractedPO) *InboundEvent {
	e := newEvent(source, ChannelStructured)
	e.Sender = authenticatedAs
	e.Subject = payload.CustomerCode
	p := payload
	e.Structured = &p
	return e
}

func newEvent(source string, channel Channel) *InboundEvent {
	now := time.Now()
	return &InboundEvent{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Source:            source,
		Channel:           channel,
		State:             StateReceived,
		ReceivedAt:        now,
	}
}

func (e *InboundEvent) moveTo(target State) error {
	if !e.State.CanTransitionTo(target) {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("inbound event cannot move from %s to %s", e.State, target))
	}
	e.State = target
	e.Touch(time.Now())
	if target.IsTerminal() {
		now := e.UpdatedAt
		e.ProcessedAt = &now
	}
	return nil
}

// Validated records a passed sender and subject check
func (e *InboundEvent) Validated(customerCode string) error {
	if err := e.moveTo(StateValidated); err != nil {
		return err
	}
	e.CustomerCode = customerCode
	return nil
}

// Reject ends the event without creating anything
func (e *InboundEvent) Reject(reason RejectReason) error {
	if err := e.moveTo(StateRejected); err != nil {
		return err
	}
	e.RejectReason = reason
	return nil
}

// Parsed records a validated extraction
func (e *InboundEvent) Parsed(po ExtractedPO) error {
	if err := e.moveTo(StateParsed); err != nil {
		return err
	}
	e.Extracted = &po
	e.LastError = ""
	return nil
}

// NeedsReview parks the event for a person to look at
func (e *InboundEvent) NeedsReview(extracted *ExtractedPO, cause error) error {
	if err := e.moveTo(StateNeedsReview); err != nil {
		return err
	}
	e.Extracted = extracted
	if cause != nil {
		e.LastError = cause.Error()
	}
	return nil
}

// Fail parks the event after extraction retries were exhausted
func (e *InboundEvent) Fail(cause error) error {
	if err := e.moveTo(StateFailed); err != nil {
		return err
	}
	if cause != nil {
		e.LastError = cause.Error()
	}
	return nil
}

// DedupChecked records the computed deduplication key
func (e *InboundEvent) DedupChecked(key string) error {
	if err := e.moveTo(StateDedupChecked); err != nil {
		return err
	}
	e.DedupKey = key
	return nil
}

// Complete links the event to the purchase order it produced or matched
func (e *InboundEvent) Complete(poID uuid.UUID, created bool) error {
	target := StateDuplicate
	if created {
		target = StateCreated
	}
	if err := e.moveTo(target); err != nil {
		return err
	}
	e.PurchaseOrderID = &poID
	return nil
}

// Restart sends a parked event back through the pipeline
func (e *InboundEvent) Restart() error {
	if err := e.moveTo(StateReceived); err != nil {
		return err
	}
	e.ProcessedAt = nil
	e.RejectReason = ""
	e.Extracted = nil
	e.DedupKey = ""
	return nil
}

// RecordAttempt counts an extraction attempt
func (e *InboundEvent) RecordAttempt(err error) {
	e.Attempts++
	if err != nil {
		e.LastError = err.Error()
	}
}

// InboundEventFilter narrows List
type InboundEventFilter struct {
	States   []State
	Source   string
	Page     int
	PageSize int
}

// InboundEventRepository persists inbound events
type InboundEventRepository interface {
	Create(ctx context.Context, e *InboundEvent) error
	// Save updates the event with an optimistic version check
	Save(ctx context.Context, e *InboundEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*InboundEvent, error)
	List(ctx context.Context, filter InboundEventFilter) ([]InboundEvent, int64, error)
	// FindStalled returns non-terminal events last touched before the given time
	FindStalled(ctx context.Context, before time.Time, limit int) ([]InboundEvent, error)
	// CompleteWithPurchaseOrder inserts po unless one with the same external
	// reference or party triple exists, then marks e CREATED or DUPLICATE,
	// all in one transaction.
	CompleteWithPurchaseOrder(ctx context.Context, e *InboundEvent, po *trade.PurchaseOrder) (stored *trade.PurchaseOrder, created bool, err error)
}

// Document is what the extractor reads
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Extractor turns a purchase order document into fields. It is an external
// collaborator and may be slow or fail transiently.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (*ExtractedPO, error)
}
