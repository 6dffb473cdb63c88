package intake

import (
	"time"

	"github.com/google/uuid"
	tradeapp "github.com/printchain/backend/internal/application/trade"
	"github.com/printchain/backend/internal/domain/intake"
	"github.com/shopspring/decimal"
)

// EmailAttachment is a file on an inbound email. Content is base64 in JSON.
type EmailAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

// EmailMessage is an inbound email delivered by the mail provider webhook
type EmailMessage struct {
	Source      string            `json:"source,omitempty"`
	From        string            `json:"from" binding:"required" validate:"required,max=320"`
	Subject     string            `json:"subject" validate:"max=500"`
	Text        string            `json:"text"`
	Attachments []EmailAttachment `json:"attachments"`
}

// StructuredPayload is a purchase order posted by a source system
type StructuredPayload struct {
	ComponentID    string          `json:"componentId"`
	EstimateNumber string          `json:"estimateNumber" validate:"max=100"`
	Amount         decimal.Decimal `json:"amount"`
	JobNo          string          `json:"jobNo,omitempty" validate:"max=50"`
	CustomerCode   string          `json:"customerCode,omitempty" validate:"max=50"`
	CustomerID     string          `json:"customerId,omitempty"`
}

// WebhookResponse is what a webhook caller gets back. Rejections are
// reported here, not as errors.
type WebhookResponse struct {
	EventID       uuid.UUID                       `json:"eventId"`
	State         string                          `json:"state"`
	Reason        string                          `json:"reason,omitempty"`
	PurchaseOrder *tradeapp.PurchaseOrderResponse `json:"purchaseOrder,omitempty"`
}

// InboundEventResponse is the review view of an inbound event
type InboundEventResponse struct {
	ID              uuid.UUID           `json:"id"`
	Source          string              `json:"source"`
	Channel         string              `json:"channel"`
	Sender          string              `json:"sender"`
	Subject         string              `json:"subject"`
	State           string              `json:"state"`
	RejectReason    string              `json:"reject_reason,omitempty"`
	CustomerCode    string              `json:"customer_code,omitempty"`
	Extracted       *intake.ExtractedPO `json:"extracted,omitempty"`
	AttachmentName  string              `json:"attachment_name,omitempty"`
	AttachmentKey   string              `json:"attachment_key,omitempty"`
	DedupKey        string              `json:"dedup_key,omitempty"`
	PurchaseOrderID *uuid.UUID          `json:"purchase_order_id,omitempty"`
	Attempts        int                 `json:"attempts"`
	LastError       string              `json:"last_error,omitempty"`
	ReceivedAt      time.Time           `json:"received_at"`
	ProcessedAt     *time.Time          `json:"processed_at,omitempty"`
}

// InboundEventListFilter narrows ListEvents
type InboundEventListFilter struct {
	State    string `form:"state" validate:"omitempty,oneof=RECEIVED VALIDATED PARSED DEDUP_CHECKED CREATED DUPLICATE REJECTED NEEDS_REVIEW FAILED"`
	Source   string `form:"source" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=200"`
}

// ToInboundEventResponse converts an inbound event
func ToInboundEventResponse(e *intake.InboundEvent) InboundEventResponse {
	resp := InboundEventResponse{
		ID:              e.ID,
		Source:          e.Source,
		Channel:         string(e.Channel),
		Sender:          e.Sender,
		Subject:         e.Subject,
		State:           string(e.State),
		RejectReason:    string(e.RejectReason),
		CustomerCode:    e.CustomerCode,
		Extracted:       e.Extracted,
		DedupKey:        e.DedupKey,
		PurchaseOrderID: e.PurchaseOrderID,
		Attempts:        e.Attempts,
		LastError:       e.LastError,
		ReceivedAt:      e.ReceivedAt,
		ProcessedAt:     e.ProcessedAt,
	}
	if e.Attachment != nil {
		resp.AttachmentName = e.Attachment.Filename
		resp.AttachmentKey = e.Attachment.StorageKey
	}
	return resp
}
