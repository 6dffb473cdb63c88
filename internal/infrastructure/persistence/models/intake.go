package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/intake"
)

// InboundEventModel stores a webhook delivery and where it got to
type InboundEventModel struct {
	AggregateModel
	Source       string              `gorm:"type:varchar(100);not null;index"`
	Channel      intake.Channel      `gorm:"type:varchar(20);not null"`
	Sender       string              `gorm:"type:varchar(320)"`
	Subject      string              `gorm:"type:varchar(500)"`
	Body         string              `gorm:"type:text"`
	State        intake.State        `gorm:"type:varchar(20);not null;index"`
	RejectReason intake.RejectReason `gorm:"type:varchar(40)"`
	CustomerCode string              `gorm:"type:varchar(50)"`
	DedupKey     string              `gorm:"type:varchar(300);index"`

	AttachmentName        string `gorm:"type:varchar(255)"`
	AttachmentContentType string `gorm:"type:varchar(100)"`
	AttachmentContent     []byte
	AttachmentKey         string `gorm:"type:varchar(500)"`

	StructuredPayload []byte `gorm:"type:text"`
	ExtractedPayload  []byte `gorm:"type:text"`

	PurchaseOrderID *uuid.UUID `gorm:"type:uuid"`
	Attempts        int        `gorm:"not null;default:0"`
	LastError       string     `gorm:"type:text"`
	ReceivedAt      time.Time  `gorm:"not null"`
	ProcessedAt     *time.Time
}

// TableName returns the table name for GORM
func (InboundEventModel) TableName() string {
	return "inbound_events"
}

// ToDomain converts the model to an inbound event
func (m *InboundEventModel) ToDomain() (*intake.InboundEvent, error) {
	e := &intake.InboundEvent{
		BaseAggregateRoot: m.AggregateModel.ToAggregateRoot(),
		Source:            m.Source,
		Channel:           m.Channel,
		Sender:            m.Sender,
		Subject:           m.Subject,
		Body:              m.Body,
		State:             m.State,
		RejectReason:      m.RejectReason,
		CustomerCode:      m.CustomerCode,
		DedupKey:          m.DedupKey,
		PurchaseOrderID:   m.PurchaseOrderID,
		Attempts:          m.Attempts,
		LastError:         m.LastError,
		ReceivedAt:        m.ReceivedAt,
		ProcessedAt:       m.ProcessedAt,
	}
	if m.AttachmentName != "" || len(m.AttachmentContent) > 0 {
		e.Attachment = &intake.Attachment{
			Filename:    m.AttachmentName,
			ContentType: m.AttachmentContentType,
			Content:     m.AttachmentContent,
			StorageKey:  m.AttachmentKey,
		}
	}
	var err error
	if e.Structured, err = decodePO(m.StructuredPayload); err != nil {
		return nil, err
	}
	if e.Extracted, err = decodePO(m.ExtractedPayload); err != nil {
		return nil, err
	}
	return e, nil
}

// InboundEventModelFromDomain builds a model from an inbound event
func InboundEventModelFromDomain(e *intake.InboundEvent) (*InboundEventModel, error) {
	m := &InboundEventModel{
		Source:          e.Source,
		Channel:         e.Channel,
		Sender:          e.Sender,
		Subject:         e.Subject,
		Body:            e.Body,
		State:           e.State,
		RejectReason:    e.RejectReason,
		CustomerCode:    e.CustomerCode,
		DedupKey:        e.DedupKey,
		PurchaseOrderID: e.PurchaseOrderID,
		Attempts:        e.Attempts,
		LastError:       e.LastError,
		ReceivedAt:      e.ReceivedAt,
		ProcessedAt:     e.ProcessedAt,
	}
	if a := e.Attachment; a != nil {
		m.AttachmentName = a.Filename
		m.AttachmentContentType = a.ContentType
		m.AttachmentContent = a.Content
		m.AttachmentKey = a.StorageKey
	}
	var err error
	if m.StructuredPayload, err = encodePO(e.Structured); err != nil {
		return nil, err
	}
	if m.ExtractedPayload, err = encodePO(e.Extracted); err != nil {
		return nil, err
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	return m, nil
}

func encodePO(po *intake.ExtractedPO) ([]byte, error) {
	if po == nil {
		return nil, nil
	}
	return json.Marshal(po)
}

func decodePO(data []byte) (*intake.ExtractedPO, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var po intake.ExtractedPO
	if err := json.Unmarshal(data, &po); err != nil {
		return nil, err
	}
	return &po, nil
}
