package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for invoices.
// CustomerJobID is only set on customer invoices; its unique index allows one
// customer invoice per job. PurchaseOrderID is unique for settlement invoices.
type InvoiceModel struct {
	AggregateModel
	InvoiceNo       string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	Kind            billing.Kind    `gorm:"type:varchar(20);not null"`
	FromCompanyID   uuid.UUID       `gorm:"type:uuid;not null"`
	ToCompanyID     uuid.UUID       `gorm:"type:uuid;not null"`
	JobID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerJobID   *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	PurchaseOrderID *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Status          billing.Status  `gorm:"type:varchar(20);not null;default:ISSUED"`
	IssuedAt        time.Time       `gorm:"not null"`
	PaidAt          *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the model to an invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseAggregateRoot: m.AggregateModel.ToAggregateRoot(),
		InvoiceNo:         m.InvoiceNo,
		Kind:              m.Kind,
		FromCompanyID:     m.FromCompanyID,
		ToCompanyID:       m.ToCompanyID,
		JobID:             m.JobID,
		PurchaseOrderID:   m.PurchaseOrderID,
		Amount:            m.Amount,
		Status:            m.Status,
		IssuedAt:          m.IssuedAt,
		PaidAt:            m.PaidAt,
	}
}

// InvoiceModelFromDomain builds a model from an invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNo:       inv.InvoiceNo,
		Kind:            inv.Kind,
		FromCompanyID:   inv.FromCompanyID,
		ToCompanyID:     inv.ToCompanyID,
		JobID:           inv.JobID,
		PurchaseOrderID: inv.PurchaseOrderID,
		Amount:          inv.Amount,
		Status:          inv.Status,
		IssuedAt:        inv.IssuedAt,
		PaidAt:          inv.PaidAt,
	}
	if inv.Kind == billing.KindCustomer {
		jobID := inv.JobID
		m.CustomerJobID = &jobID
	}
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	return m
}
