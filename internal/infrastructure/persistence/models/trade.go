package models

import (
	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for purchase orders. The party
// triple is unique per job and the external reference is unique when set;
// rows without a job never collide on the triple because NULLs are distinct.
type PurchaseOrderModel struct {
	AggregateModel
	PONumber        string                    `gorm:"type:varchar(100);not null;index"`
	JobID           *uuid.UUID                `gorm:"type:uuid;uniqueIndex:idx_po_parties,priority:1"`
	OriginCompanyID uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_po_parties,priority:2"`
	TargetCompanyID uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_po_parties,priority:3"`
	Leg             trade.Leg                 `gorm:"type:varchar(40);not null"`
	Source          trade.Source              `gorm:"type:varchar(20);not null"`
	OriginalAmount  decimal.Decimal           `gorm:"type:decimal(20,8);not null"`
	VendorAmount    decimal.Decimal           `gorm:"type:decimal(20,8);not null"`
	MarginAmount    decimal.Decimal           `gorm:"type:decimal(20,8);not null"`
	ExternalRef     *string                   `gorm:"type:varchar(200);uniqueIndex"`
	Status          trade.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:ISSUED"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the model to a purchase order
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	return &trade.PurchaseOrder{
		BaseAggregateRoot: m.AggregateModel.ToAggregateRoot(),
		PONumber:          m.PONumber,
		JobID:             m.JobID,
		Leg:               m.Leg,
		Source:            m.Source,
		OriginCompanyID:   m.OriginCompanyID,
		TargetCompanyID:   m.TargetCompanyID,
		OriginalAmount:    m.OriginalAmount,
		VendorAmount:      m.VendorAmount,
		MarginAmount:      m.MarginAmount,
		ExternalRef:       m.ExternalRef,
		Status:            m.Status,
	}
}

// PurchaseOrderModelFromDomain builds a model from a purchase order
func PurchaseOrderModelFromDomain(po *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		PONumber:        po.PONumber,
		JobID:           po.JobID,
		OriginCompanyID: po.OriginCompanyID,
		TargetCompanyID: po.TargetCompanyID,
		Leg:             po.Leg,
		Source:          po.Source,
		OriginalAmount:  po.OriginalAmount,
		VendorAmount:    po.VendorAmount,
		MarginAmount:    po.MarginAmount,
		ExternalRef:     po.ExternalRef,
		Status:          po.Status,
	}
	m.FromDomainAggregateRoot(po.BaseAggregateRoot)
	return m
}
