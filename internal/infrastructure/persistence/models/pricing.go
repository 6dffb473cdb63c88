package models

import (
	"github.com/printchain/backend/internal/domain/partner"
	"github.com/printchain/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// RateCardEntryModel is one row of the rate card
type RateCardEntryModel struct {
	BaseModel
	SizeKey                 string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ManufacturerCPM         decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	PaperCostCPM            decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	PaperChargedCPM         decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	PaperWeightPer1000      decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	IntermediaryInvoicePerM decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	BrokerInvoicePerM       decimal.Decimal `gorm:"type:decimal(20,8);not null"`
}

// TableName returns the table name for GORM
func (RateCardEntryModel) TableName() string {
	return "rate_cards"
}

// ToDomain converts the model to a rate card entry
func (m *RateCardEntryModel) ToDomain() *pricing.RateCardEntry {
	return &pricing.RateCardEntry{
		BaseEntity:              m.BaseModel.ToDomain(),
		SizeKey:                 m.SizeKey,
		ManufacturerCPM:         m.ManufacturerCPM,
		PaperCostCPM:            m.PaperCostCPM,
		PaperChargedCPM:         m.PaperChargedCPM,
		PaperWeightPer1000:      m.PaperWeightPer1000,
		IntermediaryInvoicePerM: m.IntermediaryInvoicePerM,
		BrokerInvoicePerM:       m.BrokerInvoicePerM,
	}
}

// RateCardEntryModelFromDomain builds a model from a rate card entry
func RateCardEntryModelFromDomain(e *pricing.RateCardEntry) *RateCardEntryModel {
	m := &RateCardEntryModel{
		SizeKey:                 e.SizeKey,
		ManufacturerCPM:         e.ManufacturerCPM,
		PaperCostCPM:            e.PaperCostCPM,
		PaperChargedCPM:         e.PaperChargedCPM,
		PaperWeightPer1000:      e.PaperWeightPer1000,
		IntermediaryInvoicePerM: e.IntermediaryInvoicePerM,
		BrokerInvoicePerM:       e.BrokerInvoicePerM,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// CompanyModel is a party in the supply chain
type CompanyModel struct {
	BaseModel
	Name  string       `gorm:"type:varchar(200);not null"`
	Role  partner.Role `gorm:"type:varchar(20);not null;index"`
	Code  string       `gorm:"type:varchar(50);index"`
	Email string       `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the model to a company
func (m *CompanyModel) ToDomain() *partner.Company {
	return &partner.Company{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Role:       m.Role,
		Code:       m.Code,
		Email:      m.Email,
	}
}

// CompanyModelFromDomain builds a model from a company
func CompanyModelFromDomain(c *partner.Company) *CompanyModel {
	m := &CompanyModel{
		Name:  c.Name,
		Role:  c.Role,
		Code:  c.Code,
		Email: c.Email,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
