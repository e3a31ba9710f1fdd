package models

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadModel is the persistence model for the Lead aggregate root.
type LeadModel struct {
	TenantAggregateModel
	Number        string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_lead_tenant_number,priority:2"`
	ExternalID    string                 `gorm:"type:varchar(100);index:idx_lead_tenant_external,priority:2"`
	ProductID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	ProductSKU    string                 `gorm:"type:varchar(50);not null"`
	ProductName   string                 `gorm:"type:varchar(200);not null"`
	Quantity      int                    `gorm:"not null;default:1"`
	UnitPrice     decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Total         decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Payout        decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	CustomerName  string                 `gorm:"type:varchar(200);not null"`
	CustomerPhone string                 `gorm:"type:varchar(20);not null"`
	Country       string                 `gorm:"type:varchar(2);not null;index"`
	City          string                 `gorm:"type:varchar(100)"`
	Address       string                 `gorm:"type:varchar(500)"`
	Comment       string                 `gorm:"type:text"`
	Source        trade.LeadSource       `gorm:"type:varchar(20);not null;default:'WEB'"`
	Sub1          string                 `gorm:"type:varchar(100)"`
	Sub2          string                 `gorm:"type:varchar(100)"`
	Sub3          string                 `gorm:"type:varchar(100)"`
	Sub4          string                 `gorm:"type:varchar(100)"`
	Sub5          string                 `gorm:"type:varchar(100)"`
	Status        trade.LeadStatus       `gorm:"type:varchar(20);not null;default:'NEW';index"`
	StatusHistory []LeadStatusChangeModel `gorm:"foreignKey:LeadID;references:ID"`
	PaidAt        *time.Time              `gorm:"index"`
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the persistence model to a domain Lead entity.
func (m *LeadModel) ToDomain() *trade.Lead {
	lead := &trade.Lead{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Number:        m.Number,
		ExternalID:    m.ExternalID,
		ProductID:     m.ProductID,
		ProductSKU:    m.ProductSKU,
		ProductName:   m.ProductName,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		Total:         m.Total,
		Payout:        m.Payout,
		CustomerName:  m.CustomerName,
		CustomerPhone: m.CustomerPhone,
		Country:       m.Country,
		City:          m.City,
		Address:       m.Address,
		Comment:       m.Comment,
		Source:        m.Source,
		Subs: trade.SubIDs{
			Sub1: m.Sub1,
			Sub2: m.Sub2,
			Sub3: m.Sub3,
			Sub4: m.Sub4,
			Sub5: m.Sub5,
		},
		Status:        m.Status,
		PaidAt:        m.PaidAt,
		StatusHistory: make([]trade.StatusChange, len(m.StatusHistory)),
	}
	for i, change := range m.StatusHistory {
		lead.StatusHistory[i] = *change.ToDomain()
	}
	return lead
}

// FromDomain populates the persistence model from a domain Lead entity.
func (m *LeadModel) FromDomain(l *trade.Lead) {
	m.FromDomainTenantAggregateRoot(l.TenantAggregateRoot)
	m.Number = l.Number
	m.ExternalID = l.ExternalID
	m.ProductID = l.ProductID
	m.ProductSKU = l.ProductSKU
	m.ProductName = l.ProductName
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.Total = l.Total
	m.Payout = l.Payout
	m.CustomerName = l.CustomerName
	m.CustomerPhone = l.CustomerPhone
	m.Country = l.Country
	m.City = l.City
	m.Address = l.Address
	m.Comment = l.Comment
	m.Source = l.Source
	m.Sub1 = l.Subs.Sub1
	m.Sub2 = l.Subs.Sub2
	m.Sub3 = l.Subs.Sub3
	m.Sub4 = l.Subs.Sub4
	m.Sub5 = l.Subs.Sub5
	m.Status = l.Status
	m.PaidAt = l.PaidAt
	m.StatusHistory = make([]LeadStatusChangeModel, len(l.StatusHistory))
	for i, change := range l.StatusHistory {
		m.StatusHistory[i] = *LeadStatusChangeModelFromDomain(&change)
	}
}

// LeadModelFromDomain creates a new persistence model from a domain Lead entity.
func LeadModelFromDomain(l *trade.Lead) *LeadModel {
	m := &LeadModel{}
	m.FromDomain(l)
	return m
}

// LeadStatusChangeModel is the persistence model for the StatusChange entity.
type LeadStatusChangeModel struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key"`
	LeadID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	FromStatus trade.LeadStatus `gorm:"type:varchar(20);not null"`
	ToStatus   trade.LeadStatus `gorm:"type:varchar(20);not null"`
	Reason     string           `gorm:"type:varchar(500)"`
	ChangedBy  *uuid.UUID       `gorm:"type:uuid"`
	ChangedAt  time.Time        `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (LeadStatusChangeModel) TableName() string {
	return "lead_status_changes"
}

// ToDomain converts the persistence model to a domain StatusChange entity.
func (m *LeadStatusChangeModel) ToDomain() *trade.StatusChange {
	return &trade.StatusChange{
		ID:         m.ID,
		LeadID:     m.LeadID,
		FromStatus: m.FromStatus,
		ToStatus:   m.ToStatus,
		Reason:     m.Reason,
		ChangedBy:  m.ChangedBy,
		ChangedAt:  m.ChangedAt,
	}
}

// FromDomain populates the persistence model from a domain StatusChange entity.
func (m *LeadStatusChangeModel) FromDomain(c *trade.StatusChange) {
	m.ID = c.ID
	m.LeadID = c.LeadID
	m.FromStatus = c.FromStatus
	m.ToStatus = c.ToStatus
	m.Reason = c.Reason
	m.ChangedBy = c.ChangedBy
	m.ChangedAt = c.ChangedAt
}

// LeadStatusChangeModelFromDomain creates a new persistence model from a domain StatusChange entity.
func LeadStatusChangeModelFromDomain(c *trade.StatusChange) *LeadStatusChangeModel {
	m := &LeadStatusChangeModel{}
	m.FromDomain(c)
	return m
}
