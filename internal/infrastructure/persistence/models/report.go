package models

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadDailySnapshotModel is the persistence model for the LeadDailySnapshot read model.
// The nightly job upserts on (tenant_id, date).
type LeadDailySnapshotModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_lead_snapshot_tenant_date,priority:1"`
	Date        time.Time       `gorm:"type:date;not null;uniqueIndex:idx_lead_snapshot_tenant_date,priority:2"`
	Total       int64           `gorm:"not null;default:0"`
	New         int64           `gorm:"column:new_count;not null;default:0"`
	Callback    int64           `gorm:"not null;default:0"`
	Confirmed   int64           `gorm:"not null;default:0"`
	Shipped     int64           `gorm:"not null;default:0"`
	Delivered   int64           `gorm:"not null;default:0"`
	Paid        int64           `gorm:"not null;default:0"`
	Cancelled   int64           `gorm:"not null;default:0"`
	Returned    int64           `gorm:"not null;default:0"`
	Trash       int64           `gorm:"not null;default:0"`
	Approved    int64           `gorm:"not null;default:0"`
	ApproveRate float64         `gorm:"not null;default:0"`
	Revenue     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PayoutPaid  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ComputedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LeadDailySnapshotModel) TableName() string {
	return "lead_daily_snapshots"
}

// ToDomain converts the persistence model to a domain LeadDailySnapshot entity.
func (m *LeadDailySnapshotModel) ToDomain() *report.LeadDailySnapshot {
	return &report.LeadDailySnapshot{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Date:        report.NormalizeDay(m.Date),
		Total:       m.Total,
		New:         m.New,
		Callback:    m.Callback,
		Confirmed:   m.Confirmed,
		Shipped:     m.Shipped,
		Delivered:   m.Delivered,
		Paid:        m.Paid,
		Cancelled:   m.Cancelled,
		Returned:    m.Returned,
		Trash:       m.Trash,
		Approved:    m.Approved,
		ApproveRate: m.ApproveRate,
		Revenue:     m.Revenue,
		PayoutPaid:  m.PayoutPaid,
		ComputedAt:  m.ComputedAt,
	}
}

// FromDomain populates the persistence model from a domain LeadDailySnapshot entity.
func (m *LeadDailySnapshotModel) FromDomain(s *report.LeadDailySnapshot) {
	m.ID = s.ID
	m.TenantID = s.TenantID
	m.Date = s.Date
	m.Total = s.Total
	m.New = s.New
	m.Callback = s.Callback
	m.Confirmed = s.Confirmed
	m.Shipped = s.Shipped
	m.Delivered = s.Delivered
	m.Paid = s.Paid
	m.Cancelled = s.Cancelled
	m.Returned = s.Returned
	m.Trash = s.Trash
	m.Approved = s.Approved
	m.ApproveRate = s.ApproveRate
	m.Revenue = s.Revenue
	m.PayoutPaid = s.PayoutPaid
	m.ComputedAt = s.ComputedAt
}

// LeadDailySnapshotModelFromDomain creates a new persistence model from a domain LeadDailySnapshot entity.
func LeadDailySnapshotModelFromDomain(s *report.LeadDailySnapshot) *LeadDailySnapshotModel {
	m := &LeadDailySnapshotModel{}
	m.FromDomain(s)
	return m
}
