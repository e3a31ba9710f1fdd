package report

import (
	"context"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadDailySnapshot is a materialized read model holding one closed
// day's lead statistics for a tenant. The nightly job writes it; the
// stats endpoint reads it instead of re-aggregating closed days.
type LeadDailySnapshot struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"-"`
	Date        time.Time       `json:"date"` // Midnight UTC
	Total       int64           `json:"total"`
	New         int64           `json:"new"`
	Callback    int64           `json:"callback"`
	Confirmed   int64           `json:"confirmed"`
	Shipped     int64           `json:"shipped"`
	Delivered   int64           `json:"delivered"`
	Paid        int64           `json:"paid"`
	Cancelled   int64           `json:"cancelled"`
	Returned    int64           `json:"returned"`
	Trash       int64           `json:"trash"`
	Approved    int64           `json:"approved"`
	ApproveRate float64         `json:"approve_rate"`
	Revenue     decimal.Decimal `json:"revenue"`
	PayoutPaid  decimal.Decimal `json:"payout_paid"`
	ComputedAt  time.Time       `json:"computed_at"`
}

// NewLeadDailySnapshot creates a snapshot for one tenant and day.
// The date is normalized to midnight UTC so (tenant, date) stays unique.
func NewLeadDailySnapshot(tenantID uuid.UUID, date time.Time) (*LeadDailySnapshot, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Snapshot date cannot be zero")
	}

	return &LeadDailySnapshot{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Date:       NormalizeDay(date),
		Revenue:    decimal.Zero,
		PayoutPaid: decimal.Zero,
		ComputedAt: time.Now(),
	}, nil
}

// DateKey returns the snapshot's day formatted as YYYY-MM-DD
func (s *LeadDailySnapshot) DateKey() string {
	return s.Date.Format("2006-01-02")
}

// IsClosedDay reports whether the snapshot's day has fully elapsed at
// the given instant, meaning its numbers can no longer change
func (s *LeadDailySnapshot) IsClosedDay(now time.Time) bool {
	return s.Date.Add(24 * time.Hour).Before(now.UTC()) || s.Date.Add(24*time.Hour).Equal(now.UTC())
}

// NormalizeDay truncates a timestamp to midnight UTC
func NormalizeDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// LeadDailySnapshotRepository defines the interface for snapshot persistence
type LeadDailySnapshotRepository interface {
	// Upsert inserts or replaces the snapshot for its (tenant, date) pair
	Upsert(ctx context.Context, snapshot *LeadDailySnapshot) error

	// UpsertBatch upserts several snapshots in one transaction
	UpsertBatch(ctx context.Context, snapshots []*LeadDailySnapshot) error

	// FindByDate returns the snapshot for one day, or nil when absent
	FindByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (*LeadDailySnapshot, error)

	// FindByDateRange returns snapshots within [from, to], ascending by date
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*LeadDailySnapshot, error)

	// DeleteOlderThan removes snapshots for days before the given time.
	// Returns the number of deleted rows.
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
