// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeliveryMetricsProvider implements DeliveryMetricsProvider using GORM.
// It queries the postback_deliveries table directly for aggregated metrics.
type GormDeliveryMetricsProvider struct {
	db *gorm.DB
}

// NewGormDeliveryMetricsProvider creates a new GormDeliveryMetricsProvider.
func NewGormDeliveryMetricsProvider(db *gorm.DB) *GormDeliveryMetricsProvider {
	return &GormDeliveryMetricsProvider{db: db}
}

// GetPendingCountByConfig returns the number of undelivered postbacks per config for a tenant.
func (p *GormDeliveryMetricsProvider) GetPendingCountByConfig(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int64, error) {
	type result struct {
		ConfigID uuid.UUID `gorm:"column:config_id"`
		Pending  int64     `gorm:"column:pending"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("postback_deliveries").
		Select("config_id, COUNT(*) as pending").
		Where("tenant_id = ? AND status IN ?", tenantID, []string{"PENDING", "FAILED"}).
		Group("config_id").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]int64, len(results))
	for _, r := range results {
		m[r.ConfigID] = r.Pending
	}

	return m, nil
}

// GetDeadCount returns the number of deliveries that exhausted their retries for a tenant.
func (p *GormDeliveryMetricsProvider) GetDeadCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("postback_deliveries").
		Where("tenant_id = ? AND status = ?", tenantID, "DEAD").
		Count(&count).Error

	return count, err
}

// GormTenantProvider implements TenantProvider using GORM.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns all active tenant IDs.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("tenants").
		Select("id").
		Where("status = ?", "active").
		Find(&ids).Error

	return ids, err
}
