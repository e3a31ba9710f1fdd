// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the back office.
// It tracks lead intake, payout activity, and postback delivery health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	leadCreatedTotal *Counter
	leadRevenueTotal *Counter
	payoutTotal      *Counter

	// Gauge metrics (point-in-time values)
	postbackPendingDeliveries *Gauge
	postbackDeadDeliveries    *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	deliveryProvider DeliveryMetricsProvider
}

// DeliveryMetricsProvider provides postback delivery data for periodic metrics
// collection. This interface allows the telemetry layer to query delivery state
// without depending on the postback domain directly.
type DeliveryMetricsProvider interface {
	// GetPendingCountByConfig returns the number of undelivered postbacks per config for a tenant
	GetPendingCountByConfig(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int64, error)

	// GetDeadCount returns the number of deliveries that exhausted their retries for a tenant
	GetDeadCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter            metric.Meter
	Logger           *zap.Logger
	CollectInterval  time.Duration // Default: 5 minutes
	DeliveryProvider DeliveryMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:            cfg.Meter,
		logger:           logger,
		stopChan:         make(chan struct{}),
		deliveryProvider: cfg.DeliveryProvider,
	}

	// Initialize counter metrics
	var err error

	// Lead metrics
	bm.leadCreatedTotal, err = NewCounter(
		cfg.Meter,
		"backoffice_lead_created_total",
		"Total number of leads captured",
		"{leads}",
	)
	if err != nil {
		return nil, err
	}

	bm.leadRevenueTotal, err = NewCounter(
		cfg.Meter,
		"backoffice_lead_revenue_total",
		"Total lead revenue in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	// Payout metrics
	bm.payoutTotal, err = NewCounter(
		cfg.Meter,
		"backoffice_payout_total",
		"Total number of withdrawal payout attempts",
		"{payouts}",
	)
	if err != nil {
		return nil, err
	}

	// Postback delivery gauge metrics
	bm.postbackPendingDeliveries, err = NewGauge(
		cfg.Meter,
		"backoffice_postback_pending_deliveries",
		"Current number of undelivered postbacks",
		"{deliveries}",
	)
	if err != nil {
		return nil, err
	}

	bm.postbackDeadDeliveries, err = NewGauge(
		cfg.Meter,
		"backoffice_postback_dead_deliveries",
		"Number of postback deliveries that exhausted their retries",
		"{deliveries}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Lead Metrics
// =============================================================================

// RecordLeadCreated records a lead capture event.
// This should be called from the application layer when a lead is created.
func (bm *BusinessMetrics) RecordLeadCreated(ctx context.Context, tenantID uuid.UUID, source string) {
	bm.leadCreatedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrLeadSource.String(source),
	)
}

// RecordLeadRevenue records the lead total amount.
// Amount should be in the smallest currency unit (cents).
func (bm *BusinessMetrics) RecordLeadRevenue(ctx context.Context, tenantID uuid.UUID, source string, amountCents int64) {
	bm.leadRevenueTotal.Add(ctx, amountCents,
		AttrTenantID.String(tenantID.String()),
		AttrLeadSource.String(source),
	)
}

// RecordLeadWithRevenue is a convenience method that records both lead count and revenue.
func (bm *BusinessMetrics) RecordLeadWithRevenue(ctx context.Context, tenantID uuid.UUID, source string, total decimal.Decimal) {
	bm.RecordLeadCreated(ctx, tenantID, source)

	// Convert to cents (multiply by 100)
	amountCents := total.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordLeadRevenue(ctx, tenantID, source, amountCents)
}

// =============================================================================
// Payout Metrics
// =============================================================================

// PayoutStatus represents the outcome of a payout attempt for metrics labeling.
type PayoutStatus string

const (
	PayoutStatusSuccess PayoutStatus = "success"
	PayoutStatusFailed  PayoutStatus = "failed"
)

// RecordPayout records a withdrawal payout attempt.
// This should be called when a gateway transfer completes or fails.
func (bm *BusinessMetrics) RecordPayout(ctx context.Context, tenantID uuid.UUID, method string, status PayoutStatus) {
	bm.payoutTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPayoutMethod.String(method),
		AttrPayoutStatus.String(string(status)),
	)
}

// =============================================================================
// Postback Delivery Metrics
// =============================================================================

// RecordPendingDeliveries records the current undelivered postback count for a config.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordPendingDeliveries(ctx context.Context, tenantID, configID uuid.UUID, count int64) {
	bm.postbackPendingDeliveries.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
		AttrPostbackConfigID.String(configID.String()),
	)
}

// RecordDeadDeliveries records the number of deliveries that exhausted their retries.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordDeadDeliveries(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.postbackDeadDeliveries.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects delivery metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectDeliveryMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectDeliveryMetrics(ctx, tenantProvider)
		}
	}
}

// collectDeliveryMetrics collects postback delivery gauge metrics for all tenants.
func (bm *BusinessMetrics) collectDeliveryMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.deliveryProvider == nil {
		bm.logger.Debug("No delivery provider configured, skipping delivery metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantDeliveryMetrics(ctx, tenantID)
	}
}

// collectTenantDeliveryMetrics collects delivery metrics for a single tenant.
func (bm *BusinessMetrics) collectTenantDeliveryMetrics(ctx context.Context, tenantID uuid.UUID) {
	// Collect pending deliveries by config
	pendingByConfig, err := bm.deliveryProvider.GetPendingCountByConfig(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get pending delivery count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		for configID, count := range pendingByConfig {
			bm.RecordPendingDeliveries(ctx, tenantID, configID, count)
		}
	}

	// Collect dead delivery count
	deadCount, err := bm.deliveryProvider.GetDeadCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get dead delivery count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordDeadDeliveries(ctx, tenantID, deadCount)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Business metrics attribute keys not already defined in metrics.go
var (
	AttrPayoutStatus     = attribute.Key("payout_status")
	AttrPostbackConfigID = attribute.Key("postback_config_id")
)
