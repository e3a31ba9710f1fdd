package postback

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConfigRepository defines the persistence interface for postback configs
type ConfigRepository interface {
	// FindByID finds a config by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Config, error)

	// FindByIDForTenant finds a config by ID within a tenant
	FindByIDForTenant(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Config, error)

	// FindByUser returns all configs owned by a user, newest first
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]*Config, error)

	// FindEnabledByUser returns the enabled configs owned by a user.
	// Status filtering happens in memory via MatchesStatus.
	FindEnabledByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]*Config, error)

	// Save creates or updates a config
	Save(ctx context.Context, config *Config) error

	// SaveWithLock updates a config with optimistic locking
	SaveWithLock(ctx context.Context, config *Config) error

	// DeleteForTenant removes a config within a tenant
	DeleteForTenant(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	// CountByUser counts a user's configs
	CountByUser(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)
}

// DeliveryFilter defines filtering options for delivery queries
type DeliveryFilter struct {
	ConfigID *uuid.UUID
	LeadID   *uuid.UUID
	Status   *DeliveryStatus
	Page     int
	PageSize int
}

// Offset returns the pagination offset
func (f DeliveryFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the page size, capped at 100
func (f DeliveryFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// DeliveryRepository defines the persistence interface for postback
// deliveries. The dispatcher drains it the same way the outbox relay
// drains outbox entries.
type DeliveryRepository interface {
	// Save persists one or more deliveries
	Save(ctx context.Context, deliveries ...*Delivery) error

	// Update persists changes to an existing delivery
	Update(ctx context.Context, delivery *Delivery) error

	// FindByID finds a delivery by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Delivery, error)

	// FindByIDForTenant finds a delivery by ID within a tenant
	FindByIDForTenant(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Delivery, error)

	// FindPending returns PENDING deliveries ready to dispatch, oldest first
	FindPending(ctx context.Context, limit int) ([]*Delivery, error)

	// FindRetryable returns FAILED deliveries whose backoff has elapsed
	FindRetryable(ctx context.Context, limit int) ([]*Delivery, error)

	// FindDead returns DEAD deliveries for a tenant, for inspection and re-queueing
	FindDead(ctx context.Context, tenantID uuid.UUID, limit int) ([]*Delivery, error)

	// MarkProcessing claims a batch of deliveries for dispatch
	MarkProcessing(ctx context.Context, ids []uuid.UUID) error

	// List returns deliveries for a tenant matching the filter, with total count
	List(ctx context.Context, tenantID uuid.UUID, filter DeliveryFilter) ([]*Delivery, int64, error)

	// ExistsForEvent reports whether a delivery was already enqueued for
	// a config/event pair. Database-side backstop behind the Redis
	// idempotency check.
	ExistsForEvent(ctx context.Context, configID, eventID uuid.UUID) (bool, error)

	// CountByStatus returns delivery counts grouped by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[DeliveryStatus]int64, error)

	// DeleteOlderThan removes SENT and DEAD deliveries created before
	// the given time. Returns the number of deleted rows.
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
