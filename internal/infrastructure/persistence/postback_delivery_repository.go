package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dropship/backoffice/internal/domain/postback"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPostbackDeliveryRepository implements DeliveryRepository using GORM.
// The dispatcher drains it the same way the outbox relay drains outbox
// entries, including the FOR UPDATE SKIP LOCKED claim so several server
// instances can dispatch concurrently without double sends.
type GormPostbackDeliveryRepository struct {
	db *gorm.DB
}

// NewGormPostbackDeliveryRepository creates a new GormPostbackDeliveryRepository
func NewGormPostbackDeliveryRepository(db *gorm.DB) *GormPostbackDeliveryRepository {
	return &GormPostbackDeliveryRepository{db: db}
}

// Save persists one or more deliveries
func (r *GormPostbackDeliveryRepository) Save(ctx context.Context, deliveries ...*postback.Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}

	deliveryModels := make([]*models.PostbackDeliveryModel, len(deliveries))
	for i, d := range deliveries {
		deliveryModels[i] = models.PostbackDeliveryModelFromDomain(d)
	}
	return r.db.WithContext(ctx).Create(deliveryModels).Error
}

// Update persists changes to an existing delivery
func (r *GormPostbackDeliveryRepository) Update(ctx context.Context, delivery *postback.Delivery) error {
	delivery.UpdatedAt = time.Now()
	model := models.PostbackDeliveryModelFromDomain(delivery)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a delivery by ID
func (r *GormPostbackDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*postback.Delivery, error) {
	var model models.PostbackDeliveryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a delivery by ID within a tenant
func (r *GormPostbackDeliveryRepository) FindByIDForTenant(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*postback.Delivery, error) {
	var model models.PostbackDeliveryModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPending returns PENDING deliveries ready to dispatch, oldest first
func (r *GormPostbackDeliveryRepository) FindPending(ctx context.Context, limit int) ([]*postback.Delivery, error) {
	var deliveryModels []models.PostbackDeliveryModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", postback.DeliveryStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&deliveryModels).Error; err != nil {
		return nil, err
	}
	return toDomainDeliveries(deliveryModels), nil
}

// FindRetryable returns FAILED deliveries whose backoff has elapsed
func (r *GormPostbackDeliveryRepository) FindRetryable(ctx context.Context, limit int) ([]*postback.Delivery, error) {
	var deliveryModels []models.PostbackDeliveryModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", postback.DeliveryStatusFailed, time.Now()).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&deliveryModels).Error; err != nil {
		return nil, err
	}
	return toDomainDeliveries(deliveryModels), nil
}

// FindDead returns DEAD deliveries for a tenant, for inspection and re-queueing
func (r *GormPostbackDeliveryRepository) FindDead(ctx context.Context, tenantID uuid.UUID, limit int) ([]*postback.Delivery, error) {
	var deliveryModels []models.PostbackDeliveryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, postback.DeliveryStatusDead).
		Order("updated_at DESC").
		Limit(limit).
		Find(&deliveryModels).Error; err != nil {
		return nil, err
	}
	return toDomainDeliveries(deliveryModels), nil
}

// MarkProcessing claims a batch of deliveries for dispatch using
// FOR UPDATE SKIP LOCKED so concurrent dispatchers never claim the
// same delivery twice
func (r *GormPostbackDeliveryRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var claimed []models.PostbackDeliveryModel
		if err := tx.
			Clauses(clause.Locking{
				Strength: "UPDATE",
				Options:  "SKIP LOCKED",
			}).
			Where("id IN ? AND status IN ?", ids, []postback.DeliveryStatus{
				postback.DeliveryStatusPending,
				postback.DeliveryStatusFailed,
			}).
			Find(&claimed).Error; err != nil {
			return err
		}

		if len(claimed) == 0 {
			return nil
		}

		claimedIDs := make([]uuid.UUID, len(claimed))
		for i, d := range claimed {
			claimedIDs[i] = d.ID
		}

		return tx.Model(&models.PostbackDeliveryModel{}).
			Where("id IN ?", claimedIDs).
			Updates(map[string]interface{}{
				"status":     postback.DeliveryStatusProcessing,
				"updated_at": time.Now(),
			}).Error
	})
}

// List returns deliveries for a tenant matching the filter, with total count
func (r *GormPostbackDeliveryRepository) List(ctx context.Context, tenantID uuid.UUID, filter postback.DeliveryFilter) ([]*postback.Delivery, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.PostbackDeliveryModel{}).
			Where("tenant_id = ?", tenantID)
		if filter.ConfigID != nil {
			query = query.Where("config_id = ?", *filter.ConfigID)
		}
		if filter.LeadID != nil {
			query = query.Where("lead_id = ?", *filter.LeadID)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var deliveryModels []models.PostbackDeliveryModel
	if err := base().
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&deliveryModels).Error; err != nil {
		return nil, 0, err
	}

	return toDomainDeliveries(deliveryModels), total, nil
}

// ExistsForEvent reports whether a delivery was already enqueued for a
// config/event pair. Database-side backstop behind the Redis idempotency
// check.
func (r *GormPostbackDeliveryRepository) ExistsForEvent(ctx context.Context, configID, eventID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PostbackDeliveryModel{}).
		Where("config_id = ? AND event_id = ?", configID, eventID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByStatus returns delivery counts grouped by status for a tenant
func (r *GormPostbackDeliveryRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[postback.DeliveryStatus]int64, error) {
	type statusCount struct {
		Status postback.DeliveryStatus
		Count  int64
	}

	var results []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.PostbackDeliveryModel{}).
		Select("status, count(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[postback.DeliveryStatus]int64)
	for _, row := range results {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// DeleteOlderThan removes SENT and DEAD deliveries created before the
// given time. Returns the number of deleted rows.
func (r *GormPostbackDeliveryRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", []postback.DeliveryStatus{
			postback.DeliveryStatusSent,
			postback.DeliveryStatusDead,
		}, before).
		Delete(&models.PostbackDeliveryModel{})
	return result.RowsAffected, result.Error
}

func toDomainDeliveries(deliveryModels []models.PostbackDeliveryModel) []*postback.Delivery {
	deliveries := make([]*postback.Delivery, len(deliveryModels))
	for i := range deliveryModels {
		deliveries[i] = deliveryModels[i].ToDomain()
	}
	return deliveries
}

// Ensure GormPostbackDeliveryRepository implements DeliveryRepository
var _ postback.DeliveryRepository = (*GormPostbackDeliveryRepository)(nil)
