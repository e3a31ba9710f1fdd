package persistence

import (
	"context"
	"errors"

	"github.com/dropship/backoffice/internal/domain/postback"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPostbackConfigRepository implements ConfigRepository using GORM
type GormPostbackConfigRepository struct {
	db *gorm.DB
}

// NewGormPostbackConfigRepository creates a new GormPostbackConfigRepository
func NewGormPostbackConfigRepository(db *gorm.DB) *GormPostbackConfigRepository {
	return &GormPostbackConfigRepository{db: db}
}

// FindByID finds a config by ID
func (r *GormPostbackConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*postback.Config, error) {
	var model models.PostbackConfigModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a config by ID within a tenant
func (r *GormPostbackConfigRepository) FindByIDForTenant(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*postback.Config, error) {
	var model models.PostbackConfigModel
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

// FindByUser returns all configs owned by a user, newest first
func (r *GormPostbackConfigRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]*postback.Config, error) {
	var configModels []models.PostbackConfigModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("created_at DESC").
		Find(&configModels).Error; err != nil {
		return nil, err
	}
	return toDomainConfigs(configModels), nil
}

// FindEnabledByUser returns the enabled configs owned by a user.
// Status filtering happens in memory via MatchesStatus because the
// subscribed statuses live in a jsonb array column.
func (r *GormPostbackConfigRepository) FindEnabledByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]*postback.Config, error) {
	var configModels []models.PostbackConfigModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND enabled = ?", tenantID, userID, true).
		Order("created_at DESC").
		Find(&configModels).Error; err != nil {
		return nil, err
	}
	return toDomainConfigs(configModels), nil
}

// Save creates or updates a config
func (r *GormPostbackConfigRepository) Save(ctx context.Context, config *postback.Config) error {
	model := models.PostbackConfigModelFromDomain(config)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock updates a config with optimistic locking. Domain methods
// bump the version on every mutation, so the stored row must still be
// behind the version we are about to write.
func (r *GormPostbackConfigRepository) SaveWithLock(ctx context.Context, config *postback.Config) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.PostbackConfigModel{}).
			Where("id = ?", config.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			return err
		}

		if currentVersion >= config.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The postback config has been modified by another user")
		}

		model := models.PostbackConfigModelFromDomain(config)
		result := tx.Model(&models.PostbackConfigModel{}).
			Where("id = ? AND version = ?", config.ID, currentVersion).
			Updates(map[string]interface{}{
				"name":          model.Name,
				"url_template":  model.URLTemplate,
				"method":        model.Method,
				"statuses":      model.Statuses,
				"secret_token":  model.SecretToken,
				"enabled":       model.Enabled,
				"failure_count": model.FailureCount,
				"last_error":    model.LastError,
				"last_fired_at": model.LastFiredAt,
				"version":       model.Version,
				"updated_at":    model.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The postback config has been modified by another user")
		}
		return nil
	})
}

// DeleteForTenant removes a config within a tenant
func (r *GormPostbackConfigRepository) DeleteForTenant(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.PostbackConfigModel{}, "id = ? AND tenant_id = ?", id, tenantID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByUser counts a user's configs
func (r *GormPostbackConfigRepository) CountByUser(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PostbackConfigModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func toDomainConfigs(configModels []models.PostbackConfigModel) []*postback.Config {
	configs := make([]*postback.Config, len(configModels))
	for i := range configModels {
		configs[i] = configModels[i].ToDomain()
	}
	return configs
}

// Ensure GormPostbackConfigRepository implements ConfigRepository
var _ postback.ConfigRepository = (*GormPostbackConfigRepository)(nil)
