package persistence

import (
	"context"
	"errors"

	"github.com/dropship/backoffice/internal/domain/bulk"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormImportSessionRepository implements ImportSessionRepository using GORM
type GormImportSessionRepository struct {
	db *gorm.DB
}

// NewGormImportSessionRepository creates a new GormImportSessionRepository
func NewGormImportSessionRepository(db *gorm.DB) *GormImportSessionRepository {
	return &GormImportSessionRepository{db: db}
}

// FindByID finds an import session by ID
func (r *GormImportSessionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*bulk.ImportSession, error) {
	var model models.ImportSessionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all import sessions for a tenant with pagination and filtering
func (r *GormImportSessionRepository) FindAll(
	ctx context.Context,
	tenantID uuid.UUID,
	filter bulk.ImportSessionFilter,
	page, pageSize int,
) (*bulk.ImportSessionListResult, error) {
	query := r.db.WithContext(ctx).Model(&models.ImportSessionModel{}).
		Where("tenant_id = ?", tenantID)

	// Apply filters
	query = r.applyFilters(query, filter)

	// Get total count
	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, err
	}

	// Apply pagination
	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		query = query.Offset(offset).Limit(pageSize)
	}

	// Default ordering: most recent first
	query = query.Order("started_at DESC NULLS LAST, created_at DESC")

	var sessionModels []models.ImportSessionModel
	if err := query.Find(&sessionModels).Error; err != nil {
		return nil, err
	}

	// Convert to domain entities
	sessions := make([]*bulk.ImportSession, len(sessionModels))
	for i, model := range sessionModels {
		sessions[i] = model.ToDomain()
	}

	return &bulk.ImportSessionListResult{
		Items:      sessions,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// FindRunning finds sessions still in a non-terminal state, so they can
// be marked failed after a restart
func (r *GormImportSessionRepository) FindRunning(ctx context.Context, tenantID uuid.UUID) ([]*bulk.ImportSession, error) {
	var sessionModels []models.ImportSessionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]bulk.ImportStatus{bulk.ImportStatusPending, bulk.ImportStatusValidating, bulk.ImportStatusImporting}).
		Order("created_at ASC").
		Find(&sessionModels).Error; err != nil {
		return nil, err
	}

	// Convert to domain entities
	sessions := make([]*bulk.ImportSession, len(sessionModels))
	for i, model := range sessionModels {
		sessions[i] = model.ToDomain()
	}
	return sessions, nil
}

// Save saves an import session (create or update)
func (r *GormImportSessionRepository) Save(ctx context.Context, session *bulk.ImportSession) error {
	model := models.ImportSessionModelFromDomain(session)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes an import session by ID
func (r *GormImportSessionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.ImportSessionModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilters applies filter options to the query
func (r *GormImportSessionRepository) applyFilters(query *gorm.DB, filter bulk.ImportSessionFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.StartedFrom != nil {
		query = query.Where("started_at >= ?", *filter.StartedFrom)
	}
	if filter.StartedTo != nil {
		query = query.Where("started_at <= ?", *filter.StartedTo)
	}
	return query
}

// Compile-time interface compliance check
var _ bulk.ImportSessionRepository = (*GormImportSessionRepository)(nil)
