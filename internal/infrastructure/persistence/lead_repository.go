package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/trade"
	"github.com/dropship/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLeadRepository implements LeadRepository using GORM
type GormLeadRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormLeadRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a lead by ID
func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Lead, error) {
	var model models.LeadModel
	if err := r.db.WithContext(ctx).
		Preload("StatusHistory", historyOrder).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a lead by ID for a specific tenant
func (r *GormLeadRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Lead, error) {
	var model models.LeadModel
	if err := r.db.WithContext(ctx).
		Preload("StatusHistory", historyOrder).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a lead by its human-readable number for a tenant
func (r *GormLeadRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*trade.Lead, error) {
	var model models.LeadModel
	if err := r.db.WithContext(ctx).
		Preload("StatusHistory", historyOrder).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a lead by the caller-supplied external ID for a tenant
func (r *GormLeadRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*trade.Lead, error) {
	if externalID == "" {
		return nil, shared.ErrNotFound
	}
	var model models.LeadModel
	if err := r.db.WithContext(ctx).
		Preload("StatusHistory", historyOrder).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all leads for a tenant with filtering
func (r *GormLeadRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.Lead, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LeadModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	return r.findLeads(query)
}

// FindBySeller finds leads owned by a seller
func (r *GormLeadRepository) FindBySeller(ctx context.Context, tenantID, sellerID uuid.UUID, filter shared.Filter) ([]trade.Lead, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LeadModel{}).
			Where("tenant_id = ? AND created_by = ?", tenantID, sellerID),
		filter,
	)
	return r.findLeads(query)
}

// FindByStatus finds leads by status for a tenant
func (r *GormLeadRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status trade.LeadStatus, filter shared.Filter) ([]trade.Lead, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LeadModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	return r.findLeads(query)
}

// FindByProduct finds leads for a product
func (r *GormLeadRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]trade.Lead, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LeadModel{}).
			Where("tenant_id = ? AND product_id = ?", tenantID, productID),
		filter,
	)
	return r.findLeads(query)
}

// FindByIDs finds leads by a set of IDs for a tenant (bulk status changes)
func (r *GormLeadRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]trade.Lead, error) {
	if len(ids) == 0 {
		return []trade.Lead{}, nil
	}

	var leadModels []models.LeadModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&leadModels).Error; err != nil {
		return nil, err
	}

	leads := make([]trade.Lead, len(leadModels))
	for i := range leadModels {
		leads[i] = *leadModels[i].ToDomain()
	}
	return leads, nil
}

// Save creates or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, lead *trade.Lead) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.LeadModelFromDomain(lead)
		if err := tx.Omit("StatusHistory").Save(model).Error; err != nil {
			// The partial unique index on (tenant_id, external_id)
			// catches concurrent submits that pass the lookup check.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return saveStatusHistory(tx, lead)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormLeadRepository) SaveWithLock(ctx context.Context, lead *trade.Lead) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, lead)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
// This implements the transactional outbox pattern - events are saved to the outbox table
// in the same transaction as the aggregate, ensuring guaranteed event delivery
func (r *GormLeadRepository) SaveWithLockAndEvents(ctx context.Context, lead *trade.Lead, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveWithLockTx(tx, lead); err != nil {
			return err
		}

		// Save events to outbox within the same transaction
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// saveWithLockTx updates the lead's mutable columns guarded by a version check
// and appends any new status history rows.
func (r *GormLeadRepository) saveWithLockTx(tx *gorm.DB, lead *trade.Lead) error {
	// Get current version from database
	var currentVersion int
	if err := tx.Model(&models.LeadModel{}).
		Where("id = ?", lead.ID).
		Select("version").
		Scan(&currentVersion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}

	// Check version matches
	if currentVersion != lead.Version {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The lead has been modified by another user")
	}

	// Increment version
	lead.Version++
	lead.UpdatedAt = time.Now()

	// Update the mutable columns with version check. Snapshot columns
	// (number, product, prices) are fixed at capture time.
	result := tx.Model(&models.LeadModel{}).
		Where("id = ? AND version = ?", lead.ID, currentVersion).
		Updates(map[string]interface{}{
			"customer_name":  lead.CustomerName,
			"customer_phone": lead.CustomerPhone,
			"country":        lead.Country,
			"city":           lead.City,
			"address":        lead.Address,
			"comment":        lead.Comment,
			"status":         lead.Status,
			"paid_at":        lead.PaidAt,
			"version":        lead.Version,
			"updated_at":     lead.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The lead has been modified by another user")
	}

	return saveStatusHistory(tx, lead)
}

// saveStatusHistory upserts the lead's status transitions. History rows
// are append-only so nothing is ever deleted here.
func saveStatusHistory(tx *gorm.DB, lead *trade.Lead) error {
	for i := range lead.StatusHistory {
		lead.StatusHistory[i].LeadID = lead.ID
		changeModel := models.LeadStatusChangeModelFromDomain(&lead.StatusHistory[i])
		if err := tx.Save(changeModel).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes a lead (soft delete)
func (r *GormLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadStatusChangeModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.LeadModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// DeleteForTenant deletes a lead for a tenant
func (r *GormLeadRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.LeadModel
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadStatusChangeModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.LeadModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForTenant counts leads for a tenant with optional filters
func (r *GormLeadRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.LeadModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts leads by status for a tenant
func (r *GormLeadRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status trade.LeadStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountBySeller counts leads owned by a seller
func (r *GormLeadRepository) CountBySeller(ctx context.Context, tenantID, sellerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("tenant_id = ? AND created_by = ?", tenantID, sellerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByProduct counts leads referencing a product
func (r *GormLeadRepository) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByExternalID checks if an external ID is already taken for a tenant
func (r *GormLeadRepository) ExistsByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (bool, error) {
	if externalID == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateNumber generates a unique lead number for a tenant
// Format: LD-YYYYMMDD-NNNNNN (e.g., LD-20260825-000001)
func (r *GormLeadRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("LD-%s-", time.Now().UTC().Format("20060102"))

	// Get the highest lead number for today
	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("tenant_id = ? AND number LIKE ?", tenantID, prefix+"%").
		Order("number DESC").
		Limit(1).
		Pluck("number", &lastNumber).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if lastNumber != "" {
		parts := strings.Split(lastNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	number := fmt.Sprintf("%s%06d", prefix, nextNum)

	// Verify uniqueness
	exists, err := r.existsByNumber(ctx, tenantID, number)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			number = fmt.Sprintf("%s%06d", prefix, nextNum)
			exists, err = r.existsByNumber(ctx, tenantID, number)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return number, nil
}

// CountsByDay returns per-day per-status lead counts and sums grouped by
// capture date (UTC) and status.
func (r *GormLeadRepository) CountsByDay(ctx context.Context, tenantID uuid.UUID, statsQuery trade.StatsQuery) ([]trade.StatusDayCount, error) {
	query := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Select("(created_at AT TIME ZONE 'UTC')::date AS date, status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total, COALESCE(SUM(payout * quantity), 0) AS payout").
		Where("tenant_id = ?", tenantID).
		Where("created_at >= ? AND created_at < ?", statsQuery.From, statsQuery.To)

	if statsQuery.SellerID != nil {
		query = query.Where("created_by = ?", *statsQuery.SellerID)
	}
	if statsQuery.ProductID != nil {
		query = query.Where("product_id = ?", *statsQuery.ProductID)
	}
	if statsQuery.Country != "" {
		query = query.Where("country = ?", strings.ToUpper(statsQuery.Country))
	}

	var rows []trade.StatusDayCount
	if err := query.
		Group("(created_at AT TIME ZONE 'UTC')::date, status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindStatusHistory returns the transition history for a lead, oldest first
func (r *GormLeadRepository) FindStatusHistory(ctx context.Context, tenantID, leadID uuid.UUID) ([]trade.StatusChange, error) {
	// Verify the lead belongs to the tenant before exposing its history
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, leadID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, shared.ErrNotFound
	}

	var changeModels []models.LeadStatusChangeModel
	if err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("changed_at ASC").
		Find(&changeModels).Error; err != nil {
		return nil, err
	}

	changes := make([]trade.StatusChange, len(changeModels))
	for i := range changeModels {
		changes[i] = *changeModels[i].ToDomain()
	}
	return changes, nil
}

// historyOrder sorts preloaded status history oldest first
func historyOrder(db *gorm.DB) *gorm.DB {
	return db.Order("changed_at ASC")
}

// findLeads runs the prepared query and maps the rows to domain leads
func (r *GormLeadRepository) findLeads(query *gorm.DB) ([]trade.Lead, error) {
	var leadModels []models.LeadModel
	if err := query.Find(&leadModels).Error; err != nil {
		return nil, err
	}

	leads := make([]trade.Lead, len(leadModels))
	for i := range leadModels {
		leads[i] = *leadModels[i].ToDomain()
	}
	return leads, nil
}

// existsByNumber checks if a lead number exists for a tenant
func (r *GormLeadRepository) existsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeadModel{}).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormLeadRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, LeadSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLeadRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where(
			"number ILIKE ? OR external_id ILIKE ? OR customer_name ILIKE ? OR customer_phone ILIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern,
		)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "seller_id":
			query = query.Where("created_by = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "country":
			if s, ok := value.(string); ok && s != "" {
				query = query.Where("country = ?", strings.ToUpper(s))
			}
		case "source":
			query = query.Where("source = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		case "min_total":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("total >= ?", d)
			}
		case "max_total":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("total <= ?", d)
			}
		case "sub1":
			query = query.Where("sub1 = ?", value)
		case "sub2":
			query = query.Where("sub2 = ?", value)
		case "sub3":
			query = query.Where("sub3 = ?", value)
		case "sub4":
			query = query.Where("sub4 = ?", value)
		case "sub5":
			query = query.Where("sub5 = ?", value)
		}
	}

	return query
}

// Ensure GormLeadRepository implements LeadRepository
var _ trade.LeadRepository = (*GormLeadRepository)(nil)
