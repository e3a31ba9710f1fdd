package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/wallet"
	"github.com/dropship/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWithdrawalRepository implements WithdrawalRepository using GORM
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewGormWithdrawalRepository creates a new GormWithdrawalRepository
func NewGormWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// FindByID finds a withdrawal by ID
func (r *GormWithdrawalRepository) FindByID(ctx context.Context, id uuid.UUID) (*wallet.Withdrawal, error) {
	var model models.WithdrawalModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a withdrawal by ID for a specific tenant
func (r *GormWithdrawalRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*wallet.Withdrawal, error) {
	var model models.WithdrawalModel
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

// FindByNumber finds a withdrawal by its human-readable number for a tenant
func (r *GormWithdrawalRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*wallet.Withdrawal, error) {
	var model models.WithdrawalModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all withdrawals for a tenant with filtering
func (r *GormWithdrawalRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]wallet.Withdrawal, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.WithdrawalModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	return r.findWithdrawals(query)
}

// FindByUser finds withdrawals requested by a user
func (r *GormWithdrawalRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]wallet.Withdrawal, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.WithdrawalModel{}).
			Where("tenant_id = ? AND user_id = ?", tenantID, userID),
		filter,
	)
	return r.findWithdrawals(query)
}

// FindByStatus finds withdrawals by status for a tenant
func (r *GormWithdrawalRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status wallet.WithdrawalStatus, filter shared.Filter) ([]wallet.Withdrawal, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.WithdrawalModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	return r.findWithdrawals(query)
}

// Save creates or updates a withdrawal
func (r *GormWithdrawalRepository) Save(ctx context.Context, withdrawal *wallet.Withdrawal) error {
	model := models.WithdrawalModelFromDomain(withdrawal)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormWithdrawalRepository) SaveWithLock(ctx context.Context, withdrawal *wallet.Withdrawal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveWithdrawalWithLockTx(tx, withdrawal)
	})
}

// SaveWithBalanceAndEntries saves the withdrawal and the balance, both
// with optimistic locking, and appends the ledger entries in one database
// transaction. The request flow inserts a fresh withdrawal row; cancel
// and reject update an existing one. Either way the reservation moves
// together with the request status or not at all.
func (r *GormWithdrawalRepository) SaveWithBalanceAndEntries(ctx context.Context, withdrawal *wallet.Withdrawal, balance *wallet.Balance, entries []*wallet.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveWithdrawalWithLockTx(tx, withdrawal); err != nil {
			return err
		}
		if err := saveBalanceWithLockTx(tx, balance); err != nil {
			return err
		}
		return appendLedgerEntriesTx(tx, entries)
	})
}

// saveWithdrawalWithLockTx inserts a new withdrawal row or updates an
// existing one guarded by a version check. Domain methods bump the
// version on every mutation, so the stored row must still be behind the
// version we are about to write.
func saveWithdrawalWithLockTx(tx *gorm.DB, withdrawal *wallet.Withdrawal) error {
	var currentVersion int
	result := tx.Model(&models.WithdrawalModel{}).
		Where("id = ?", withdrawal.ID).
		Select("version").
		Scan(&currentVersion)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// First save of a new request
		model := models.WithdrawalModelFromDomain(withdrawal)
		return tx.Create(model).Error
	}

	if currentVersion >= withdrawal.Version {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The withdrawal has been modified by another user")
	}

	updateResult := tx.Model(&models.WithdrawalModel{}).
		Where("id = ? AND version = ?", withdrawal.ID, currentVersion).
		Updates(map[string]interface{}{
			"status":        withdrawal.Status,
			"reject_reason": withdrawal.RejectReason,
			"processed_by":  withdrawal.ProcessedBy,
			"processed_at":  withdrawal.ProcessedAt,
			"gateway_ref":   withdrawal.GatewayRef,
			"gateway_error": withdrawal.GatewayError,
			"version":       withdrawal.Version,
			"updated_at":    withdrawal.UpdatedAt,
		})

	if updateResult.Error != nil {
		return updateResult.Error
	}
	if updateResult.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The withdrawal has been modified by another user")
	}
	return nil
}

// CountForTenant counts withdrawals for a tenant with optional filters
func (r *GormWithdrawalRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.WithdrawalModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts withdrawals by status for a tenant
func (r *GormWithdrawalRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status wallet.WithdrawalStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WithdrawalModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByUser counts withdrawals requested by a user
func (r *GormWithdrawalRepository) CountByUser(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WithdrawalModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOpenByWallet counts PENDING or APPROVED withdrawals that reference
// a wallet. A wallet with open withdrawals cannot be deleted.
func (r *GormWithdrawalRepository) CountOpenByWallet(ctx context.Context, tenantID, walletID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WithdrawalModel{}).
		Where("tenant_id = ? AND wallet_id = ? AND status IN ?",
			tenantID, walletID, []wallet.WithdrawalStatus{wallet.WithdrawalStatusPending, wallet.WithdrawalStatusApproved}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateNumber generates a unique withdrawal number for a tenant
// Format: WD-YYYYMMDD-NNNNNN (e.g., WD-20260825-000001)
func (r *GormWithdrawalRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("WD-%s-", time.Now().UTC().Format("20060102"))

	var lastNumber string
	err := r.db.WithContext(ctx).
		Model(&models.WithdrawalModel{}).
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

// existsByNumber checks if a withdrawal number exists for a tenant
func (r *GormWithdrawalRepository) existsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WithdrawalModel{}).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// findWithdrawals runs the prepared query and maps the rows to domain withdrawals
func (r *GormWithdrawalRepository) findWithdrawals(query *gorm.DB) ([]wallet.Withdrawal, error) {
	var withdrawalModels []models.WithdrawalModel
	if err := query.Find(&withdrawalModels).Error; err != nil {
		return nil, err
	}

	withdrawals := make([]wallet.Withdrawal, len(withdrawalModels))
	for i := range withdrawalModels {
		withdrawals[i] = *withdrawalModels[i].ToDomain()
	}
	return withdrawals, nil
}

// applyFilter applies filter options to the query
func (r *GormWithdrawalRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, WithdrawalSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormWithdrawalRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR account_ref ILIKE ?", searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "wallet_id":
			query = query.Where("wallet_id = ?", value)
		case "method":
			query = query.Where("method = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormWithdrawalRepository implements WithdrawalRepository
var _ wallet.WithdrawalRepository = (*GormWithdrawalRepository)(nil)
