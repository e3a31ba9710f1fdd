package persistence

import (
	"context"
	"errors"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/wallet"
	"github.com/dropship/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWalletRepository implements WalletRepository using GORM
type GormWalletRepository struct {
	db *gorm.DB
}

// NewGormWalletRepository creates a new GormWalletRepository
func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// FindByID finds a wallet by ID
func (r *GormWalletRepository) FindByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	var model models.WalletModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a wallet by ID for a specific tenant
func (r *GormWalletRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*wallet.Wallet, error) {
	var model models.WalletModel
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

// FindByUser finds all wallets registered by a user, default first
func (r *GormWalletRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]wallet.Wallet, error) {
	var walletModels []models.WalletModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("is_default DESC, created_at ASC").
		Find(&walletModels).Error; err != nil {
		return nil, err
	}

	wallets := make([]wallet.Wallet, len(walletModels))
	for i := range walletModels {
		wallets[i] = *walletModels[i].ToDomain()
	}
	return wallets, nil
}

// FindDefaultByUser finds the user's default wallet
func (r *GormWalletRepository) FindDefaultByUser(ctx context.Context, tenantID, userID uuid.UUID) (*wallet.Wallet, error) {
	var model models.WalletModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND is_default = ?", tenantID, userID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a wallet
func (r *GormWalletRepository) Save(ctx context.Context, w *wallet.Wallet) error {
	model := models.WalletModelFromDomain(w)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. Domain methods bump the
// version on every mutation, so the stored row must still be behind the
// version we are about to write.
func (r *GormWalletRepository) SaveWithLock(ctx context.Context, w *wallet.Wallet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.WalletModel{}).
			Where("id = ?", w.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			return err
		}

		if currentVersion >= w.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The wallet has been modified by another user")
		}

		result := tx.Model(&models.WalletModel{}).
			Where("id = ? AND version = ?", w.ID, currentVersion).
			Updates(map[string]interface{}{
				"label":       w.Label,
				"account_ref": w.AccountRef,
				"is_default":  w.IsDefault,
				"version":     w.Version,
				"updated_at":  w.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The wallet has been modified by another user")
		}
		return nil
	})
}

// ClearDefaultForUser removes the default flag from all of a user's wallets
func (r *GormWalletRepository) ClearDefaultForUser(ctx context.Context, tenantID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletModel{}).
		Where("tenant_id = ? AND user_id = ? AND is_default = ?", tenantID, userID, true).
		Update("is_default", false).Error
}

// DeleteForTenant deletes a wallet (soft delete)
func (r *GormWalletRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.WalletModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByUser counts wallets registered by a user
func (r *GormWalletRepository) CountByUser(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WalletModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormWalletRepository implements WalletRepository
var _ wallet.WalletRepository = (*GormWalletRepository)(nil)
