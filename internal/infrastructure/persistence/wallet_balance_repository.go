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

// GormBalanceRepository implements BalanceRepository using GORM
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// FindByUser finds the balance for a user
func (r *GormBalanceRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*wallet.Balance, error) {
	var model models.BalanceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetOrCreate finds the balance for a user, creating an empty one if
// missing. Concurrent creates race on the unique (tenant, user) index;
// the loser re-reads the winner's row.
func (r *GormBalanceRepository) GetOrCreate(ctx context.Context, tenantID, userID uuid.UUID) (*wallet.Balance, error) {
	balance, err := r.FindByUser(ctx, tenantID, userID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	balance, err = wallet.NewBalance(tenantID, userID)
	if err != nil {
		return nil, err
	}

	model := models.BalanceModelFromDomain(balance)
	if createErr := r.db.WithContext(ctx).Create(model).Error; createErr != nil {
		existing, findErr := r.FindByUser(ctx, tenantID, userID)
		if findErr == nil {
			return existing, nil
		}
		return nil, createErr
	}
	return balance, nil
}

// Save creates or updates a balance
func (r *GormBalanceRepository) Save(ctx context.Context, balance *wallet.Balance) error {
	model := models.BalanceModelFromDomain(balance)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithEntries saves the balance with optimistic locking and appends
// the ledger entries in the same database transaction. Domain methods
// bump the version on every mutation, so the stored row must still be
// behind the version we are about to write.
func (r *GormBalanceRepository) SaveWithEntries(ctx context.Context, balance *wallet.Balance, entries []*wallet.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveBalanceWithLockTx(tx, balance); err != nil {
			return err
		}
		return appendLedgerEntriesTx(tx, entries)
	})
}

// saveBalanceWithLockTx updates the balance row guarded by a version check
func saveBalanceWithLockTx(tx *gorm.DB, balance *wallet.Balance) error {
	var currentVersion int
	if err := tx.Model(&models.BalanceModel{}).
		Where("id = ?", balance.ID).
		Select("version").
		Scan(&currentVersion).Error; err != nil {
		return err
	}

	if currentVersion >= balance.Version {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The balance has been modified by another operation")
	}

	result := tx.Model(&models.BalanceModel{}).
		Where("id = ? AND version = ?", balance.ID, currentVersion).
		Updates(map[string]interface{}{
			"available":  balance.Available,
			"pending":    balance.Pending,
			"version":    balance.Version,
			"updated_at": balance.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The balance has been modified by another operation")
	}
	return nil
}

// appendLedgerEntriesTx inserts ledger entries within the transaction.
// The partial unique index on CREDIT references surfaces a redelivered
// payout as ErrAlreadyExists, rolling back the balance update with it.
func appendLedgerEntriesTx(tx *gorm.DB, entries []*wallet.Transaction) error {
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		model := models.WalletTransactionModelFromDomain(entry)
		if err := tx.Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
	}
	return nil
}

// Ensure GormBalanceRepository implements BalanceRepository
var _ wallet.BalanceRepository = (*GormBalanceRepository)(nil)
