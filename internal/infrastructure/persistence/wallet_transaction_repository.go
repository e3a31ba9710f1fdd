package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/wallet"
	"github.com/dropship/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormWalletTransactionRepository implements TransactionRepository using GORM.
// Ledger rows are append-only; the repository exposes no update path.
type GormWalletTransactionRepository struct {
	db *gorm.DB
}

// NewGormWalletTransactionRepository creates a new GormWalletTransactionRepository
func NewGormWalletTransactionRepository(db *gorm.DB) *GormWalletTransactionRepository {
	return &GormWalletTransactionRepository{db: db}
}

// Create appends a new ledger entry
func (r *GormWalletTransactionRepository) Create(ctx context.Context, transaction *wallet.Transaction) error {
	model := models.WalletTransactionModelFromDomain(transaction)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a ledger entry by ID within a tenant
func (r *GormWalletTransactionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*wallet.Transaction, error) {
	var model models.WalletTransactionModel
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

// FindByUser finds all ledger entries for a user
func (r *GormWalletTransactionRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID, filter wallet.TransactionFilter) ([]*wallet.Transaction, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.WalletTransactionModel{}).
			Where("tenant_id = ? AND user_id = ?", tenantID, userID)
	}
	return r.findPage(base, filter)
}

// List lists ledger entries with filtering
func (r *GormWalletTransactionRepository) List(ctx context.Context, tenantID uuid.UUID, filter wallet.TransactionFilter) ([]*wallet.Transaction, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.WalletTransactionModel{}).
			Where("tenant_id = ?", tenantID)
	}
	return r.findPage(base, filter)
}

// FindByReference finds ledger entries produced by a source document
func (r *GormWalletTransactionRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]*wallet.Transaction, error) {
	var transactionModels []models.WalletTransactionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, referenceType, referenceID).
		Order("occurred_at DESC").
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]*wallet.Transaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = model.ToDomain()
	}
	return transactions, nil
}

// ExistsByReference checks whether a source document already produced an
// entry of the given type. The payout credit flow uses this to keep lead
// payouts exactly-once even when status events are redelivered.
func (r *GormWalletTransactionRepository) ExistsByReference(ctx context.Context, tenantID uuid.UUID, referenceType string, referenceID uuid.UUID, txType wallet.TransactionType) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WalletTransactionModel{}).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ? AND type = ?",
			tenantID, referenceType, referenceID, txType).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetLatestByUser gets the most recent ledger entry for a user
func (r *GormWalletTransactionRepository) GetLatestByUser(ctx context.Context, tenantID, userID uuid.UUID) (*wallet.Transaction, error) {
	var model models.WalletTransactionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("occurred_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SumByUserAndType sums entry amounts by user and type within a date range
func (r *GormWalletTransactionRepository) SumByUserAndType(ctx context.Context, tenantID, userID uuid.UUID, txType wallet.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}

	if err := r.db.WithContext(ctx).
		Model(&models.WalletTransactionModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("tenant_id = ? AND user_id = ? AND type = ? AND occurred_at >= ? AND occurred_at <= ?",
			tenantID, userID, txType, from, to).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}

	return result.Total, nil
}

// findPage counts, paginates and loads one page of ledger entries,
// most recent first
func (r *GormWalletTransactionRepository) findPage(base func() *gorm.DB, filter wallet.TransactionFilter) ([]*wallet.Transaction, int64, error) {
	var total int64
	countQuery := r.applyFilter(base(), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.applyFilter(base(), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("occurred_at DESC")

	var transactionModels []models.WalletTransactionModel
	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, 0, err
	}

	transactions := make([]*wallet.Transaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = model.ToDomain()
	}
	return transactions, total, nil
}

// applyFilter applies filter options to the query
func (r *GormWalletTransactionRepository) applyFilter(query *gorm.DB, filter wallet.TransactionFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.Type != nil {
		query = query.Where("type = ?", strings.ToUpper(string(*filter.Type)))
	}

	if filter.Source != nil {
		query = query.Where("source = ?", strings.ToUpper(string(*filter.Source)))
	}

	if filter.DateFrom != nil {
		query = query.Where("occurred_at >= ?", *filter.DateFrom)
	}

	if filter.DateTo != nil {
		query = query.Where("occurred_at <= ?", *filter.DateTo)
	}

	return query
}

// Ensure GormWalletTransactionRepository implements TransactionRepository
var _ wallet.TransactionRepository = (*GormWalletTransactionRepository)(nil)
