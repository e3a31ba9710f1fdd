package wallet

import (
	"context"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for payout wallet persistence
type WalletRepository interface {
	// FindByID finds a wallet by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Wallet, error)

	// FindByIDForTenant finds a wallet by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Wallet, error)

	// FindByUser finds all wallets registered by a user, default first
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]Wallet, error)

	// FindDefaultByUser finds the user's default wallet
	FindDefaultByUser(ctx context.Context, tenantID, userID uuid.UUID) (*Wallet, error)

	// Save creates or updates a wallet
	Save(ctx context.Context, wallet *Wallet) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, wallet *Wallet) error

	// ClearDefaultForUser removes the default flag from all of a user's wallets
	ClearDefaultForUser(ctx context.Context, tenantID, userID uuid.UUID) error

	// DeleteForTenant deletes a wallet (soft delete)
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountByUser counts wallets registered by a user
	CountByUser(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)
}

// TransactionFilter contains filter options for listing ledger entries
type TransactionFilter struct {
	UserID   *uuid.UUID
	Type     *TransactionType
	Source   *TransactionSource
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// TransactionRepository defines the interface for wallet ledger persistence.
// Ledger entries are append-only; there are no update or delete operations.
type TransactionRepository interface {
	// Create appends a new ledger entry
	Create(ctx context.Context, transaction *Transaction) error

	// FindByID finds a ledger entry by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)

	// FindByUser finds all ledger entries for a user
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID, filter TransactionFilter) ([]*Transaction, int64, error)

	// List lists ledger entries with filtering
	List(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) ([]*Transaction, int64, error)

	// FindByReference finds ledger entries produced by a source document
	FindByReference(ctx context.Context, tenantID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]*Transaction, error)

	// ExistsByReference checks whether a source document already produced
	// an entry of the given type. Used to keep lead payouts exactly-once.
	ExistsByReference(ctx context.Context, tenantID uuid.UUID, referenceType string, referenceID uuid.UUID, txType TransactionType) (bool, error)

	// GetLatestByUser gets the most recent ledger entry for a user
	GetLatestByUser(ctx context.Context, tenantID, userID uuid.UUID) (*Transaction, error)

	// SumByUserAndType sums entry amounts by user and type within a date range
	SumByUserAndType(ctx context.Context, tenantID, userID uuid.UUID, txType TransactionType, from, to time.Time) (decimal.Decimal, error)
}

// BalanceRepository defines the interface for wallet balance persistence
type BalanceRepository interface {
	// FindByUser finds the balance for a user
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*Balance, error)

	// GetOrCreate finds the balance for a user, creating an empty one if missing
	GetOrCreate(ctx context.Context, tenantID, userID uuid.UUID) (*Balance, error)

	// Save creates or updates a balance
	Save(ctx context.Context, balance *Balance) error

	// SaveWithEntries saves the balance with optimistic locking and appends
	// the ledger entries in the same database transaction, so the stored
	// balance and the ledger always agree
	SaveWithEntries(ctx context.Context, balance *Balance, entries []*Transaction) error
}

// WithdrawalRepository defines the interface for withdrawal persistence
type WithdrawalRepository interface {
	// FindByID finds a withdrawal by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Withdrawal, error)

	// FindByIDForTenant finds a withdrawal by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Withdrawal, error)

	// FindByNumber finds a withdrawal by its human-readable number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Withdrawal, error)

	// FindAllForTenant finds all withdrawals for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Withdrawal, error)

	// FindByUser finds withdrawals requested by a user
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]Withdrawal, error)

	// FindByStatus finds withdrawals by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status WithdrawalStatus, filter shared.Filter) ([]Withdrawal, error)

	// Save creates or updates a withdrawal
	Save(ctx context.Context, withdrawal *Withdrawal) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, withdrawal *Withdrawal) error

	// SaveWithBalanceAndEntries saves the withdrawal and the balance, both
	// with optimistic locking, and appends the ledger entries in one
	// database transaction. Used by request, cancel and reject flows where
	// the reservation must move together with the request status.
	SaveWithBalanceAndEntries(ctx context.Context, withdrawal *Withdrawal, balance *Balance, entries []*Transaction) error

	// CountForTenant counts withdrawals for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts withdrawals by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status WithdrawalStatus) (int64, error)

	// CountByUser counts withdrawals requested by a user
	CountByUser(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)

	// CountOpenByWallet counts PENDING or APPROVED withdrawals that
	// reference a wallet. Used for validation before wallet deletion.
	CountOpenByWallet(ctx context.Context, tenantID, walletID uuid.UUID) (int64, error)

	// GenerateNumber generates a unique withdrawal number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
