package wallet

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reference type constants for ledger entries
const (
	ReferenceTypeLead       = "lead"
	ReferenceTypeWithdrawal = "withdrawal"
)

// Balance tracks a user's wallet money. Available is spendable,
// Pending is reserved by open withdrawal requests. Every mutation
// produces the matching ledger Transaction; the repository persists
// both in one database transaction so the ledger and the stored
// balance can never drift apart.
type Balance struct {
	shared.TenantAggregateRoot
	UserID    uuid.UUID
	Available decimal.Decimal
	Pending   decimal.Decimal
}

// NewBalance creates an empty balance for a user
func NewBalance(tenantID, userID uuid.UUID) (*Balance, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}

	return &Balance{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		Available:           decimal.Zero,
		Pending:             decimal.Zero,
	}, nil
}

// Credit adds earnings to the available balance
func (b *Balance) Credit(amount decimal.Decimal, source TransactionSource) (*Transaction, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}

	before := b.Available
	b.Available = b.Available.Add(amount)
	b.touch()

	return NewTransaction(b.TenantID, b.UserID, TransactionTypeCredit, source, amount, before, b.Available)
}

// Debit charges the available balance
func (b *Balance) Debit(amount decimal.Decimal, source TransactionSource) (*Transaction, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Debit amount must be positive")
	}
	if b.Available.LessThan(amount) {
		return nil, shared.ErrInsufficientBalance
	}

	before := b.Available
	b.Available = b.Available.Sub(amount)
	b.touch()

	return NewTransaction(b.TenantID, b.UserID, TransactionTypeDebit, source, amount, before, b.Available)
}

// Reserve moves funds from available to pending for a withdrawal request
func (b *Balance) Reserve(amount decimal.Decimal, withdrawalID uuid.UUID) (*Transaction, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Reservation amount must be positive")
	}
	if b.Available.LessThan(amount) {
		return nil, shared.ErrInsufficientBalance
	}

	before := b.Available
	b.Available = b.Available.Sub(amount)
	b.Pending = b.Pending.Add(amount)
	b.touch()

	tx, err := NewTransaction(b.TenantID, b.UserID, TransactionTypeWithdrawal, SourceWithdrawal, amount, before, b.Available)
	if err != nil {
		return nil, err
	}
	return tx.WithReference(ReferenceTypeWithdrawal, withdrawalID), nil
}

// Release returns reserved funds to available when a withdrawal is
// rejected or cancelled
func (b *Balance) Release(amount decimal.Decimal, withdrawalID uuid.UUID) (*Transaction, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Release amount must be positive")
	}
	if b.Pending.LessThan(amount) {
		return nil, shared.NewDomainError("INVALID_STATE", "Release exceeds pending balance")
	}

	before := b.Available
	b.Pending = b.Pending.Sub(amount)
	b.Available = b.Available.Add(amount)
	b.touch()

	tx, err := NewTransaction(b.TenantID, b.UserID, TransactionTypeWithdrawalReversal, SourceWithdrawal, amount, before, b.Available)
	if err != nil {
		return nil, err
	}
	return tx.WithReference(ReferenceTypeWithdrawal, withdrawalID), nil
}

// Settle clears reserved funds once a withdrawal is paid out. The money
// already left the available balance at reservation time, so no ledger
// entry is produced.
func (b *Balance) Settle(amount decimal.Decimal) error {
	if amount.IsNegative() || amount.IsZero() {
		return shared.NewDomainError("INVALID_AMOUNT", "Settlement amount must be positive")
	}
	if b.Pending.LessThan(amount) {
		return shared.NewDomainError("INVALID_STATE", "Settlement exceeds pending balance")
	}

	b.Pending = b.Pending.Sub(amount)
	b.touch()

	return nil
}

// Adjust applies a manual correction to the available balance
func (b *Balance) Adjust(amount decimal.Decimal, increase bool, operatorID uuid.UUID) (*Transaction, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Adjustment amount must be positive")
	}

	before := b.Available
	if increase {
		b.Available = b.Available.Add(amount)
	} else {
		if b.Available.LessThan(amount) {
			return nil, shared.ErrInsufficientBalance
		}
		b.Available = b.Available.Sub(amount)
	}
	b.touch()

	tx, err := NewTransaction(b.TenantID, b.UserID, TransactionTypeAdjustment, SourceManual, amount, before, b.Available)
	if err != nil {
		return nil, err
	}
	return tx.WithOperatorID(operatorID), nil
}

// Total returns available plus pending funds
func (b *Balance) Total() decimal.Decimal {
	return b.Available.Add(b.Pending)
}

func (b *Balance) touch() {
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
