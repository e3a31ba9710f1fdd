package wallet

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of wallet ledger entry
type TransactionType string

const (
	// TransactionTypeCredit represents earnings credited to the wallet (balance increase)
	TransactionTypeCredit TransactionType = "CREDIT"
	// TransactionTypeDebit represents a generic charge against the wallet (balance decrease)
	TransactionTypeDebit TransactionType = "DEBIT"
	// TransactionTypeWithdrawal represents funds reserved by a withdrawal request (balance decrease)
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	// TransactionTypeWithdrawalReversal represents a released withdrawal reservation (balance increase)
	TransactionTypeWithdrawalReversal TransactionType = "WITHDRAWAL_REVERSAL"
	// TransactionTypeAdjustment represents manual adjustment (increase or decrease)
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeCredit,
		TransactionTypeDebit,
		TransactionTypeWithdrawal,
		TransactionTypeWithdrawalReversal,
		TransactionTypeAdjustment:
		return true
	}
	return false
}

// IsIncrease returns true if this transaction type typically increases the available balance
func (t TransactionType) IsIncrease() bool {
	switch t {
	case TransactionTypeCredit, TransactionTypeWithdrawalReversal:
		return true
	}
	return false
}

// IsDecrease returns true if this transaction type typically decreases the available balance
func (t TransactionType) IsDecrease() bool {
	switch t {
	case TransactionTypeDebit, TransactionTypeWithdrawal:
		return true
	}
	return false
}

// TransactionSource represents what caused a wallet ledger entry
type TransactionSource string

const (
	// SourceLeadPayout represents commission credited for a paid lead
	SourceLeadPayout TransactionSource = "LEAD_PAYOUT"
	// SourceWithdrawal represents a withdrawal request reserving or releasing funds
	SourceWithdrawal TransactionSource = "WITHDRAWAL"
	// SourceManual represents an operator-initiated adjustment
	SourceManual TransactionSource = "MANUAL"
	// SourceCorrection represents a system-initiated correction
	SourceCorrection TransactionSource = "CORRECTION"
)

// String returns the string representation of TransactionSource
func (s TransactionSource) String() string {
	return string(s)
}

// IsValid returns true if the source is valid
func (s TransactionSource) IsValid() bool {
	switch s {
	case SourceLeadPayout, SourceWithdrawal, SourceManual, SourceCorrection:
		return true
	}
	return false
}

// Transaction represents an immutable record of a wallet balance change.
// Once created, transactions cannot be modified - corrections must be made
// with new transactions. The available balance always equals the sum of
// signed transaction amounts.
type Transaction struct {
	shared.BaseEntity
	TenantID      uuid.UUID
	UserID        uuid.UUID
	Type          TransactionType
	Source        TransactionSource
	Amount        decimal.Decimal // Always positive, direction determined by type
	BalanceBefore decimal.Decimal // Available balance before this entry
	BalanceAfter  decimal.Decimal // Available balance after this entry
	ReferenceType string          // Kind of source document, e.g. "lead", "withdrawal"
	ReferenceID   *uuid.UUID      // ID of source document (optional)
	Description   string
	OperatorID    *uuid.UUID // User who performed the operation
	OccurredAt    time.Time
}

// NewTransaction creates a new wallet ledger entry
func NewTransaction(
	tenantID uuid.UUID,
	userID uuid.UUID,
	txType TransactionType,
	source TransactionSource,
	amount decimal.Decimal,
	balanceBefore decimal.Decimal,
	balanceAfter decimal.Decimal,
) (*Transaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid wallet transaction type")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Invalid wallet transaction source")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if balanceBefore.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BALANCE", "Balance before cannot be negative")
	}
	if balanceAfter.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BALANCE", "Balance after cannot be negative")
	}

	tx := &Transaction{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		UserID:        userID,
		Type:          txType,
		Source:        source,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		OccurredAt:    time.Now(),
	}

	return tx, nil
}

// WithReference sets the source document for the transaction
func (t *Transaction) WithReference(referenceType string, referenceID uuid.UUID) *Transaction {
	t.ReferenceType = referenceType
	t.ReferenceID = &referenceID
	return t
}

// WithDescription sets the human-readable description
func (t *Transaction) WithDescription(description string) *Transaction {
	t.Description = description
	return t
}

// WithOperatorID sets the operator who performed the operation
func (t *Transaction) WithOperatorID(operatorID uuid.UUID) *Transaction {
	t.OperatorID = &operatorID
	return t
}

// GetSignedAmount returns the amount with sign based on transaction type.
// Positive for increases, negative for decreases; adjustments take their
// sign from the balance difference.
func (t *Transaction) GetSignedAmount() decimal.Decimal {
	if t.Type.IsDecrease() {
		return t.Amount.Neg()
	}
	if t.Type == TransactionTypeAdjustment {
		return t.BalanceAfter.Sub(t.BalanceBefore)
	}
	return t.Amount
}

// IsIncrease returns true if this transaction increased the available balance
func (t *Transaction) IsIncrease() bool {
	return t.BalanceAfter.GreaterThan(t.BalanceBefore)
}

// IsDecrease returns true if this transaction decreased the available balance
func (t *Transaction) IsDecrease() bool {
	return t.BalanceAfter.LessThan(t.BalanceBefore)
}

// BalanceChange returns the net change to the available balance
func (t *Transaction) BalanceChange() decimal.Decimal {
	return t.BalanceAfter.Sub(t.BalanceBefore)
}
