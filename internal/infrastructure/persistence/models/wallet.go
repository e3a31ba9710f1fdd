package models

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletModel is the persistence model for the Wallet aggregate root.
type WalletModel struct {
	TenantAggregateModel
	UserID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_wallet_tenant_user,priority:2"`
	Method     wallet.Method `gorm:"type:varchar(20);not null"`
	Label      string        `gorm:"type:varchar(100);not null"`
	AccountRef string        `gorm:"type:varchar(200);not null"`
	Currency   string        `gorm:"type:varchar(3);not null;default:'USD'"`
	IsDefault  bool          `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (WalletModel) TableName() string {
	return "wallets"
}

// ToDomain converts the persistence model to a domain Wallet entity.
func (m *WalletModel) ToDomain() *wallet.Wallet {
	w := &wallet.Wallet{
		UserID:     m.UserID,
		Method:     m.Method,
		Label:      m.Label,
		AccountRef: m.AccountRef,
		Currency:   m.Currency,
		IsDefault:  m.IsDefault,
	}
	m.PopulateTenantAggregateRoot(&w.TenantAggregateRoot)
	return w
}

// FromDomain populates the persistence model from a domain Wallet entity.
func (m *WalletModel) FromDomain(w *wallet.Wallet) {
	m.FromDomainTenantAggregateRoot(w.TenantAggregateRoot)
	m.UserID = w.UserID
	m.Method = w.Method
	m.Label = w.Label
	m.AccountRef = w.AccountRef
	m.Currency = w.Currency
	m.IsDefault = w.IsDefault
}

// WalletModelFromDomain creates a new persistence model from a domain Wallet entity.
func WalletModelFromDomain(w *wallet.Wallet) *WalletModel {
	m := &WalletModel{}
	m.FromDomain(w)
	return m
}

// BalanceModel is the persistence model for the Balance aggregate root.
type BalanceModel struct {
	TenantAggregateModel
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_tenant_user,priority:2"`
	Available decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Pending   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (BalanceModel) TableName() string {
	return "wallet_balances"
}

// ToDomain converts the persistence model to a domain Balance entity.
func (m *BalanceModel) ToDomain() *wallet.Balance {
	b := &wallet.Balance{
		UserID:    m.UserID,
		Available: m.Available,
		Pending:   m.Pending,
	}
	m.PopulateTenantAggregateRoot(&b.TenantAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain Balance entity.
func (m *BalanceModel) FromDomain(b *wallet.Balance) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.UserID = b.UserID
	m.Available = b.Available
	m.Pending = b.Pending
}

// BalanceModelFromDomain creates a new persistence model from a domain Balance entity.
func BalanceModelFromDomain(b *wallet.Balance) *BalanceModel {
	m := &BalanceModel{}
	m.FromDomain(b)
	return m
}

// WalletTransactionModel is the persistence model for the ledger Transaction entity.
// Rows are append-only; there is no update path.
type WalletTransactionModel struct {
	BaseModel
	TenantID      uuid.UUID                `gorm:"type:uuid;not null;index:idx_wallet_tx_tenant_user,priority:1"`
	UserID        uuid.UUID                `gorm:"type:uuid;not null;index:idx_wallet_tx_tenant_user,priority:2"`
	Type          wallet.TransactionType   `gorm:"type:varchar(30);not null;index"`
	Source        wallet.TransactionSource `gorm:"type:varchar(30);not null"`
	Amount        decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	BalanceBefore decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	BalanceAfter  decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	ReferenceType string                   `gorm:"type:varchar(50);index:idx_wallet_tx_reference,priority:1"`
	ReferenceID   *uuid.UUID               `gorm:"type:uuid;index:idx_wallet_tx_reference,priority:2"`
	Description   string                   `gorm:"type:varchar(500)"`
	OperatorID    *uuid.UUID               `gorm:"type:uuid"`
	OccurredAt    time.Time                `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (WalletTransactionModel) TableName() string {
	return "wallet_transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *WalletTransactionModel) ToDomain() *wallet.Transaction {
	return &wallet.Transaction{
		BaseEntity:    m.BaseModel.ToDomain(),
		TenantID:      m.TenantID,
		UserID:        m.UserID,
		Type:          m.Type,
		Source:        m.Source,
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Description:   m.Description,
		OperatorID:    m.OperatorID,
		OccurredAt:    m.OccurredAt,
	}
}

// FromDomain populates the persistence model from a domain Transaction entity.
func (m *WalletTransactionModel) FromDomain(t *wallet.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.TenantID = t.TenantID
	m.UserID = t.UserID
	m.Type = t.Type
	m.Source = t.Source
	m.Amount = t.Amount
	m.BalanceBefore = t.BalanceBefore
	m.BalanceAfter = t.BalanceAfter
	m.ReferenceType = t.ReferenceType
	m.ReferenceID = t.ReferenceID
	m.Description = t.Description
	m.OperatorID = t.OperatorID
	m.OccurredAt = t.OccurredAt
}

// WalletTransactionModelFromDomain creates a new persistence model from a domain Transaction entity.
func WalletTransactionModelFromDomain(t *wallet.Transaction) *WalletTransactionModel {
	m := &WalletTransactionModel{}
	m.FromDomain(t)
	return m
}

// WithdrawalModel is the persistence model for the Withdrawal aggregate root.
type WithdrawalModel struct {
	TenantAggregateModel
	UserID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	Number       string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_withdrawal_tenant_number,priority:2"`
	WalletID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	Method       wallet.Method           `gorm:"type:varchar(20);not null"`
	AccountRef   string                  `gorm:"type:varchar(200);not null"`
	Currency     string                  `gorm:"type:varchar(3);not null"`
	Amount       decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status       wallet.WithdrawalStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RejectReason string                  `gorm:"type:varchar(500)"`
	ProcessedBy  *uuid.UUID              `gorm:"type:uuid"`
	ProcessedAt  *time.Time
	GatewayRef   string `gorm:"type:varchar(100)"`
	GatewayError string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (WithdrawalModel) TableName() string {
	return "withdrawals"
}

// ToDomain converts the persistence model to a domain Withdrawal entity.
func (m *WithdrawalModel) ToDomain() *wallet.Withdrawal {
	w := &wallet.Withdrawal{
		UserID:       m.UserID,
		Number:       m.Number,
		WalletID:     m.WalletID,
		Method:       m.Method,
		AccountRef:   m.AccountRef,
		Currency:     m.Currency,
		Amount:       m.Amount,
		Status:       m.Status,
		RejectReason: m.RejectReason,
		ProcessedBy:  m.ProcessedBy,
		ProcessedAt:  m.ProcessedAt,
		GatewayRef:   m.GatewayRef,
		GatewayError: m.GatewayError,
	}
	m.PopulateTenantAggregateRoot(&w.TenantAggregateRoot)
	return w
}

// FromDomain populates the persistence model from a domain Withdrawal entity.
func (m *WithdrawalModel) FromDomain(w *wallet.Withdrawal) {
	m.FromDomainTenantAggregateRoot(w.TenantAggregateRoot)
	m.UserID = w.UserID
	m.Number = w.Number
	m.WalletID = w.WalletID
	m.Method = w.Method
	m.AccountRef = w.AccountRef
	m.Currency = w.Currency
	m.Amount = w.Amount
	m.Status = w.Status
	m.RejectReason = w.RejectReason
	m.ProcessedBy = w.ProcessedBy
	m.ProcessedAt = w.ProcessedAt
	m.GatewayRef = w.GatewayRef
	m.GatewayError = w.GatewayError
}

// WithdrawalModelFromDomain creates a new persistence model from a domain Withdrawal entity.
func WithdrawalModelFromDomain(w *wallet.Withdrawal) *WithdrawalModel {
	m := &WithdrawalModel{}
	m.FromDomain(w)
	return m
}
