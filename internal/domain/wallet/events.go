package wallet

import (
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeWallet     = "Wallet"
	AggregateTypeWithdrawal = "Withdrawal"
)

// Event type constants
const (
	EventTypeWalletCreated        = "WalletCreated"
	EventTypeWalletUpdated        = "WalletUpdated"
	EventTypeWalletDeleted        = "WalletDeleted"
	EventTypeWithdrawalRequested  = "WithdrawalRequested"
	EventTypeWithdrawalApproved   = "WithdrawalApproved"
	EventTypeWithdrawalRejected   = "WithdrawalRejected"
	EventTypeWithdrawalCancelled  = "WithdrawalCancelled"
	EventTypeWithdrawalPaid       = "WithdrawalPaid"
	EventTypeWalletBalanceChanged = "WalletBalanceChanged"
)

// WalletCreatedEvent is raised when a payout wallet is registered
type WalletCreatedEvent struct {
	shared.BaseDomainEvent
	WalletID uuid.UUID `json:"wallet_id"`
	UserID   uuid.UUID `json:"user_id"`
	Method   string    `json:"method"`
	Label    string    `json:"label"`
}

// NewWalletCreatedEvent creates a new WalletCreatedEvent
func NewWalletCreatedEvent(wallet *Wallet) *WalletCreatedEvent {
	return &WalletCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWalletCreated, AggregateTypeWallet, wallet.ID, wallet.TenantID),
		WalletID:        wallet.ID,
		UserID:          wallet.UserID,
		Method:          wallet.Method.String(),
		Label:           wallet.Label,
	}
}

// EventType returns the event type name
func (e *WalletCreatedEvent) EventType() string {
	return EventTypeWalletCreated
}

// WalletUpdatedEvent is raised when a payout wallet is edited
type WalletUpdatedEvent struct {
	shared.BaseDomainEvent
	WalletID uuid.UUID `json:"wallet_id"`
	UserID   uuid.UUID `json:"user_id"`
	Label    string    `json:"label"`
}

// NewWalletUpdatedEvent creates a new WalletUpdatedEvent
func NewWalletUpdatedEvent(wallet *Wallet) *WalletUpdatedEvent {
	return &WalletUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWalletUpdated, AggregateTypeWallet, wallet.ID, wallet.TenantID),
		WalletID:        wallet.ID,
		UserID:          wallet.UserID,
		Label:           wallet.Label,
	}
}

// EventType returns the event type name
func (e *WalletUpdatedEvent) EventType() string {
	return EventTypeWalletUpdated
}

// WithdrawalRequestedEvent is raised when a withdrawal request is created
type WithdrawalRequestedEvent struct {
	shared.BaseDomainEvent
	WithdrawalID uuid.UUID       `json:"withdrawal_id"`
	Number       string          `json:"number"`
	UserID       uuid.UUID       `json:"user_id"`
	Method       string          `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

// NewWithdrawalRequestedEvent creates a new WithdrawalRequestedEvent
func NewWithdrawalRequestedEvent(w *Withdrawal) *WithdrawalRequestedEvent {
	return &WithdrawalRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWithdrawalRequested, AggregateTypeWithdrawal, w.ID, w.TenantID),
		WithdrawalID:    w.ID,
		Number:          w.Number,
		UserID:          w.UserID,
		Method:          w.Method.String(),
		Amount:          w.Amount,
		Currency:        w.Currency,
	}
}

// EventType returns the event type name
func (e *WithdrawalRequestedEvent) EventType() string {
	return EventTypeWithdrawalRequested
}

// WithdrawalApprovedEvent is raised when a withdrawal passes review
type WithdrawalApprovedEvent struct {
	shared.BaseDomainEvent
	WithdrawalID uuid.UUID       `json:"withdrawal_id"`
	Number       string          `json:"number"`
	UserID       uuid.UUID       `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	ProcessedBy  *uuid.UUID      `json:"processed_by,omitempty"`
}

// NewWithdrawalApprovedEvent creates a new WithdrawalApprovedEvent
func NewWithdrawalApprovedEvent(w *Withdrawal) *WithdrawalApprovedEvent {
	return &WithdrawalApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWithdrawalApproved, AggregateTypeWithdrawal, w.ID, w.TenantID),
		WithdrawalID:    w.ID,
		Number:          w.Number,
		UserID:          w.UserID,
		Amount:          w.Amount,
		ProcessedBy:     w.ProcessedBy,
	}
}

// EventType returns the event type name
func (e *WithdrawalApprovedEvent) EventType() string {
	return EventTypeWithdrawalApproved
}

// WithdrawalRejectedEvent is raised when a withdrawal is declined
type WithdrawalRejectedEvent struct {
	shared.BaseDomainEvent
	WithdrawalID uuid.UUID       `json:"withdrawal_id"`
	Number       string          `json:"number"`
	UserID       uuid.UUID       `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
}

// NewWithdrawalRejectedEvent creates a new WithdrawalRejectedEvent
func NewWithdrawalRejectedEvent(w *Withdrawal) *WithdrawalRejectedEvent {
	return &WithdrawalRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWithdrawalRejected, AggregateTypeWithdrawal, w.ID, w.TenantID),
		WithdrawalID:    w.ID,
		Number:          w.Number,
		UserID:          w.UserID,
		Amount:          w.Amount,
		Reason:          w.RejectReason,
	}
}

// EventType returns the event type name
func (e *WithdrawalRejectedEvent) EventType() string {
	return EventTypeWithdrawalRejected
}

// WithdrawalCancelledEvent is raised when the owner withdraws a pending request
type WithdrawalCancelledEvent struct {
	shared.BaseDomainEvent
	WithdrawalID uuid.UUID       `json:"withdrawal_id"`
	Number       string          `json:"number"`
	UserID       uuid.UUID       `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// NewWithdrawalCancelledEvent creates a new WithdrawalCancelledEvent
func NewWithdrawalCancelledEvent(w *Withdrawal) *WithdrawalCancelledEvent {
	return &WithdrawalCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWithdrawalCancelled, AggregateTypeWithdrawal, w.ID, w.TenantID),
		WithdrawalID:    w.ID,
		Number:          w.Number,
		UserID:          w.UserID,
		Amount:          w.Amount,
	}
}

// EventType returns the event type name
func (e *WithdrawalCancelledEvent) EventType() string {
	return EventTypeWithdrawalCancelled
}

// WithdrawalPaidEvent is raised when the payout transfer completes
type WithdrawalPaidEvent struct {
	shared.BaseDomainEvent
	WithdrawalID uuid.UUID       `json:"withdrawal_id"`
	Number       string          `json:"number"`
	UserID       uuid.UUID       `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	GatewayRef   string          `json:"gateway_ref"`
}

// NewWithdrawalPaidEvent creates a new WithdrawalPaidEvent
func NewWithdrawalPaidEvent(w *Withdrawal) *WithdrawalPaidEvent {
	return &WithdrawalPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWithdrawalPaid, AggregateTypeWithdrawal, w.ID, w.TenantID),
		WithdrawalID:    w.ID,
		Number:          w.Number,
		UserID:          w.UserID,
		Amount:          w.Amount,
		GatewayRef:      w.GatewayRef,
	}
}

// EventType returns the event type name
func (e *WithdrawalPaidEvent) EventType() string {
	return EventTypeWithdrawalPaid
}
