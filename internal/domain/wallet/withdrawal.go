package wallet

import (
	"fmt"
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents where a withdrawal request is in its lifecycle
type WithdrawalStatus string

const (
	// WithdrawalStatusPending means the request awaits review
	WithdrawalStatusPending WithdrawalStatus = "PENDING"
	// WithdrawalStatusApproved means the request passed review and awaits the payout transfer
	WithdrawalStatusApproved WithdrawalStatus = "APPROVED"
	// WithdrawalStatusPaid means the payout transfer completed
	WithdrawalStatusPaid WithdrawalStatus = "PAID"
	// WithdrawalStatusRejected means the request was declined and the reservation released
	WithdrawalStatusRejected WithdrawalStatus = "REJECTED"
	// WithdrawalStatusCancelled means the owner withdrew the request before review
	WithdrawalStatusCancelled WithdrawalStatus = "CANCELLED"
)

// String returns the string representation of WithdrawalStatus
func (s WithdrawalStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid WithdrawalStatus
func (s WithdrawalStatus) IsValid() bool {
	switch s {
	case WithdrawalStatusPending, WithdrawalStatusApproved, WithdrawalStatusPaid,
		WithdrawalStatusRejected, WithdrawalStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s WithdrawalStatus) CanTransitionTo(target WithdrawalStatus) bool {
	switch s {
	case WithdrawalStatusPending:
		return target == WithdrawalStatusApproved || target == WithdrawalStatusRejected ||
			target == WithdrawalStatusCancelled
	case WithdrawalStatusApproved:
		return target == WithdrawalStatusPaid
	case WithdrawalStatusPaid, WithdrawalStatusRejected, WithdrawalStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no further transitions are possible
func (s WithdrawalStatus) IsTerminal() bool {
	switch s {
	case WithdrawalStatusPaid, WithdrawalStatusRejected, WithdrawalStatusCancelled:
		return true
	}
	return false
}

// IsOpen returns true while the reservation still holds funds
func (s WithdrawalStatus) IsOpen() bool {
	return s == WithdrawalStatusPending || s == WithdrawalStatusApproved
}

// Withdrawal represents a request to pay out wallet funds. The payout
// destination is snapshotted from the wallet at request time so later
// wallet edits or deletes do not change where money already in flight
// is headed.
type Withdrawal struct {
	shared.TenantAggregateRoot
	UserID       uuid.UUID
	Number       string
	WalletID     uuid.UUID
	Method       Method // Snapshot from the wallet
	AccountRef   string // Snapshot from the wallet
	Currency     string // Snapshot from the wallet
	Amount       decimal.Decimal
	Status       WithdrawalStatus
	RejectReason string
	ProcessedBy  *uuid.UUID
	ProcessedAt  *time.Time
	GatewayRef   string // Transfer ID assigned by the payout gateway
	GatewayError string // Last transfer error, cleared on success
}

// NewWithdrawal creates a withdrawal request in PENDING status
func NewWithdrawal(tenantID uuid.UUID, userID uuid.UUID, number string, wallet *Wallet, amount decimal.Decimal) (*Withdrawal, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Withdrawal number cannot be empty")
	}
	if wallet == nil {
		return nil, shared.NewDomainError("INVALID_WALLET", "Wallet cannot be nil")
	}
	if wallet.UserID != userID {
		return nil, shared.NewDomainError("WALLET_OWNERSHIP", "Wallet belongs to another user")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Withdrawal amount must be positive")
	}

	withdrawal := &Withdrawal{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, userID),
		UserID:              userID,
		Number:              number,
		WalletID:            wallet.ID,
		Method:              wallet.Method,
		AccountRef:          wallet.AccountRef,
		Currency:            wallet.Currency,
		Amount:              amount,
		Status:              WithdrawalStatusPending,
	}

	withdrawal.AddDomainEvent(NewWithdrawalRequestedEvent(withdrawal))

	return withdrawal, nil
}

// Approve marks the request as reviewed and ready for payout
func (w *Withdrawal) Approve(processedBy uuid.UUID) error {
	if err := w.transition(WithdrawalStatusApproved); err != nil {
		return err
	}

	now := time.Now()
	w.ProcessedBy = &processedBy
	w.ProcessedAt = &now
	w.touch()

	w.AddDomainEvent(NewWithdrawalApprovedEvent(w))

	return nil
}

// Reject declines the request with a reason
func (w *Withdrawal) Reject(processedBy uuid.UUID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason cannot be empty")
	}
	if len(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Reject reason cannot exceed 500 characters")
	}
	if err := w.transition(WithdrawalStatusRejected); err != nil {
		return err
	}

	now := time.Now()
	w.RejectReason = reason
	w.ProcessedBy = &processedBy
	w.ProcessedAt = &now
	w.touch()

	w.AddDomainEvent(NewWithdrawalRejectedEvent(w))

	return nil
}

// Cancel lets the owner withdraw the request while it is still pending
func (w *Withdrawal) Cancel(byUserID uuid.UUID) error {
	if byUserID != w.UserID {
		return shared.ErrForbidden
	}
	if err := w.transition(WithdrawalStatusCancelled); err != nil {
		return err
	}

	w.touch()
	w.AddDomainEvent(NewWithdrawalCancelledEvent(w))

	return nil
}

// MarkPaid records the completed payout transfer
func (w *Withdrawal) MarkPaid(gatewayRef string) error {
	if gatewayRef == "" {
		return shared.NewDomainError("INVALID_GATEWAY_REF", "Gateway reference cannot be empty")
	}
	if err := w.transition(WithdrawalStatusPaid); err != nil {
		return err
	}

	w.GatewayRef = gatewayRef
	w.GatewayError = ""
	w.touch()

	w.AddDomainEvent(NewWithdrawalPaidEvent(w))

	return nil
}

// RecordGatewayError keeps the request approved but notes the failed
// transfer so the payout can be retried
func (w *Withdrawal) RecordGatewayError(message string) error {
	if w.Status != WithdrawalStatusApproved {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot record gateway error in status %s", w.Status))
	}

	w.GatewayError = message
	w.touch()

	return nil
}

func (w *Withdrawal) transition(target WithdrawalStatus) error {
	if !w.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition withdrawal from %s to %s", w.Status, target))
	}
	w.Status = target
	return nil
}

func (w *Withdrawal) touch() {
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}
