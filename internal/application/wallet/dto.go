package wallet

import (
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Wallet DTOs ====================

// CreateWalletRequest represents a request to register a payout wallet
type CreateWalletRequest struct {
	Method     string `json:"method" binding:"required,oneof=BANK CARD PAYPAL USDT STRIPE"`
	Label      string `json:"label" binding:"required,min=1,max=100"`
	AccountRef string `json:"account_ref" binding:"required,min=1,max=200"`
	Currency   string `json:"currency" binding:"omitempty,len=3"`
	SetDefault bool   `json:"set_default"`
}

// UpdateWalletRequest represents a request to edit a payout wallet
type UpdateWalletRequest struct {
	Label      *string `json:"label" binding:"omitempty,min=1,max=100"`
	AccountRef *string `json:"account_ref" binding:"omitempty,min=1,max=200"`
}

// WalletResponse represents a payout wallet in API responses.
// The account reference is masked; the full value never leaves the server.
type WalletResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Method     string    `json:"method"`
	Label      string    `json:"label"`
	AccountRef string    `json:"account_ref"`
	Currency   string    `json:"currency"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ==================== Ledger DTOs ====================

// TransactionListFilter represents filter options for the ledger listing
type TransactionListFilter struct {
	Type     string     `form:"type" binding:"omitempty,oneof=CREDIT DEBIT WITHDRAWAL WITHDRAWAL_REVERSAL ADJUSTMENT"`
	Source   string     `form:"source" binding:"omitempty,oneof=LEAD_PAYOUT WITHDRAWAL MANUAL CORRECTION"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
}

// TransactionResponse represents one ledger entry in API responses
type TransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Amount        decimal.Decimal `json:"amount"`
	SignedAmount  decimal.Decimal `json:"signed_amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	Description   string          `json:"description,omitempty"`
	OperatorID    *uuid.UUID      `json:"operator_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// BalanceSummaryResponse represents a user's wallet money at a glance
type BalanceSummaryResponse struct {
	Available         decimal.Decimal `json:"available"`
	Pending           decimal.Decimal `json:"pending"`
	Total             decimal.Decimal `json:"total"`
	LifetimeEarned    decimal.Decimal `json:"lifetime_earned"`
	LifetimeWithdrawn decimal.Decimal `json:"lifetime_withdrawn"`
}

// AdjustBalanceRequest represents an operator's manual balance correction.
// A positive amount credits the user, a negative amount debits them.
type AdjustBalanceRequest struct {
	UserID      uuid.UUID       `json:"user_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required,min=1,max=500"`
}

// ==================== Withdrawal DTOs ====================

// CreateWithdrawalRequest represents a request to withdraw wallet funds
type CreateWithdrawalRequest struct {
	WalletID uuid.UUID       `json:"wallet_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// RejectWithdrawalRequest represents an admin declining a withdrawal
type RejectWithdrawalRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// WithdrawalListFilter represents filter options for the withdrawal list
type WithdrawalListFilter struct {
	Status    string     `form:"status" binding:"omitempty,oneof=PENDING APPROVED PAID REJECTED CANCELLED"`
	UserID    *uuid.UUID `form:"user_id"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// WithdrawalResponse represents a withdrawal request in API responses
type WithdrawalResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	UserID       uuid.UUID       `json:"user_id"`
	WalletID     uuid.UUID       `json:"wallet_id"`
	Method       string          `json:"method"`
	AccountRef   string          `json:"account_ref"`
	Currency     string          `json:"currency"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	RejectReason string          `json:"reject_reason,omitempty"`
	ProcessedBy  *uuid.UUID      `json:"processed_by,omitempty"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
	GatewayRef   string          `json:"gateway_ref,omitempty"`
	GatewayError string          `json:"gateway_error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// WithdrawalStatusSummary represents withdrawal counts per status
type WithdrawalStatusSummary struct {
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Paid      int64 `json:"paid"`
	Rejected  int64 `json:"rejected"`
	Cancelled int64 `json:"cancelled"`
	Total     int64 `json:"total"`
}

// ==================== Converters ====================

// ToWalletResponse converts a domain Wallet to WalletResponse
func ToWalletResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:         w.ID,
		UserID:     w.UserID,
		Method:     w.Method.String(),
		Label:      w.Label,
		AccountRef: w.MaskedAccountRef(),
		Currency:   w.Currency,
		IsDefault:  w.IsDefault,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

// ToWalletResponses converts a slice of domain Wallets to responses
func ToWalletResponses(wallets []wallet.Wallet) []WalletResponse {
	responses := make([]WalletResponse, len(wallets))
	for i := range wallets {
		responses[i] = ToWalletResponse(&wallets[i])
	}
	return responses
}

// ToTransactionResponse converts a domain Transaction to TransactionResponse
func ToTransactionResponse(t *wallet.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		UserID:        t.UserID,
		Type:          t.Type.String(),
		Source:        t.Source.String(),
		Amount:        t.Amount,
		SignedAmount:  t.GetSignedAmount(),
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		ReferenceType: t.ReferenceType,
		ReferenceID:   t.ReferenceID,
		Description:   t.Description,
		OperatorID:    t.OperatorID,
		OccurredAt:    t.OccurredAt,
	}
}

// ToTransactionResponses converts a slice of ledger entries to responses
func ToTransactionResponses(transactions []*wallet.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		responses[i] = ToTransactionResponse(t)
	}
	return responses
}

// ToWithdrawalResponse converts a domain Withdrawal to WithdrawalResponse
func ToWithdrawalResponse(w *wallet.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:           w.ID,
		Number:       w.Number,
		UserID:       w.UserID,
		WalletID:     w.WalletID,
		Method:       w.Method.String(),
		AccountRef:   maskAccountRef(w.AccountRef),
		Currency:     w.Currency,
		Amount:       w.Amount,
		Status:       w.Status.String(),
		RejectReason: w.RejectReason,
		ProcessedBy:  w.ProcessedBy,
		ProcessedAt:  w.ProcessedAt,
		GatewayRef:   w.GatewayRef,
		GatewayError: w.GatewayError,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

// ToWithdrawalResponses converts a slice of domain Withdrawals to responses
func ToWithdrawalResponses(withdrawals []wallet.Withdrawal) []WithdrawalResponse {
	responses := make([]WithdrawalResponse, len(withdrawals))
	for i := range withdrawals {
		responses[i] = ToWithdrawalResponse(&withdrawals[i])
	}
	return responses
}

// maskAccountRef hides the middle of an account reference snapshot
func maskAccountRef(ref string) string {
	if len(ref) <= 8 {
		return strings.Repeat("*", len(ref))
	}
	return ref[:4] + strings.Repeat("*", len(ref)-8) + ref[len(ref)-4:]
}
