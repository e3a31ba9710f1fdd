package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payout gateway errors
var (
	// ErrPayoutGatewayUnavailable means the gateway could not be reached; the transfer may be retried
	ErrPayoutGatewayUnavailable = errors.New("payout: gateway temporarily unavailable")
	// ErrPayoutDestinationRejected means the gateway refused the destination account
	ErrPayoutDestinationRejected = errors.New("payout: destination rejected by gateway")
	// ErrPayoutAmountRejected means the gateway refused the transfer amount
	ErrPayoutAmountRejected = errors.New("payout: amount rejected by gateway")
	// ErrPayoutDuplicate means a transfer with the same idempotency key already exists
	ErrPayoutDuplicate = errors.New("payout: transfer already processed")
)

// PayoutRequest represents a transfer order sent to the payout gateway
type PayoutRequest struct {
	// TenantID is the tenant paying out
	TenantID uuid.UUID
	// WithdrawalID is our internal withdrawal ID
	WithdrawalID uuid.UUID
	// Number is our withdrawal number, used as the gateway idempotency key
	Number string
	// Method is the payout method snapshotted on the withdrawal
	Method Method
	// AccountRef is the destination account snapshotted on the withdrawal
	AccountRef string
	// Amount is the transfer amount
	Amount decimal.Decimal
	// Currency is the transfer currency (ISO 4217)
	Currency string
	// Description is shown on the recipient's statement where supported
	Description string
}

// PayoutResult represents a completed or accepted transfer
type PayoutResult struct {
	// TransferRef is the transfer ID assigned by the gateway
	TransferRef string
	// RawResponse is the original gateway response (JSON), kept for audits
	RawResponse string
}

// PayoutGateway executes withdrawal transfers through an external
// payment provider
type PayoutGateway interface {
	// CreateTransfer sends the payout. Implementations must be idempotent
	// on PayoutRequest.Number so retries never double-pay.
	CreateTransfer(ctx context.Context, req *PayoutRequest) (*PayoutResult, error)
}
