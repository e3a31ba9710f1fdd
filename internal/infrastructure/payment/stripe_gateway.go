package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dropship/backoffice/internal/domain/wallet"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/payout"
	"go.uber.org/zap"
)

// StripePayoutGateway implements wallet.PayoutGateway using Stripe Payouts.
// The withdrawal number doubles as the Stripe idempotency key, so a retried
// transfer never pays out twice.
type StripePayoutGateway struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripePayoutGateway creates a new Stripe payout gateway
func NewStripePayoutGateway(config *StripeConfig, logger *zap.Logger) (*StripePayoutGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Initialize Stripe client
	config.InitStripeClient()

	return &StripePayoutGateway{
		config: config,
		logger: logger,
	}, nil
}

// CreateTransfer sends the payout through Stripe
func (g *StripePayoutGateway) CreateTransfer(ctx context.Context, req *wallet.PayoutRequest) (*wallet.PayoutResult, error) {
	g.logger.Debug("Creating Stripe payout",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("withdrawal_number", req.Number),
		zap.String("amount", req.Amount.String()),
		zap.String("currency", req.Currency))

	description := req.Description
	if description == "" {
		description = g.config.StatementDescriptor
	}

	params := &stripe.PayoutParams{
		// Stripe amounts are in the smallest currency unit
		Amount:      stripe.Int64(req.Amount.Shift(2).IntPart()),
		Currency:    stripe.String(req.Currency),
		Destination: stripe.String(req.AccountRef),
		Method:      stripe.String("standard"),
	}
	if description != "" {
		params.Description = stripe.String(description)
	}
	params.Metadata = map[string]string{
		"tenant_id":     req.TenantID.String(),
		"withdrawal_id": req.WithdrawalID.String(),
		"number":        req.Number,
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.Number)

	p, err := payout.New(params)
	if err != nil {
		g.logger.Error("Stripe payout failed",
			zap.String("withdrawal_number", req.Number),
			zap.Error(err))
		return nil, g.translateError(err)
	}

	raw, _ := json.Marshal(p)

	g.logger.Info("Created Stripe payout",
		zap.String("withdrawal_number", req.Number),
		zap.String("payout_id", p.ID))

	return &wallet.PayoutResult{
		TransferRef: p.ID,
		RawResponse: string(raw),
	}, nil
}

// translateError maps Stripe API errors onto the domain payout errors so the
// withdrawal service can tell retryable failures from permanent ones.
func (g *StripePayoutGateway) translateError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %v", wallet.ErrPayoutGatewayUnavailable, err)
	}

	switch stripeErr.Type {
	case stripe.ErrorTypeAPI:
		return fmt.Errorf("%w: %s", wallet.ErrPayoutGatewayUnavailable, stripeErr.Msg)
	case stripe.ErrorTypeIdempotency:
		return fmt.Errorf("%w: %s", wallet.ErrPayoutDuplicate, stripeErr.Msg)
	}

	switch stripeErr.Code {
	case stripe.ErrorCodeAmountTooLarge, stripe.ErrorCodeAmountTooSmall, stripe.ErrorCodeBalanceInsufficient:
		return fmt.Errorf("%w: %s", wallet.ErrPayoutAmountRejected, stripeErr.Msg)
	case stripe.ErrorCodeAccountInvalid, stripe.ErrorCodeBankAccountUnusable, stripe.ErrorCodeInstantPayoutsUnsupported:
		return fmt.Errorf("%w: %s", wallet.ErrPayoutDestinationRejected, stripeErr.Msg)
	case stripe.ErrorCodeRateLimit:
		return fmt.Errorf("%w: %s", wallet.ErrPayoutGatewayUnavailable, stripeErr.Msg)
	}

	return fmt.Errorf("stripe: payout rejected: %s", stripeErr.Msg)
}
