package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/trade"
	"github.com/dropship/backoffice/internal/domain/wallet"
	"go.uber.org/zap"
)

// LeadPaidHandler credits the seller's wallet when a lead reaches PAID.
// Events arrive through the outbox with at-least-once delivery, so the
// credit is keyed on the lead: a ledger entry referencing the same lead
// is never written twice.
type LeadPaidHandler struct {
	balanceRepo     wallet.BalanceRepository
	transactionRepo wallet.TransactionRepository
	logger          *zap.Logger
}

// NewLeadPaidHandler creates a new handler for lead status change events
func NewLeadPaidHandler(
	balanceRepo wallet.BalanceRepository,
	transactionRepo wallet.TransactionRepository,
	logger *zap.Logger,
) *LeadPaidHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadPaidHandler{
		balanceRepo:     balanceRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LeadPaidHandler) EventTypes() []string {
	return []string{trade.EventTypeLeadStatusChanged}
}

// Handle credits the payout for leads that just became PAID
func (h *LeadPaidHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	statusEvent, ok := event.(*trade.LeadStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeLeadStatusChanged, event.EventType())
	}

	if statusEvent.NewStatus != trade.LeadStatusPaid.String() {
		return nil
	}

	if statusEvent.Payout.IsZero() {
		h.logger.Info("lead paid with zero payout, nothing to credit",
			zap.String("lead_id", statusEvent.LeadID.String()),
			zap.String("number", statusEvent.Number),
		)
		return nil
	}

	tenantID := statusEvent.TenantID()

	credited, err := h.transactionRepo.ExistsByReference(ctx, tenantID,
		wallet.ReferenceTypeLead, statusEvent.LeadID, wallet.TransactionTypeCredit)
	if err != nil {
		return fmt.Errorf("payout dedup check failed: %w", err)
	}
	if credited {
		h.logger.Info("lead payout already credited, skipping",
			zap.String("lead_id", statusEvent.LeadID.String()),
			zap.String("number", statusEvent.Number),
		)
		return nil
	}

	balance, err := h.balanceRepo.GetOrCreate(ctx, tenantID, statusEvent.SellerID)
	if err != nil {
		return fmt.Errorf("load seller balance: %w", err)
	}

	entry, err := balance.Credit(statusEvent.Payout, wallet.SourceLeadPayout)
	if err != nil {
		return fmt.Errorf("credit payout: %w", err)
	}
	entry.WithReference(wallet.ReferenceTypeLead, statusEvent.LeadID).
		WithDescription(fmt.Sprintf("Payout for lead %s", statusEvent.Number))

	if err := h.balanceRepo.SaveWithEntries(ctx, balance, []*wallet.Transaction{entry}); err != nil {
		// The ledger's unique credit reference catches redeliveries
		// that slip past the lookup above.
		if errors.Is(err, shared.ErrAlreadyExists) {
			h.logger.Info("lead payout already credited, skipping",
				zap.String("lead_id", statusEvent.LeadID.String()),
				zap.String("number", statusEvent.Number),
			)
			return nil
		}
		return fmt.Errorf("persist payout credit: %w", err)
	}

	h.logger.Info("lead payout credited",
		zap.String("lead_id", statusEvent.LeadID.String()),
		zap.String("number", statusEvent.Number),
		zap.String("seller_id", statusEvent.SellerID.String()),
		zap.String("amount", statusEvent.Payout.String()),
	)

	return nil
}

// Ensure LeadPaidHandler implements shared.EventHandler
var _ shared.EventHandler = (*LeadPaidHandler)(nil)
