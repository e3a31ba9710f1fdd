package postback

import (
	"context"
	"fmt"
	"time"

	"github.com/dropship/backoffice/internal/domain/postback"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/trade"
	"go.uber.org/zap"
)

// LeadStatusChangedHandler fans lead status changes out to the matching
// enabled postback subscriptions of the lead's seller. Each match becomes
// a PENDING delivery that the dispatcher sends asynchronously.
//
// The handler runs behind the idempotent event wrapper; the per-config
// ExistsForEvent check is the database backstop for replays that outlive
// the Redis dedup window.
type LeadStatusChangedHandler struct {
	configRepo   postback.ConfigRepository
	deliveryRepo postback.DeliveryRepository
	logger       *zap.Logger
}

// NewLeadStatusChangedHandler creates a new LeadStatusChangedHandler
func NewLeadStatusChangedHandler(
	configRepo postback.ConfigRepository,
	deliveryRepo postback.DeliveryRepository,
	logger *zap.Logger,
) *LeadStatusChangedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadStatusChangedHandler{
		configRepo:   configRepo,
		deliveryRepo: deliveryRepo,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LeadStatusChangedHandler) EventTypes() []string {
	return []string{trade.EventTypeLeadStatusChanged}
}

// Handle enqueues one delivery per matching subscription
func (h *LeadStatusChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	statusEvent, ok := event.(*trade.LeadStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}

	configs, err := h.configRepo.FindEnabledByUser(ctx, statusEvent.TenantID(), statusEvent.SellerID)
	if err != nil {
		return fmt.Errorf("load postback configs: %w", err)
	}
	if len(configs) == 0 {
		return nil
	}

	values := buildMacroValues(statusEvent)

	deliveries := make([]*postback.Delivery, 0, len(configs))
	for _, config := range configs {
		if !config.MatchesStatus(statusEvent.NewStatus) {
			continue
		}

		exists, err := h.deliveryRepo.ExistsForEvent(ctx, config.ID, statusEvent.EventID())
		if err != nil {
			return fmt.Errorf("check existing delivery: %w", err)
		}
		if exists {
			h.logger.Debug("postback delivery already enqueued for event",
				zap.String("config_id", config.ID.String()),
				zap.String("event_id", statusEvent.EventID().String()),
			)
			continue
		}

		delivery, err := postback.NewDelivery(config, statusEvent.LeadID, statusEvent.EventID(), statusEvent.NewStatus, values)
		if err != nil {
			// A config broken badly enough to fail rendering should not
			// hold the rest of the fan-out hostage.
			h.logger.Error("failed to build postback delivery",
				zap.String("config_id", config.ID.String()),
				zap.String("lead_id", statusEvent.LeadID.String()),
				zap.Error(err),
			)
			continue
		}
		deliveries = append(deliveries, delivery)
	}

	if len(deliveries) == 0 {
		return nil
	}

	if err := h.deliveryRepo.Save(ctx, deliveries...); err != nil {
		return fmt.Errorf("enqueue postback deliveries: %w", err)
	}

	h.logger.Info("postback deliveries enqueued",
		zap.String("lead_id", statusEvent.LeadID.String()),
		zap.String("status", statusEvent.NewStatus),
		zap.Int("count", len(deliveries)),
	)

	return nil
}

func buildMacroValues(event *trade.LeadStatusChangedEvent) postback.MacroValues {
	return postback.MacroValues{
		LeadID:     event.LeadID.String(),
		Number:     event.Number,
		ExternalID: event.ExternalID,
		Status:     event.NewStatus,
		Payout:     event.Payout.String(),
		Total:      event.Total.String(),
		Currency:   event.Currency,
		SKU:        event.ProductSKU,
		Sub1:       event.Sub1,
		Sub2:       event.Sub2,
		Sub3:       event.Sub3,
		Sub4:       event.Sub4,
		Sub5:       event.Sub5,
		ChangedAt:  event.ChangedAt.UTC().Format(time.RFC3339),
	}
}

// Ensure LeadStatusChangedHandler implements EventHandler
var _ shared.EventHandler = (*LeadStatusChangedHandler)(nil)
