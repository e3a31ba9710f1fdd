package postback

import (
	"context"

	"github.com/dropship/backoffice/internal/domain/postback"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeliveryService serves the postback delivery log and the dead-letter
// requeue used by admins to revive exhausted deliveries
type DeliveryService struct {
	deliveryRepo postback.DeliveryRepository
	configRepo   postback.ConfigRepository
	logger       *zap.Logger
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(
	deliveryRepo postback.DeliveryRepository,
	configRepo postback.ConfigRepository,
	logger *zap.Logger,
) *DeliveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		configRepo:   configRepo,
		logger:       logger,
	}
}

// ListByConfig returns the delivery log for one subscription. A non-nil
// userScope restricts access to the subscription owner.
func (s *DeliveryService) ListByConfig(ctx context.Context, tenantID, configID uuid.UUID, userScope *uuid.UUID, filter DeliveryListFilter) ([]*DeliveryResponse, int64, error) {
	config, err := s.configRepo.FindByIDForTenant(ctx, configID, tenantID)
	if err != nil {
		return nil, 0, err
	}
	if userScope != nil && config.UserID != *userScope {
		return nil, 0, shared.ErrNotFound
	}

	domainFilter := postback.DeliveryFilter{
		ConfigID: &config.ID,
		LeadID:   filter.LeadID,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if filter.Status != "" {
		status := postback.DeliveryStatus(filter.Status)
		domainFilter.Status = &status
	}

	deliveries, total, err := s.deliveryRepo.List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToDeliveryResponses(deliveries), total, nil
}

// GetByID returns a single delivery record
func (s *DeliveryService) GetByID(ctx context.Context, tenantID, deliveryID uuid.UUID) (*DeliveryResponse, error) {
	delivery, err := s.deliveryRepo.FindByIDForTenant(ctx, deliveryID, tenantID)
	if err != nil {
		return nil, err
	}
	return ToDeliveryResponse(delivery), nil
}

// ListDead returns deliveries that exhausted their attempt budget
func (s *DeliveryService) ListDead(ctx context.Context, tenantID uuid.UUID, limit int) ([]*DeliveryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	deliveries, err := s.deliveryRepo.FindDead(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}
	return ToDeliveryResponses(deliveries), nil
}

// Requeue puts a DEAD delivery back on the dispatch queue with a fresh
// attempt budget
func (s *DeliveryService) Requeue(ctx context.Context, tenantID, deliveryID uuid.UUID) (*DeliveryResponse, error) {
	delivery, err := s.deliveryRepo.FindByIDForTenant(ctx, deliveryID, tenantID)
	if err != nil {
		return nil, err
	}

	if err := delivery.ResetForRetry(); err != nil {
		return nil, err
	}

	if err := s.deliveryRepo.Update(ctx, delivery); err != nil {
		return nil, err
	}

	s.logger.Info("dead postback delivery requeued",
		zap.String("delivery_id", delivery.ID.String()),
		zap.String("config_id", delivery.ConfigID.String()),
		zap.String("tenant_id", tenantID.String()),
	)

	return ToDeliveryResponse(delivery), nil
}

// GetSummary returns delivery totals per status for a tenant
func (s *DeliveryService) GetSummary(ctx context.Context, tenantID uuid.UUID) (*DeliverySummaryResponse, error) {
	counts, err := s.deliveryRepo.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	summary := &DeliverySummaryResponse{
		Pending:    counts[postback.DeliveryStatusPending],
		Processing: counts[postback.DeliveryStatusProcessing],
		Sent:       counts[postback.DeliveryStatusSent],
		Failed:     counts[postback.DeliveryStatusFailed],
		Dead:       counts[postback.DeliveryStatusDead],
	}
	summary.Total = summary.Pending + summary.Processing + summary.Sent + summary.Failed + summary.Dead

	return summary, nil
}
