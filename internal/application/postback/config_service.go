package postback

import (
	"context"
	"time"

	"github.com/dropship/backoffice/internal/domain/postback"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConfigServiceConfig holds limits for postback subscription management
type ConfigServiceConfig struct {
	// MaxConfigsPerUser caps how many subscriptions a single user may register
	MaxConfigsPerUser int
}

// DefaultConfigServiceConfig returns the default configuration
func DefaultConfigServiceConfig() ConfigServiceConfig {
	return ConfigServiceConfig{
		MaxConfigsPerUser: 10,
	}
}

// ConfigService handles postback subscription use cases
type ConfigService struct {
	configRepo     postback.ConfigRepository
	deliveryRepo   postback.DeliveryRepository
	eventPublisher shared.EventPublisher
	config         ConfigServiceConfig
	logger         *zap.Logger
}

// NewConfigService creates a new ConfigService
func NewConfigService(
	configRepo postback.ConfigRepository,
	deliveryRepo postback.DeliveryRepository,
	config ConfigServiceConfig,
	logger *zap.Logger,
) *ConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxConfigsPerUser <= 0 {
		config.MaxConfigsPerUser = DefaultConfigServiceConfig().MaxConfigsPerUser
	}
	return &ConfigService{
		configRepo:   configRepo,
		deliveryRepo: deliveryRepo,
		config:       config,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ConfigService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a new postback subscription for a user
func (s *ConfigService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateConfigRequest) (*ConfigResponse, error) {
	count, err := s.configRepo.CountByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.config.MaxConfigsPerUser) {
		return nil, shared.NewDomainError("CONFIG_LIMIT_REACHED", "Postback subscription limit reached for this user")
	}

	config, err := postback.NewConfig(tenantID, userID, req.Name, req.URLTemplate, postback.Method(req.Method))
	if err != nil {
		return nil, err
	}

	if len(req.Statuses) > 0 {
		if err := config.SetStatuses(req.Statuses); err != nil {
			return nil, err
		}
	}
	if req.SecretToken != "" {
		if err := config.SetSecretToken(req.SecretToken); err != nil {
			return nil, err
		}
	}

	if err := s.configRepo.Save(ctx, config); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, config)

	s.logger.Info("postback config created",
		zap.String("config_id", config.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", userID.String()),
		zap.String("method", config.Method.String()),
	)

	return ToConfigResponse(config), nil
}

// GetByID returns a single subscription. A non-nil userScope restricts
// access to that user's own subscriptions.
func (s *ConfigService) GetByID(ctx context.Context, tenantID, configID uuid.UUID, userScope *uuid.UUID) (*ConfigResponse, error) {
	config, err := s.findOwnedConfig(ctx, tenantID, configID, userScope)
	if err != nil {
		return nil, err
	}
	return ToConfigResponse(config), nil
}

// List returns a user's subscriptions, newest first
func (s *ConfigService) List(ctx context.Context, tenantID, userID uuid.UUID) ([]*ConfigResponse, error) {
	configs, err := s.configRepo.FindByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return ToConfigResponses(configs), nil
}

// Update changes a subscription's name, URL template, method and
// optionally its status filter and secret token
func (s *ConfigService) Update(ctx context.Context, tenantID, configID uuid.UUID, userScope *uuid.UUID, req UpdateConfigRequest) (*ConfigResponse, error) {
	config, err := s.findOwnedConfig(ctx, tenantID, configID, userScope)
	if err != nil {
		return nil, err
	}

	if err := config.Update(req.Name, req.URLTemplate, postback.Method(req.Method)); err != nil {
		return nil, err
	}
	if req.Statuses != nil {
		if err := config.SetStatuses(*req.Statuses); err != nil {
			return nil, err
		}
	}
	if req.SecretToken != nil {
		if err := config.SetSecretToken(*req.SecretToken); err != nil {
			return nil, err
		}
	}

	if err := s.configRepo.SaveWithLock(ctx, config); err != nil {
		return nil, err
	}

	return ToConfigResponse(config), nil
}

// Enable switches a subscription on and resets its failure streak
func (s *ConfigService) Enable(ctx context.Context, tenantID, configID uuid.UUID, userScope *uuid.UUID) (*ConfigResponse, error) {
	return s.changeEnabled(ctx, tenantID, configID, userScope, func(c *postback.Config) { c.Enable() })
}

// Disable switches a subscription off
func (s *ConfigService) Disable(ctx context.Context, tenantID, configID uuid.UUID, userScope *uuid.UUID) (*ConfigResponse, error) {
	return s.changeEnabled(ctx, tenantID, configID, userScope, func(c *postback.Config) { c.Disable() })
}

// Delete removes a subscription. Existing deliveries are kept for the
// debug log until the retention purge collects them.
func (s *ConfigService) Delete(ctx context.Context, tenantID, configID uuid.UUID, userScope *uuid.UUID) error {
	config, err := s.findOwnedConfig(ctx, tenantID, configID, userScope)
	if err != nil {
		return err
	}

	if err := s.configRepo.DeleteForTenant(ctx, config.ID, tenantID); err != nil {
		return err
	}

	s.logger.Info("postback config deleted",
		zap.String("config_id", config.ID.String()),
		zap.String("tenant_id", tenantID.String()),
	)

	return nil
}

// SendTest enqueues a synthetic delivery with sample values so the
// subscriber can verify their endpoint end to end. The delivery goes
// through the regular dispatcher, retries included.
func (s *ConfigService) SendTest(ctx context.Context, tenantID, configID uuid.UUID, userScope *uuid.UUID) (*DeliveryResponse, error) {
	config, err := s.findOwnedConfig(ctx, tenantID, configID, userScope)
	if err != nil {
		return nil, err
	}

	status := "CONFIRMED"
	if len(config.Statuses) > 0 {
		status = config.Statuses[0]
	}

	values := postback.MacroValues{
		LeadID:     uuid.New().String(),
		Number:     "TEST-000001",
		ExternalID: "test-click-id",
		Status:     status,
		Payout:     "5.00",
		Total:      "29.90",
		Currency:   "USD",
		SKU:        "TEST-SKU",
		Sub1:       "test",
		ChangedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	delivery, err := postback.NewDelivery(config, uuid.New(), uuid.New(), status, values)
	if err != nil {
		return nil, err
	}

	if err := s.deliveryRepo.Save(ctx, delivery); err != nil {
		return nil, err
	}

	s.logger.Info("postback test delivery enqueued",
		zap.String("config_id", config.ID.String()),
		zap.String("delivery_id", delivery.ID.String()),
	)

	return ToDeliveryResponse(delivery), nil
}

func (s *ConfigService) changeEnabled(ctx context.Context, tenantID, configID uuid.UUID, userScope *uuid.UUID, mutate func(*postback.Config)) (*ConfigResponse, error) {
	config, err := s.findOwnedConfig(ctx, tenantID, configID, userScope)
	if err != nil {
		return nil, err
	}

	mutate(config)

	if err := s.configRepo.SaveWithLock(ctx, config); err != nil {
		return nil, err
	}

	return ToConfigResponse(config), nil
}

// findOwnedConfig loads a config and enforces the ownership scope.
// Foreign configs surface as not-found so their existence leaks nothing.
func (s *ConfigService) findOwnedConfig(ctx context.Context, tenantID, configID uuid.UUID, userScope *uuid.UUID) (*postback.Config, error) {
	config, err := s.configRepo.FindByIDForTenant(ctx, configID, tenantID)
	if err != nil {
		return nil, err
	}
	if userScope != nil && config.UserID != *userScope {
		return nil, shared.ErrNotFound
	}
	return config, nil
}

func (s *ConfigService) publishEvents(ctx context.Context, config *postback.Config) {
	if s.eventPublisher == nil {
		return
	}
	events := config.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish postback config events",
			zap.String("config_id", config.ID.String()),
			zap.Error(err),
		)
	}
	config.ClearDomainEvents()
}
