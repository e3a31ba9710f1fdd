package postback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dropship/backoffice/internal/domain/postback"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DispatcherConfig holds configuration for the postback dispatcher
type DispatcherConfig struct {
	// BatchSize is how many deliveries one poll claims per queue
	BatchSize int
	// PollInterval is how often the delivery queue is polled
	PollInterval time.Duration
	// RequestTimeout bounds a single HTTP attempt
	RequestTimeout time.Duration
	// DisableThreshold is the consecutive-failure streak that disables a config
	DisableThreshold int
}

// DefaultDispatcherConfig returns default dispatcher configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		RequestTimeout:   10 * time.Second,
		DisableThreshold: postback.DefaultDisableThreshold,
	}
}

// Dispatcher drains the postback delivery queue in the background: it claims
// batches of due deliveries, performs the HTTP calls, and feeds the outcome
// back into the delivery record and the owning config's failure streak.
type Dispatcher struct {
	deliveryRepo   postback.DeliveryRepository
	configRepo     postback.ConfigRepository
	client         *http.Client
	eventPublisher shared.EventPublisher
	config         DispatcherConfig
	logger         *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a new postback dispatcher
func NewDispatcher(
	deliveryRepo postback.DeliveryRepository,
	configRepo postback.ConfigRepository,
	config DispatcherConfig,
	logger *zap.Logger,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultDispatcherConfig().BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultDispatcherConfig().PollInterval
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultDispatcherConfig().RequestTimeout
	}
	if config.DisableThreshold <= 0 {
		config.DisableThreshold = DefaultDispatcherConfig().DisableThreshold
	}

	return &Dispatcher{
		deliveryRepo: deliveryRepo,
		configRepo:   configRepo,
		client:       &http.Client{Timeout: config.RequestTimeout},
		config:       config,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for config lifecycle events
func (d *Dispatcher) SetEventPublisher(publisher shared.EventPublisher) {
	d.eventPublisher = publisher
}

// Start starts the background dispatch loop
func (d *Dispatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.dispatchLoop(ctx)

	d.logger.Info("Postback dispatcher started",
		zap.Int("batch_size", d.config.BatchSize),
		zap.Duration("poll_interval", d.config.PollInterval),
		zap.Duration("request_timeout", d.config.RequestTimeout),
	)

	return nil
}

// Stop gracefully stops the dispatcher
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Postback dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatchLoop is the main polling loop
func (d *Dispatcher) dispatchLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch claims and dispatches one batch of pending and retryable
// deliveries. Exposed so tests and manual triggers can run a single pass.
func (d *Dispatcher) ProcessBatch(ctx context.Context) {
	pending, err := d.deliveryRepo.FindPending(ctx, d.config.BatchSize)
	if err != nil {
		d.logger.Error("Failed to find pending deliveries", zap.Error(err))
		return
	}
	if len(pending) > 0 {
		d.dispatchAll(ctx, pending)
	}

	retryable, err := d.deliveryRepo.FindRetryable(ctx, d.config.BatchSize)
	if err != nil {
		d.logger.Error("Failed to find retryable deliveries", zap.Error(err))
		return
	}
	if len(retryable) > 0 {
		d.dispatchAll(ctx, retryable)
	}
}

// dispatchAll claims a slice of deliveries and sends them one by one
func (d *Dispatcher) dispatchAll(ctx context.Context, deliveries []*postback.Delivery) {
	ids := make([]uuid.UUID, len(deliveries))
	for i, delivery := range deliveries {
		ids[i] = delivery.ID
	}

	if err := d.deliveryRepo.MarkProcessing(ctx, ids); err != nil {
		d.logger.Error("Failed to claim deliveries", zap.Error(err))
		return
	}

	for _, delivery := range deliveries {
		if err := delivery.MarkProcessing(); err != nil {
			d.logger.Warn("Skipping delivery in unexpected state",
				zap.String("delivery_id", delivery.ID.String()),
				zap.String("status", string(delivery.Status)),
			)
			continue
		}
		d.dispatch(ctx, delivery)
	}
}

// dispatch performs one HTTP attempt for a claimed delivery
func (d *Dispatcher) dispatch(ctx context.Context, delivery *postback.Delivery) {
	cfg, err := d.configRepo.FindByID(ctx, delivery.ConfigID)
	if err != nil {
		// Config deleted while queued: burn the attempt so the chain dies out
		delivery.MarkFailed(0, "", "postback config not found")
		d.saveDelivery(ctx, delivery)
		return
	}

	if !cfg.Enabled {
		// A re-enabled config picks the chain back up on the next retry
		delivery.MarkFailed(0, "", "postback config is disabled")
		d.saveDelivery(ctx, delivery)
		return
	}

	status, body, sendErr := d.send(ctx, delivery, cfg.SecretToken)

	switch {
	case sendErr != nil:
		delivery.MarkFailed(0, "", sendErr.Error())
		d.recordFailure(ctx, cfg, delivery, sendErr.Error())
	case status >= 200 && status < 300:
		delivery.MarkSent(status, body)
		cfg.RecordSuccess()
		d.saveConfig(ctx, cfg)
		d.logger.Debug("Postback delivered",
			zap.String("delivery_id", delivery.ID.String()),
			zap.String("config_id", cfg.ID.String()),
			zap.Int("http_status", status),
		)
	default:
		errMsg := fmt.Sprintf("HTTP %d", status)
		delivery.MarkFailed(status, body, errMsg)
		d.recordFailure(ctx, cfg, delivery, errMsg)
	}

	d.saveDelivery(ctx, delivery)
}

// send performs the HTTP call for a delivery. A non-nil error means the
// request never produced a response; HTTP status handling is the caller's.
func (d *Dispatcher) send(ctx context.Context, delivery *postback.Delivery, secretToken string) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.config.RequestTimeout)
	defer cancel()

	var bodyReader io.Reader
	if delivery.Method == postback.MethodPost && len(delivery.RequestBody) > 0 {
		bodyReader = bytes.NewReader(delivery.RequestBody)
	}

	req, err := http.NewRequestWithContext(ctx, string(delivery.Method), delivery.URL, bodyReader)
	if err != nil {
		return 0, "", err
	}
	if delivery.Method == postback.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	if secretToken != "" {
		req.Header.Set("X-Postback-Token", secretToken)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, postback.MaxResponseBodySize))
	return resp.StatusCode, string(body), nil
}

// recordFailure feeds a failed attempt into the config's failure streak
func (d *Dispatcher) recordFailure(ctx context.Context, cfg *postback.Config, delivery *postback.Delivery, errMsg string) {
	autoDisabled := cfg.RecordFailure(errMsg, d.config.DisableThreshold)
	d.saveConfig(ctx, cfg)

	if autoDisabled {
		d.logger.Warn("Postback config auto-disabled after consecutive failures",
			zap.String("config_id", cfg.ID.String()),
			zap.Int("failure_count", cfg.FailureCount),
			zap.String("last_error", errMsg),
		)
	}
	if delivery.IsDead() {
		d.logger.Warn("Postback delivery moved to dead letter queue",
			zap.String("delivery_id", delivery.ID.String()),
			zap.String("config_id", cfg.ID.String()),
			zap.Int("attempts", delivery.AttemptCount),
			zap.String("last_error", errMsg),
		)
	}
}

// saveDelivery persists the delivery outcome
func (d *Dispatcher) saveDelivery(ctx context.Context, delivery *postback.Delivery) {
	if err := d.deliveryRepo.Update(ctx, delivery); err != nil {
		d.logger.Error("Failed to update delivery",
			zap.String("delivery_id", delivery.ID.String()),
			zap.Error(err),
		)
	}
}

// saveConfig persists streak changes and publishes any lifecycle events.
// Version conflicts are only logged: a concurrent admin edit wins over
// streak bookkeeping.
func (d *Dispatcher) saveConfig(ctx context.Context, cfg *postback.Config) {
	if err := d.configRepo.SaveWithLock(ctx, cfg); err != nil {
		d.logger.Warn("Failed to update config failure streak",
			zap.String("config_id", cfg.ID.String()),
			zap.Error(err),
		)
		cfg.ClearDomainEvents()
		return
	}

	if events := cfg.GetDomainEvents(); len(events) > 0 {
		if d.eventPublisher != nil {
			_ = d.eventPublisher.Publish(ctx, events...)
		}
		cfg.ClearDomainEvents()
	}
}
