package postback

import (
	"context"
	"fmt"
	"time"

	"github.com/dropship/backoffice/internal/domain/postback"
	"github.com/dropship/backoffice/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// PurgeServiceConfig holds delivery purge configuration
type PurgeServiceConfig struct {
	// Retention is how long SENT and DEAD deliveries are kept
	Retention time.Duration
}

// DefaultPurgeServiceConfig returns default purge configuration
func DefaultPurgeServiceConfig() PurgeServiceConfig {
	return PurgeServiceConfig{
		Retention: 7 * 24 * time.Hour,
	}
}

// PurgeService removes delivered and dead postback deliveries once they age
// past retention. It runs as the executor for DELIVERY_PURGE jobs; pending
// and retryable deliveries are never touched.
type PurgeService struct {
	deliveryRepo postback.DeliveryRepository
	config       PurgeServiceConfig
	logger       *zap.Logger
}

// NewPurgeService creates a new PurgeService
func NewPurgeService(
	deliveryRepo postback.DeliveryRepository,
	config PurgeServiceConfig,
	logger *zap.Logger,
) *PurgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Retention <= 0 {
		config = DefaultPurgeServiceConfig()
	}
	return &PurgeService{
		deliveryRepo: deliveryRepo,
		config:       config,
		logger:       logger,
	}
}

// Execute implements scheduler.JobExecutor for DELIVERY_PURGE jobs.
// The job's PeriodEnd is the reference instant the cutoff is derived from,
// so a retried job purges the same window.
func (s *PurgeService) Execute(ctx context.Context, job *scheduler.Job) error {
	asOf := job.PeriodEnd
	if asOf.IsZero() {
		asOf = time.Now()
	}
	return s.PurgeAged(ctx, asOf)
}

// PurgeAged deletes SENT and DEAD deliveries created before asOf minus retention
func (s *PurgeService) PurgeAged(ctx context.Context, asOf time.Time) error {
	cutoff := asOf.Add(-s.config.Retention)

	deleted, err := s.deliveryRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge deliveries: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("Purged aged postback deliveries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}

// Ensure PurgeService implements scheduler.JobExecutor
var _ scheduler.JobExecutor = (*PurgeService)(nil)
