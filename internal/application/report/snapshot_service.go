package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropship/backoffice/internal/domain/report"
	"github.com/dropship/backoffice/internal/domain/trade"
	"github.com/dropship/backoffice/internal/infrastructure/scheduler"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errMissingTenant is returned when a snapshot job arrives without a tenant
var errMissingTenant = errors.New("snapshot job requires a tenant")

// SnapshotService materializes per-day lead statistics into the snapshot
// table. It runs as the executor for DAILY_SNAPSHOT jobs and can be called
// directly for ad-hoc backfills.
type SnapshotService struct {
	snapshotRepo report.LeadDailySnapshotRepository
	leadRepo     trade.LeadRepository
	logger       *zap.Logger
}

// NewSnapshotService creates a new SnapshotService
func NewSnapshotService(
	snapshotRepo report.LeadDailySnapshotRepository,
	leadRepo trade.LeadRepository,
	logger *zap.Logger,
) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		snapshotRepo: snapshotRepo,
		leadRepo:     leadRepo,
		logger:       logger,
	}
}

// Execute implements scheduler.JobExecutor for DAILY_SNAPSHOT jobs
func (s *SnapshotService) Execute(ctx context.Context, job *scheduler.Job) error {
	if job.TenantID == nil {
		return errMissingTenant
	}
	return s.MaterializeRange(ctx, *job.TenantID, job.PeriodStart, job.PeriodEnd)
}

// MaterializeRange recomputes and stores the snapshots for every closed day
// in [from, to]. Days that have not fully elapsed are skipped, so the range
// may safely extend into the present. Days without any leads are written as
// zero rows; the read path then never mistakes a quiet day for a missing
// snapshot.
func (s *SnapshotService) MaterializeRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) error {
	fromDay := report.NormalizeDay(from)
	toDay := report.NormalizeDay(to)
	if toDay.Before(fromDay) {
		return fmt.Errorf("invalid snapshot range: %s is after %s",
			fromDay.Format("2006-01-02"), toDay.Format("2006-01-02"))
	}

	query := trade.StatsQuery{
		From: fromDay,
		To:   toDay.Add(24*time.Hour - time.Nanosecond),
	}
	rows, err := s.leadRepo.CountsByDay(ctx, tenantID, query)
	if err != nil {
		return fmt.Errorf("aggregate leads: %w", err)
	}

	stats := trade.FillMissingDays(trade.BuildDailyStats(rows), fromDay, toDay)

	now := time.Now()
	snapshots := make([]*report.LeadDailySnapshot, 0, len(stats))
	for _, stat := range stats {
		day, parseErr := time.ParseInLocation("2006-01-02", stat.Date, time.UTC)
		if parseErr != nil {
			return fmt.Errorf("parse stat date %q: %w", stat.Date, parseErr)
		}

		snapshot, snapErr := report.NewLeadDailySnapshot(tenantID, day)
		if snapErr != nil {
			return snapErr
		}
		if !snapshot.IsClosedDay(now) {
			continue
		}

		snapshot.Total = stat.Total
		snapshot.New = stat.New
		snapshot.Callback = stat.Callback
		snapshot.Confirmed = stat.Confirmed
		snapshot.Shipped = stat.Shipped
		snapshot.Delivered = stat.Delivered
		snapshot.Paid = stat.Paid
		snapshot.Cancelled = stat.Cancelled
		snapshot.Returned = stat.Returned
		snapshot.Trash = stat.Trash
		snapshot.Approved = stat.Approved
		snapshot.ApproveRate = stat.ApproveRate
		snapshot.Revenue = stat.Revenue
		snapshot.PayoutPaid = stat.PayoutPaid
		snapshots = append(snapshots, snapshot)
	}

	if len(snapshots) == 0 {
		s.logger.Debug("No closed days to snapshot",
			zap.String("tenant_id", tenantID.String()),
			zap.String("from", fromDay.Format("2006-01-02")),
			zap.String("to", toDay.Format("2006-01-02")),
		)
		return nil
	}

	if err := s.snapshotRepo.UpsertBatch(ctx, snapshots); err != nil {
		return fmt.Errorf("store snapshots: %w", err)
	}

	s.logger.Info("Materialized lead daily snapshots",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("days", len(snapshots)),
		zap.String("from", fromDay.Format("2006-01-02")),
		zap.String("to", toDay.Format("2006-01-02")),
	)
	return nil
}

// Ensure SnapshotService implements scheduler.JobExecutor
var _ scheduler.JobExecutor = (*SnapshotService)(nil)
