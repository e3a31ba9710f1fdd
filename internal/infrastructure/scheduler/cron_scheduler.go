package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dropship/backoffice/internal/domain/identity"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cronTickerInterval is the interval at which the cron scheduler checks for execution
const cronTickerInterval = 1 * time.Minute

// CronSchedulerConfig holds configuration for the cron-based maintenance scheduler
type CronSchedulerConfig struct {
	// Enabled indicates if the cron scheduler is enabled
	Enabled bool
	// CronHour is the hour (0-23) to run the nightly snapshot pass
	CronHour int
	// CronMinute is the minute (0-59) to run the nightly snapshot pass
	CronMinute int
	// DailyCronSchedule is the cron expression (parsed to extract hour/minute)
	DailyCronSchedule string
	// SnapshotBackfill is how many closed days each nightly run recomputes.
	// Late status changes on recent days still land in a snapshot that way.
	SnapshotBackfill int
	// PurgeEnabled indicates if aged postback deliveries are purged hourly
	PurgeEnabled bool
	// JobTimeout is the maximum time a single job can run
	JobTimeout time.Duration
	// MaxConcurrentJobs is the maximum number of concurrent jobs
	MaxConcurrentJobs int
	// RetryAttempts is the number of retry attempts for failed jobs
	RetryAttempts int
	// RetryDelay is the delay between retries
	RetryDelay time.Duration
}

// DefaultCronSchedulerConfig returns default cron scheduler configuration
// Defaults to running the snapshot pass at 2:00 AM daily
func DefaultCronSchedulerConfig() CronSchedulerConfig {
	return CronSchedulerConfig{
		Enabled:           true,
		CronHour:          2, // 2 AM
		CronMinute:        0, // 0 minutes
		DailyCronSchedule: "0 2 * * *",
		SnapshotBackfill:  3,
		PurgeEnabled:      true,
		JobTimeout:        30 * time.Minute,
		MaxConcurrentJobs: 3,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// ParseCronSchedule parses a cron expression "minute hour * * *" to extract hour and minute
// Returns defaults (2:00) if parsing fails or expression is empty
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	// Default values
	hour = 2
	minute = 0

	if cronExpr == "" {
		return hour, minute, nil
	}

	// Use strings.Fields for simple whitespace splitting
	parts := strings.Fields(cronExpr)

	if len(parts) < 2 {
		return hour, minute, nil
	}

	// Parse minute
	if parts[0] != "*" {
		if val, parseErr := parseIntOrDefault(parts[0], 0); parseErr == nil {
			minute = val
		}
	}

	// Parse hour
	if parts[1] != "*" {
		if val, parseErr := parseIntOrDefault(parts[1], 2); parseErr == nil {
			hour = val
		}
	}

	// Validate ranges
	if minute < 0 || minute > 59 {
		return 2, 0, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 2, 0, fmt.Errorf("hour must be 0-23, got %d", hour)
	}

	return hour, minute, nil
}

// parseIntOrDefault parses an int string or returns default
func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" || s == "*" {
		return defaultVal, nil
	}
	var val int
	for _, c := range s {
		if c < '0' || c > '9' {
			return defaultVal, ErrInvalidConfig
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// SchedulerJobRecord represents a record of a scheduled job execution
type SchedulerJobRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	TenantID    *uuid.UUID `gorm:"column:tenant_id;type:uuid"`
	JobType     string     `gorm:"column:job_type;size:50;not null"`
	Status      string     `gorm:"column:last_run_status;size:20"`
	Error       string     `gorm:"column:last_error;type:text"`
	StartedAt   *time.Time `gorm:"column:last_run_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	NextRunAt   *time.Time `gorm:"column:next_run_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (SchedulerJobRecord) TableName() string {
	return "scheduler_jobs"
}

// SchedulerJobRepository handles persistence of scheduler job records
type SchedulerJobRepository struct {
	db *gorm.DB
}

// NewSchedulerJobRepository creates a new SchedulerJobRepository
func NewSchedulerJobRepository(db *gorm.DB) *SchedulerJobRepository {
	return &SchedulerJobRepository{db: db}
}

// RecordJobStart records the start of a job execution
func (r *SchedulerJobRepository) RecordJobStart(ctx context.Context, tenantID *uuid.UUID, jobType string) (uuid.UUID, error) {
	now := time.Now()
	record := &SchedulerJobRecord{
		ID:        uuid.New(),
		TenantID:  tenantID,
		JobType:   jobType,
		Status:    string(JobStatusRunning),
		StartedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

// RecordJobComplete records the completion of a job
func (r *SchedulerJobRepository) RecordJobComplete(ctx context.Context, jobID uuid.UUID, success bool, errMsg string) error {
	now := time.Now()
	status := string(JobStatusSuccess)
	if !success {
		status = string(JobStatusFailed)
	}
	return r.db.WithContext(ctx).
		Model(&SchedulerJobRecord{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"last_run_status": status,
			"last_error":      errMsg,
			"completed_at":    now,
			"updated_at":      now,
		}).Error
}

// GetLastJobStatus gets the last job status for a job type
func (r *SchedulerJobRepository) GetLastJobStatus(ctx context.Context, tenantID *uuid.UUID, jobType string) (*SchedulerJobRecord, error) {
	var record SchedulerJobRecord
	query := r.db.WithContext(ctx).Where("job_type = ?", jobType)
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	} else {
		query = query.Where("tenant_id IS NULL")
	}
	if err := query.Order("last_run_at DESC").First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// CronScheduler drives the recurring maintenance work: the nightly lead
// statistics snapshot pass per tenant and the hourly postback delivery purge
type CronScheduler struct {
	config     CronSchedulerConfig
	executor   JobExecutor
	tenantRepo identity.TenantRepository
	jobRepo    *SchedulerJobRepository
	logger     *zap.Logger
	scheduler  *Scheduler

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Last execution tracking
	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewCronScheduler creates a new cron-based maintenance scheduler
func NewCronScheduler(
	config CronSchedulerConfig,
	executor JobExecutor,
	tenantRepo identity.TenantRepository,
	jobRepo *SchedulerJobRepository,
	logger *zap.Logger,
) *CronScheduler {
	schedulerConfig := SchedulerConfig{
		Enabled:           config.Enabled,
		MaxConcurrentJobs: config.MaxConcurrentJobs,
		JobTimeout:        config.JobTimeout,
		RetryAttempts:     config.RetryAttempts,
		RetryDelay:        config.RetryDelay,
	}
	scheduler := NewScheduler(schedulerConfig, executor, logger)

	return &CronScheduler{
		config:     config,
		executor:   executor,
		tenantRepo: tenantRepo,
		jobRepo:    jobRepo,
		logger:     logger,
		scheduler:  scheduler,
	}
}

// Start starts the cron scheduler
func (s *CronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	// Start the underlying job scheduler
	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	// Calculate next run time
	s.calculateNextRunTime()

	// Start the cron ticker
	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Maintenance cron scheduler started",
		zap.Int("cron_hour", s.config.CronHour),
		zap.Int("cron_minute", s.config.CronMinute),
		zap.Int("snapshot_backfill_days", s.config.SnapshotBackfill),
		zap.Bool("purge_enabled", s.config.PurgeEnabled),
		zap.Timep("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop stops the cron scheduler
func (s *CronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	// Cancel the cron loop
	if s.cancel != nil {
		s.cancel()
	}

	// Wait for cron loop to finish
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// Now stop the underlying scheduler
		if err := s.scheduler.Stop(ctx); err != nil {
			s.logger.Warn("Error stopping underlying scheduler", zap.Error(err))
		}
		s.logger.Info("Maintenance cron scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Maintenance cron scheduler stop timed out")
		return ctx.Err()
	}
}

// cronLoop runs the main cron loop
func (s *CronScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	// Use a ticker that checks every minute for cron execution
	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runNightlySnapshots(ctx)
				s.calculateNextRunTime()
			}
			if now.Minute() == 0 {
				s.submitDeliveryPurge(ctx)
			}
		}
	}
}

// shouldRun checks if the nightly snapshot pass should run at the given time
func (s *CronScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.config.CronHour && now.Minute() == s.config.CronMinute
}

// calculateNextRunTime calculates the next run time
func (s *CronScheduler) calculateNextRunTime() {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.CronHour, s.config.CronMinute, 0, 0, now.Location())

	// If we've already passed today's run time, schedule for tomorrow
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// snapshotWindow returns the UTC day range the nightly pass covers: the last
// SnapshotBackfill closed days, ending yesterday
func (s *CronScheduler) snapshotWindow(now time.Time) (time.Time, time.Time) {
	backfill := s.config.SnapshotBackfill
	if backfill < 1 {
		backfill = 1
	}
	now = now.UTC()
	yesterday := now.AddDate(0, 0, -1)
	periodEnd := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 23, 59, 59, 999999999, time.UTC)
	firstDay := yesterday.AddDate(0, 0, -(backfill - 1))
	periodStart := time.Date(firstDay.Year(), firstDay.Month(), firstDay.Day(), 0, 0, 0, 0, time.UTC)
	return periodStart, periodEnd
}

// runNightlySnapshots schedules a snapshot job for every active tenant
func (s *CronScheduler) runNightlySnapshots(ctx context.Context) {
	s.logger.Info("Starting nightly snapshot pass")

	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	// Get all active tenants
	tenants, err := s.tenantRepo.FindActive(ctx, shared.Filter{})
	if err != nil {
		s.logger.Error("Failed to fetch active tenants for snapshot pass", zap.Error(err))
		return
	}

	periodStart, periodEnd := s.snapshotWindow(now)
	s.logger.Info("Scheduling snapshot jobs for tenants",
		zap.Int("tenant_count", len(tenants)),
		zap.Time("period_start", periodStart),
		zap.Time("period_end", periodEnd),
	)

	// Schedule one job per tenant covering the whole backfill window
	for _, tenant := range tenants {
		tenantID := tenant.ID

		// Record job start
		var jobID uuid.UUID
		if s.jobRepo != nil {
			var recordErr error
			jobID, recordErr = s.jobRepo.RecordJobStart(ctx, &tenantID, string(JobTypeDailySnapshot))
			if recordErr != nil {
				s.logger.Warn("Failed to record job start",
					zap.String("tenant_id", tenantID.String()),
					zap.String("job_type", string(JobTypeDailySnapshot)),
					zap.Error(recordErr),
				)
			}
		}

		// Create and submit job
		job := NewJob(&tenantID, JobTypeDailySnapshot, periodStart, periodEnd, s.config.RetryAttempts)
		if err := s.scheduler.SubmitJob(job); err != nil {
			s.logger.Error("Failed to submit snapshot job",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			// Record failure
			if s.jobRepo != nil && jobID != uuid.Nil {
				_ = s.jobRepo.RecordJobComplete(ctx, jobID, false, err.Error())
			}
			continue
		}

		s.logger.Debug("Scheduled snapshot job",
			zap.String("tenant_id", tenantID.String()),
			zap.String("job_id", job.ID.String()),
		)
	}

	s.logger.Info("Nightly snapshot jobs scheduled", zap.Int("tenant_count", len(tenants)))
}

// submitDeliveryPurge queues one tenant-wide purge of aged postback deliveries
func (s *CronScheduler) submitDeliveryPurge(ctx context.Context) {
	if !s.config.PurgeEnabled {
		return
	}

	now := time.Now().UTC()

	var jobID uuid.UUID
	if s.jobRepo != nil {
		var recordErr error
		jobID, recordErr = s.jobRepo.RecordJobStart(ctx, nil, string(JobTypeDeliveryPurge))
		if recordErr != nil {
			s.logger.Warn("Failed to record job start",
				zap.String("job_type", string(JobTypeDeliveryPurge)),
				zap.Error(recordErr),
			)
		}
	}

	// PeriodEnd is the reference time the purge executor derives its retention
	// cutoff from, so a retried job purges the same window.
	job := NewJob(nil, JobTypeDeliveryPurge, time.Time{}, now, s.config.RetryAttempts)
	if err := s.scheduler.SubmitJob(job); err != nil {
		s.logger.Error("Failed to submit delivery purge job", zap.Error(err))
		if s.jobRepo != nil && jobID != uuid.Nil {
			_ = s.jobRepo.RecordJobComplete(ctx, jobID, false, err.Error())
		}
		return
	}

	s.logger.Debug("Scheduled delivery purge job", zap.String("job_id", job.ID.String()))
}

// TriggerManualRun triggers a manual run of the nightly snapshot pass
// Note: Uses background context to avoid premature cancellation when HTTP request completes
func (s *CronScheduler) TriggerManualRun(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	// Use background context to prevent premature cancellation when HTTP request completes
	go s.runNightlySnapshots(context.Background())
	return nil
}

// TriggerTenantSnapshot queues a snapshot job for a specific tenant and day range
func (s *CronScheduler) TriggerTenantSnapshot(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	job := NewJob(&tenantID, JobTypeDailySnapshot, startDate, endDate, s.config.RetryAttempts)
	return s.scheduler.SubmitJob(job)
}

// GetStatus returns the current status of the cron scheduler
func (s *CronScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":                s.config.Enabled,
		"is_running":             s.isRunning,
		"cron_hour":              s.config.CronHour,
		"cron_minute":            s.config.CronMinute,
		"cron_schedule":          "Daily",
		"snapshot_backfill_days": s.config.SnapshotBackfill,
		"purge_enabled":          s.config.PurgeEnabled,
		"last_run_at":            s.lastRunAt,
		"next_run_at":            s.nextRunAt,
		"job_types":              []JobType{JobTypeDailySnapshot, JobTypeDeliveryPurge},
	}
}

// GetNextRunAt returns when the next scheduled run will occur
func (s *CronScheduler) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}

// GetLastRunAt returns when the last run occurred
func (s *CronScheduler) GetLastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}
