package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dropship/backoffice/internal/domain/report"
	"github.com/dropship/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// snapshotConflictColumns identifies a snapshot row for upserts
var snapshotConflictColumns = []clause.Column{{Name: "tenant_id"}, {Name: "date"}}

// snapshotUpdateColumns are the columns replaced when a snapshot is recomputed
var snapshotUpdateColumns = []string{
	"total", "new_count", "callback", "confirmed", "shipped", "delivered",
	"paid", "cancelled", "returned", "trash", "approved", "approve_rate",
	"revenue", "payout_paid", "computed_at",
}

// GormLeadSnapshotRepository implements LeadDailySnapshotRepository using GORM
type GormLeadSnapshotRepository struct {
	db *gorm.DB
}

// NewGormLeadSnapshotRepository creates a new GormLeadSnapshotRepository
func NewGormLeadSnapshotRepository(db *gorm.DB) *GormLeadSnapshotRepository {
	return &GormLeadSnapshotRepository{db: db}
}

// Upsert inserts or replaces the snapshot for its (tenant, date) pair
func (r *GormLeadSnapshotRepository) Upsert(ctx context.Context, snapshot *report.LeadDailySnapshot) error {
	model := models.LeadDailySnapshotModelFromDomain(snapshot)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   snapshotConflictColumns,
			DoUpdates: clause.AssignmentColumns(snapshotUpdateColumns),
		}).
		Create(model).Error
}

// UpsertBatch upserts several snapshots in one transaction
func (r *GormLeadSnapshotRepository) UpsertBatch(ctx context.Context, snapshots []*report.LeadDailySnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, snapshot := range snapshots {
			model := models.LeadDailySnapshotModelFromDomain(snapshot)
			if err := tx.
				Clauses(clause.OnConflict{
					Columns:   snapshotConflictColumns,
					DoUpdates: clause.AssignmentColumns(snapshotUpdateColumns),
				}).
				Create(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByDate returns the snapshot for one day, or nil when absent
func (r *GormLeadSnapshotRepository) FindByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (*report.LeadDailySnapshot, error) {
	var model models.LeadDailySnapshotModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND date = ?", tenantID, report.NormalizeDay(date)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDateRange returns snapshots within [from, to], ascending by date
func (r *GormLeadSnapshotRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*report.LeadDailySnapshot, error) {
	var snapshotModels []models.LeadDailySnapshotModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND date >= ? AND date <= ?",
			tenantID, report.NormalizeDay(from), report.NormalizeDay(to)).
		Order("date ASC").
		Find(&snapshotModels).Error; err != nil {
		return nil, err
	}

	snapshots := make([]*report.LeadDailySnapshot, len(snapshotModels))
	for i := range snapshotModels {
		snapshots[i] = snapshotModels[i].ToDomain()
	}
	return snapshots, nil
}

// DeleteOlderThan removes snapshots for days before the given time.
// Returns the number of deleted rows.
func (r *GormLeadSnapshotRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("date < ?", report.NormalizeDay(before)).
		Delete(&models.LeadDailySnapshotModel{})
	return result.RowsAffected, result.Error
}

// Ensure GormLeadSnapshotRepository implements LeadDailySnapshotRepository
var _ report.LeadDailySnapshotRepository = (*GormLeadSnapshotRepository)(nil)
