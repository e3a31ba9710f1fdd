package models

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/bulk"
	"github.com/google/uuid"
)

// ImportSessionModel is the persistence model for the ImportSession aggregate root.
type ImportSessionModel struct {
	TenantAggregateModel
	UserID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	Filename     string            `gorm:"type:varchar(255);not null"`
	StorageKey   string            `gorm:"type:varchar(500);not null"`
	FileSize     int64             `gorm:"not null;default:0"`
	Format       bulk.ImportFormat `gorm:"type:varchar(10);not null"`
	ConflictMode bulk.ConflictMode `gorm:"type:varchar(20);not null;default:'SKIP'"`
	DryRun       bool              `gorm:"not null;default:false"`
	Status       bulk.ImportStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TotalRows    int               `gorm:"not null;default:0"`
	SuccessCount int               `gorm:"not null;default:0"`
	SkippedCount int               `gorm:"not null;default:0"`
	ErrorCount   int               `gorm:"not null;default:0"`
	Errors       string            `gorm:"type:jsonb;default:'[]'"`
	FailReason   string            `gorm:"type:varchar(500)"`
	StartedAt    *time.Time        `gorm:"type:timestamptz"`
	CompletedAt  *time.Time        `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (ImportSessionModel) TableName() string {
	return "import_sessions"
}

// ToDomain converts the persistence model to a domain ImportSession entity.
func (m *ImportSessionModel) ToDomain() *bulk.ImportSession {
	session := &bulk.ImportSession{
		UserID:       m.UserID,
		Filename:     m.Filename,
		StorageKey:   m.StorageKey,
		FileSize:     m.FileSize,
		Format:       m.Format,
		ConflictMode: m.ConflictMode,
		DryRun:       m.DryRun,
		Status:       m.Status,
		TotalRows:    m.TotalRows,
		SuccessCount: m.SuccessCount,
		SkippedCount: m.SkippedCount,
		ErrorCount:   m.ErrorCount,
		FailReason:   m.FailReason,
		StartedAt:    m.StartedAt,
		CompletedAt:  m.CompletedAt,
	}
	m.PopulateTenantAggregateRoot(&session.TenantAggregateRoot)

	if m.Errors != "" {
		_ = session.SetErrorsFromJSON(m.Errors)
	}

	return session
}

// FromDomain populates the persistence model from a domain ImportSession entity.
func (m *ImportSessionModel) FromDomain(s *bulk.ImportSession) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.UserID = s.UserID
	m.Filename = s.Filename
	m.StorageKey = s.StorageKey
	m.FileSize = s.FileSize
	m.Format = s.Format
	m.ConflictMode = s.ConflictMode
	m.DryRun = s.DryRun
	m.Status = s.Status
	m.TotalRows = s.TotalRows
	m.SuccessCount = s.SuccessCount
	m.SkippedCount = s.SkippedCount
	m.ErrorCount = s.ErrorCount
	m.FailReason = s.FailReason
	m.StartedAt = s.StartedAt
	m.CompletedAt = s.CompletedAt

	if errorsJSON, err := s.ErrorsJSON(); err == nil {
		m.Errors = errorsJSON
	} else {
		m.Errors = "[]"
	}
}

// ImportSessionModelFromDomain creates a new persistence model from a domain ImportSession entity.
func ImportSessionModelFromDomain(s *bulk.ImportSession) *ImportSessionModel {
	m := &ImportSessionModel{}
	m.FromDomain(s)
	return m
}
