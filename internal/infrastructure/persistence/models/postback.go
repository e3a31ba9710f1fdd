package models

import (
	"encoding/json"
	"time"

	"github.com/dropship/backoffice/internal/domain/postback"
	"github.com/google/uuid"
)

// PostbackConfigModel is the persistence model for the postback Config aggregate root.
type PostbackConfigModel struct {
	TenantAggregateModel
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_postback_config_tenant_user,priority:2"`
	Name         string          `gorm:"type:varchar(100);not null"`
	URLTemplate  string          `gorm:"type:varchar(2000);not null"`
	Method       postback.Method `gorm:"type:varchar(10);not null;default:'GET'"`
	Statuses     string          `gorm:"type:jsonb;not null;default:'[]'"` // JSON array of lead statuses
	SecretToken  string          `gorm:"type:varchar(200)"`
	Enabled      bool            `gorm:"not null;default:true;index"`
	FailureCount int             `gorm:"not null;default:0"`
	LastError    string          `gorm:"type:varchar(500)"`
	LastFiredAt  *time.Time
}

// TableName returns the table name for GORM
func (PostbackConfigModel) TableName() string {
	return "postback_configs"
}

// ToDomain converts the persistence model to a domain Config entity.
func (m *PostbackConfigModel) ToDomain() *postback.Config {
	c := &postback.Config{
		UserID:       m.UserID,
		Name:         m.Name,
		URLTemplate:  m.URLTemplate,
		Method:       m.Method,
		Statuses:     decodeStatuses(m.Statuses),
		SecretToken:  m.SecretToken,
		Enabled:      m.Enabled,
		FailureCount: m.FailureCount,
		LastError:    m.LastError,
		LastFiredAt:  m.LastFiredAt,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Config entity.
func (m *PostbackConfigModel) FromDomain(c *postback.Config) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.UserID = c.UserID
	m.Name = c.Name
	m.URLTemplate = c.URLTemplate
	m.Method = c.Method
	m.Statuses = encodeStatuses(c.Statuses)
	m.SecretToken = c.SecretToken
	m.Enabled = c.Enabled
	m.FailureCount = c.FailureCount
	m.LastError = c.LastError
	m.LastFiredAt = c.LastFiredAt
}

// PostbackConfigModelFromDomain creates a new persistence model from a domain Config entity.
func PostbackConfigModelFromDomain(c *postback.Config) *PostbackConfigModel {
	m := &PostbackConfigModel{}
	m.FromDomain(c)
	return m
}

func encodeStatuses(statuses []string) string {
	if len(statuses) == 0 {
		return "[]"
	}
	data, err := json.Marshal(statuses)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeStatuses(raw string) []string {
	if raw == "" || raw == "[]" {
		return []string{}
	}
	var statuses []string
	if err := json.Unmarshal([]byte(raw), &statuses); err != nil {
		return []string{}
	}
	return statuses
}

// PostbackDeliveryModel is the persistence model for the Delivery record.
type PostbackDeliveryModel struct {
	ID             uuid.UUID               `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	ConfigID       uuid.UUID               `gorm:"type:uuid;not null;index;uniqueIndex:idx_postback_delivery_config_event,priority:1"`
	LeadID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	EventID        uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_postback_delivery_config_event,priority:2"`
	LeadStatus     string                  `gorm:"type:varchar(20);not null"`
	Method         postback.Method         `gorm:"type:varchar(10);not null"`
	URL            string                  `gorm:"type:varchar(2500);not null"`
	RequestBody    []byte                  `gorm:"type:bytea"`
	Status         postback.DeliveryStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_postback_delivery_status_retry,priority:1"`
	AttemptCount   int                     `gorm:"not null;default:0"`
	MaxAttempts    int                     `gorm:"not null;default:5"`
	ResponseStatus int                     `gorm:"not null;default:0"`
	ResponseBody   string                  `gorm:"type:varchar(2048)"`
	LastError      string                  `gorm:"type:varchar(500)"`
	NextRetryAt    *time.Time              `gorm:"index:idx_postback_delivery_status_retry,priority:2"`
	SentAt         *time.Time
	CreatedAt      time.Time `gorm:"not null;index"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PostbackDeliveryModel) TableName() string {
	return "postback_deliveries"
}

// ToDomain converts the persistence model to a domain Delivery entity.
func (m *PostbackDeliveryModel) ToDomain() *postback.Delivery {
	return &postback.Delivery{
		ID:             m.ID,
		TenantID:       m.TenantID,
		ConfigID:       m.ConfigID,
		LeadID:         m.LeadID,
		EventID:        m.EventID,
		LeadStatus:     m.LeadStatus,
		Method:         m.Method,
		URL:            m.URL,
		RequestBody:    m.RequestBody,
		Status:         m.Status,
		AttemptCount:   m.AttemptCount,
		MaxAttempts:    m.MaxAttempts,
		ResponseStatus: m.ResponseStatus,
		ResponseBody:   m.ResponseBody,
		LastError:      m.LastError,
		NextRetryAt:    m.NextRetryAt,
		SentAt:         m.SentAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Delivery entity.
func (m *PostbackDeliveryModel) FromDomain(d *postback.Delivery) {
	m.ID = d.ID
	m.TenantID = d.TenantID
	m.ConfigID = d.ConfigID
	m.LeadID = d.LeadID
	m.EventID = d.EventID
	m.LeadStatus = d.LeadStatus
	m.Method = d.Method
	m.URL = d.URL
	m.RequestBody = d.RequestBody
	m.Status = d.Status
	m.AttemptCount = d.AttemptCount
	m.MaxAttempts = d.MaxAttempts
	m.ResponseStatus = d.ResponseStatus
	m.ResponseBody = d.ResponseBody
	m.LastError = d.LastError
	m.NextRetryAt = d.NextRetryAt
	m.SentAt = d.SentAt
	m.CreatedAt = d.CreatedAt
	m.UpdatedAt = d.UpdatedAt
}

// PostbackDeliveryModelFromDomain creates a new persistence model from a domain Delivery entity.
func PostbackDeliveryModelFromDomain(d *postback.Delivery) *PostbackDeliveryModel {
	m := &PostbackDeliveryModel{}
	m.FromDomain(d)
	return m
}
