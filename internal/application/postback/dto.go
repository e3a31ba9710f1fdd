package postback

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/postback"
	"github.com/google/uuid"
)

// CreateConfigRequest represents a request to create a postback subscription
type CreateConfigRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	URLTemplate string   `json:"url_template" binding:"required,min=1,max=2000"`
	Method      string   `json:"method" binding:"required,oneof=GET POST"`
	Statuses    []string `json:"statuses" binding:"max=20"`
	SecretToken string   `json:"secret_token" binding:"max=200"`
}

// UpdateConfigRequest represents a request to update a postback subscription.
// Statuses and SecretToken are replaced only when present in the payload.
type UpdateConfigRequest struct {
	Name        string    `json:"name" binding:"required,min=1,max=100"`
	URLTemplate string    `json:"url_template" binding:"required,min=1,max=2000"`
	Method      string    `json:"method" binding:"required,oneof=GET POST"`
	Statuses    *[]string `json:"statuses"`
	SecretToken *string   `json:"secret_token"`
}

// ConfigResponse represents a postback subscription in API responses.
// The secret token itself is never echoed back, only whether one is set.
type ConfigResponse struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	UserID       uuid.UUID  `json:"user_id"`
	Name         string     `json:"name"`
	URLTemplate  string     `json:"url_template"`
	Method       string     `json:"method"`
	Statuses     []string   `json:"statuses"`
	HasSecret    bool       `json:"has_secret"`
	Enabled      bool       `json:"enabled"`
	FailureCount int        `json:"failure_count"`
	LastError    string     `json:"last_error,omitempty"`
	LastFiredAt  *time.Time `json:"last_fired_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Version      int        `json:"version"`
}

// DeliveryListFilter represents filter options for the delivery log
type DeliveryListFilter struct {
	Status   string     `form:"status" binding:"omitempty,oneof=PENDING PROCESSING SENT FAILED DEAD"`
	LeadID   *uuid.UUID `form:"lead_id"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
}

// DeliveryResponse represents one postback delivery attempt chain
type DeliveryResponse struct {
	ID             uuid.UUID  `json:"id"`
	ConfigID       uuid.UUID  `json:"config_id"`
	LeadID         uuid.UUID  `json:"lead_id"`
	LeadStatus     string     `json:"lead_status"`
	Method         string     `json:"method"`
	URL            string     `json:"url"`
	RequestBody    string     `json:"request_body,omitempty"`
	Status         string     `json:"status"`
	AttemptCount   int        `json:"attempt_count"`
	MaxAttempts    int        `json:"max_attempts"`
	ResponseStatus int        `json:"response_status,omitempty"`
	ResponseBody   string     `json:"response_body,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	NextRetryAt    *time.Time `json:"next_retry_at,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DeliverySummaryResponse holds delivery totals per status for the debug screen
type DeliverySummaryResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
	Total      int64 `json:"total"`
}

// ToConfigResponse converts a domain Config to ConfigResponse
func ToConfigResponse(c *postback.Config) *ConfigResponse {
	statuses := c.Statuses
	if statuses == nil {
		statuses = []string{}
	}
	return &ConfigResponse{
		ID:           c.ID,
		TenantID:     c.TenantID,
		UserID:       c.UserID,
		Name:         c.Name,
		URLTemplate:  c.URLTemplate,
		Method:       c.Method.String(),
		Statuses:     statuses,
		HasSecret:    c.SecretToken != "",
		Enabled:      c.Enabled,
		FailureCount: c.FailureCount,
		LastError:    c.LastError,
		LastFiredAt:  c.LastFiredAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Version:      c.Version,
	}
}

// ToConfigResponses converts a slice of domain Configs to ConfigResponses
func ToConfigResponses(configs []*postback.Config) []*ConfigResponse {
	responses := make([]*ConfigResponse, len(configs))
	for i, c := range configs {
		responses[i] = ToConfigResponse(c)
	}
	return responses
}

// ToDeliveryResponse converts a domain Delivery to DeliveryResponse
func ToDeliveryResponse(d *postback.Delivery) *DeliveryResponse {
	return &DeliveryResponse{
		ID:             d.ID,
		ConfigID:       d.ConfigID,
		LeadID:         d.LeadID,
		LeadStatus:     d.LeadStatus,
		Method:         d.Method.String(),
		URL:            d.URL,
		RequestBody:    string(d.RequestBody),
		Status:         string(d.Status),
		AttemptCount:   d.AttemptCount,
		MaxAttempts:    d.MaxAttempts,
		ResponseStatus: d.ResponseStatus,
		ResponseBody:   d.ResponseBody,
		LastError:      d.LastError,
		NextRetryAt:    d.NextRetryAt,
		SentAt:         d.SentAt,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDeliveryResponses converts a slice of domain Deliveries to DeliveryResponses
func ToDeliveryResponses(deliveries []*postback.Delivery) []*DeliveryResponse {
	responses := make([]*DeliveryResponse, len(deliveries))
	for i, d := range deliveries {
		responses[i] = ToDeliveryResponse(d)
	}
	return responses
}
