package postback

import (
	"github.com/dropship/backoffice/internal/domain/shared"
)

// AggregateTypePostbackConfig is the aggregate type for postback config events
const AggregateTypePostbackConfig = "PostbackConfig"

// Event types for postback config domain events
const (
	EventTypeConfigCreated      = "PostbackConfigCreated"
	EventTypeConfigAutoDisabled = "PostbackConfigAutoDisabled"
)

// ConfigCreatedEvent is published when a postback subscription is created
type ConfigCreatedEvent struct {
	shared.BaseDomainEvent
	ConfigID string `json:"config_id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Method   string `json:"method"`
}

// NewConfigCreatedEvent creates a new ConfigCreatedEvent
func NewConfigCreatedEvent(config *Config) *ConfigCreatedEvent {
	return &ConfigCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConfigCreated, AggregateTypePostbackConfig, config.ID, config.TenantID),
		ConfigID:        config.ID.String(),
		UserID:          config.UserID.String(),
		Name:            config.Name,
		Method:          config.Method.String(),
	}
}

// EventType returns the event type
func (e *ConfigCreatedEvent) EventType() string {
	return EventTypeConfigCreated
}

// ConfigAutoDisabledEvent is published when a config is switched off
// after too many consecutive delivery failures
type ConfigAutoDisabledEvent struct {
	shared.BaseDomainEvent
	ConfigID     string `json:"config_id"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	FailureCount int    `json:"failure_count"`
	LastError    string `json:"last_error"`
}

// NewConfigAutoDisabledEvent creates a new ConfigAutoDisabledEvent
func NewConfigAutoDisabledEvent(config *Config) *ConfigAutoDisabledEvent {
	return &ConfigAutoDisabledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConfigAutoDisabled, AggregateTypePostbackConfig, config.ID, config.TenantID),
		ConfigID:        config.ID.String(),
		UserID:          config.UserID.String(),
		Name:            config.Name,
		FailureCount:    config.FailureCount,
		LastError:       config.LastError,
	}
}

// EventType returns the event type
func (e *ConfigAutoDisabledEvent) EventType() string {
	return EventTypeConfigAutoDisabled
}
