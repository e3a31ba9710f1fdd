package trade

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeLead = "Lead"

// Event type constants
const (
	EventTypeLeadCreated       = "LeadCreated"
	EventTypeLeadStatusChanged = "LeadStatusChanged"
)

// LeadCreatedEvent is raised when a new lead is captured
type LeadCreatedEvent struct {
	shared.BaseDomainEvent
	LeadID     uuid.UUID       `json:"lead_id"`
	Number     string          `json:"number"`
	ExternalID string          `json:"external_id,omitempty"`
	SellerID   uuid.UUID       `json:"seller_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	ProductSKU string          `json:"product_sku"`
	Quantity   int             `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
	Payout     decimal.Decimal `json:"payout"`
	Country    string          `json:"country"`
	Source     string          `json:"source"`
}

// NewLeadCreatedEvent creates a new LeadCreatedEvent
func NewLeadCreatedEvent(lead *Lead) *LeadCreatedEvent {
	return &LeadCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadCreated, AggregateTypeLead, lead.ID, lead.TenantID),
		LeadID:          lead.ID,
		Number:          lead.Number,
		ExternalID:      lead.ExternalID,
		SellerID:        lead.SellerID(),
		ProductID:       lead.ProductID,
		ProductSKU:      lead.ProductSKU,
		Quantity:        lead.Quantity,
		Total:           lead.Total,
		Payout:          lead.PayoutTotal(),
		Country:         lead.Country,
		Source:          string(lead.Source),
	}
}

// EventType returns the event type name
func (e *LeadCreatedEvent) EventType() string {
	return EventTypeLeadCreated
}

// LeadStatusChangedEvent is raised on every lead status transition.
// It carries the full notification payload so downstream handlers
// (postback delivery, wallet crediting) do not need to reload the lead.
type LeadStatusChangedEvent struct {
	shared.BaseDomainEvent
	LeadID     uuid.UUID       `json:"lead_id"`
	Number     string          `json:"number"`
	ExternalID string          `json:"external_id,omitempty"`
	SellerID   uuid.UUID       `json:"seller_id"`
	OldStatus  string          `json:"old_status"`
	NewStatus  string          `json:"new_status"`
	Reason     string          `json:"reason,omitempty"`
	ProductID  uuid.UUID       `json:"product_id"`
	ProductSKU string          `json:"product_sku"`
	Quantity   int             `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
	Payout     decimal.Decimal `json:"payout"` // Payout total (per-unit payout times quantity)
	Currency   string          `json:"currency"`
	Sub1       string          `json:"sub1,omitempty"`
	Sub2       string          `json:"sub2,omitempty"`
	Sub3       string          `json:"sub3,omitempty"`
	Sub4       string          `json:"sub4,omitempty"`
	Sub5       string          `json:"sub5,omitempty"`
	ChangedAt  time.Time       `json:"changed_at"`
}

// NewLeadStatusChangedEvent creates a new LeadStatusChangedEvent
func NewLeadStatusChangedEvent(lead *Lead, oldStatus, newStatus LeadStatus, reason string) *LeadStatusChangedEvent {
	return &LeadStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadStatusChanged, AggregateTypeLead, lead.ID, lead.TenantID),
		LeadID:          lead.ID,
		Number:          lead.Number,
		ExternalID:      lead.ExternalID,
		SellerID:        lead.SellerID(),
		OldStatus:       oldStatus.String(),
		NewStatus:       newStatus.String(),
		Reason:          reason,
		ProductID:       lead.ProductID,
		ProductSKU:      lead.ProductSKU,
		Quantity:        lead.Quantity,
		Total:           lead.Total,
		Payout:          lead.PayoutTotal(),
		Currency:        "USD",
		Sub1:            lead.Subs.Sub1,
		Sub2:            lead.Subs.Sub2,
		Sub3:            lead.Subs.Sub3,
		Sub4:            lead.Subs.Sub4,
		Sub5:            lead.Subs.Sub5,
		ChangedAt:       lead.UpdatedAt,
	}
}

// EventType returns the event type name
func (e *LeadStatusChangedEvent) EventType() string {
	return EventTypeLeadStatusChanged
}
