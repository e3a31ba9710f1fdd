package trade

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Lead DTOs ====================

// CreateLeadRequest represents a request to capture a new lead
type CreateLeadRequest struct {
	ProductID     uuid.UUID `json:"product_id" binding:"required"`
	Quantity      int       `json:"quantity" binding:"omitempty,min=1"`
	ExternalID    string    `json:"external_id" binding:"omitempty,max=100"`
	CustomerName  string    `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerPhone string    `json:"customer_phone" binding:"required,min=5,max=20"`
	Country       string    `json:"country" binding:"required,len=2"`
	City          string    `json:"city" binding:"omitempty,max=100"`
	Address       string    `json:"address" binding:"omitempty,max=500"`
	Comment       string    `json:"comment" binding:"omitempty,max=2000"`
	Source        string    `json:"source" binding:"omitempty,oneof=WEB API IMPORT"`
	Sub1          string    `json:"sub1" binding:"omitempty,max=255"`
	Sub2          string    `json:"sub2" binding:"omitempty,max=255"`
	Sub3          string    `json:"sub3" binding:"omitempty,max=255"`
	Sub4          string    `json:"sub4" binding:"omitempty,max=255"`
	Sub5          string    `json:"sub5" binding:"omitempty,max=255"`
}

// UpdateLeadRequest represents a request to edit a lead's customer block
// and operator comment. Omitted fields keep their current values.
type UpdateLeadRequest struct {
	CustomerName  *string `json:"customer_name" binding:"omitempty,min=1,max=200"`
	CustomerPhone *string `json:"customer_phone" binding:"omitempty,min=5,max=20"`
	Country       *string `json:"country" binding:"omitempty,len=2"`
	City          *string `json:"city" binding:"omitempty,max=100"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
	Comment       *string `json:"comment" binding:"omitempty,max=2000"`
}

// ChangeLeadStatusRequest represents a request to move a lead to a new status
type ChangeLeadStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// BulkChangeStatusRequest represents a request to move several leads at once
type BulkChangeStatusRequest struct {
	LeadIDs []uuid.UUID `json:"lead_ids" binding:"required,min=1,max=500"`
	Status  string      `json:"status" binding:"required"`
	Reason  string      `json:"reason" binding:"omitempty,max=500"`
}

// BulkChangeStatusItemResult reports the outcome for one lead of a bulk change
type BulkChangeStatusItemResult struct {
	LeadID  uuid.UUID `json:"lead_id"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

// BulkChangeStatusResult aggregates the per-lead outcomes of a bulk change
type BulkChangeStatusResult struct {
	Succeeded int                          `json:"succeeded"`
	Failed    int                          `json:"failed"`
	Results   []BulkChangeStatusItemResult `json:"results"`
}

// StatusChangeResponse represents one entry of a lead's transition history
type StatusChangeResponse struct {
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	Reason     string     `json:"reason,omitempty"`
	ChangedBy  *uuid.UUID `json:"changed_by,omitempty"`
	ChangedAt  time.Time  `json:"changed_at"`
}

// LeadResponse represents a lead in API responses
type LeadResponse struct {
	ID            uuid.UUID              `json:"id"`
	TenantID      uuid.UUID              `json:"tenant_id"`
	Number        string                 `json:"number"`
	ExternalID    string                 `json:"external_id,omitempty"`
	SellerID      uuid.UUID              `json:"seller_id"`
	ProductID     uuid.UUID              `json:"product_id"`
	ProductSKU    string                 `json:"product_sku"`
	ProductName   string                 `json:"product_name"`
	Quantity      int                    `json:"quantity"`
	UnitPrice     decimal.Decimal        `json:"unit_price"`
	Total         decimal.Decimal        `json:"total"`
	Payout        decimal.Decimal        `json:"payout"`
	PayoutTotal   decimal.Decimal        `json:"payout_total"`
	CustomerName  string                 `json:"customer_name"`
	CustomerPhone string                 `json:"customer_phone"`
	Country       string                 `json:"country"`
	City          string                 `json:"city,omitempty"`
	Address       string                 `json:"address,omitempty"`
	Comment       string                 `json:"comment,omitempty"`
	Source        string                 `json:"source"`
	Sub1          string                 `json:"sub1,omitempty"`
	Sub2          string                 `json:"sub2,omitempty"`
	Sub3          string                 `json:"sub3,omitempty"`
	Sub4          string                 `json:"sub4,omitempty"`
	Sub5          string                 `json:"sub5,omitempty"`
	Status        string                 `json:"status"`
	StatusHistory []StatusChangeResponse `json:"status_history,omitempty"`
	PaidAt        *time.Time             `json:"paid_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// LeadListItemResponse represents a lead in list responses (lighter payload)
type LeadListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	ExternalID    string          `json:"external_id,omitempty"`
	SellerID      uuid.UUID       `json:"seller_id"`
	ProductSKU    string          `json:"product_sku"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	Total         decimal.Decimal `json:"total"`
	PayoutTotal   decimal.Decimal `json:"payout_total"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Country       string          `json:"country"`
	Source        string          `json:"source"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LeadListFilter represents filter options for the lead list
type LeadListFilter struct {
	Search    string     `form:"search"`
	Status    string     `form:"status"`
	Statuses  []string   `form:"statuses"`
	SellerID  *uuid.UUID `form:"seller_id"`
	ProductID *uuid.UUID `form:"product_id"`
	Country   string     `form:"country"`
	Source    string     `form:"source"`
	Sub1      string     `form:"sub1"`
	Sub2      string     `form:"sub2"`
	Sub3      string     `form:"sub3"`
	Sub4      string     `form:"sub4"`
	Sub5      string     `form:"sub5"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LeadStatusSummary represents lead counts per status for the dashboard
type LeadStatusSummary struct {
	New       int64 `json:"new"`
	Callback  int64 `json:"callback"`
	Confirmed int64 `json:"confirmed"`
	Shipped   int64 `json:"shipped"`
	Delivered int64 `json:"delivered"`
	Paid      int64 `json:"paid"`
	Cancelled int64 `json:"cancelled"`
	Returned  int64 `json:"returned"`
	Trash     int64 `json:"trash"`
	Total     int64 `json:"total"`
}

// DailyStatsFilter represents the query window for daily lead statistics
type DailyStatsFilter struct {
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Status    string     `form:"status"`
	SellerID  *uuid.UUID `form:"seller_id"`
	ProductID *uuid.UUID `form:"product_id"`
	Country   string     `form:"country"`
}

// ==================== Converters ====================

// ToLeadResponse converts a domain Lead to LeadResponse
func ToLeadResponse(l *trade.Lead) LeadResponse {
	history := make([]StatusChangeResponse, len(l.StatusHistory))
	for i, change := range l.StatusHistory {
		history[i] = ToStatusChangeResponse(change)
	}

	return LeadResponse{
		ID:            l.ID,
		TenantID:      l.TenantID,
		Number:        l.Number,
		ExternalID:    l.ExternalID,
		SellerID:      l.SellerID(),
		ProductID:     l.ProductID,
		ProductSKU:    l.ProductSKU,
		ProductName:   l.ProductName,
		Quantity:      l.Quantity,
		UnitPrice:     l.UnitPrice,
		Total:         l.Total,
		Payout:        l.Payout,
		PayoutTotal:   l.PayoutTotal(),
		CustomerName:  l.CustomerName,
		CustomerPhone: l.CustomerPhone,
		Country:       l.Country,
		City:          l.City,
		Address:       l.Address,
		Comment:       l.Comment,
		Source:        string(l.Source),
		Sub1:          l.Subs.Sub1,
		Sub2:          l.Subs.Sub2,
		Sub3:          l.Subs.Sub3,
		Sub4:          l.Subs.Sub4,
		Sub5:          l.Subs.Sub5,
		Status:        string(l.Status),
		StatusHistory: history,
		PaidAt:        l.PaidAt,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// ToStatusChangeResponse converts a domain StatusChange to StatusChangeResponse
func ToStatusChangeResponse(c trade.StatusChange) StatusChangeResponse {
	return StatusChangeResponse{
		FromStatus: string(c.FromStatus),
		ToStatus:   string(c.ToStatus),
		Reason:     c.Reason,
		ChangedBy:  c.ChangedBy,
		ChangedAt:  c.ChangedAt,
	}
}

// ToLeadListItemResponse converts a domain Lead to LeadListItemResponse
func ToLeadListItemResponse(l *trade.Lead) LeadListItemResponse {
	return LeadListItemResponse{
		ID:            l.ID,
		Number:        l.Number,
		ExternalID:    l.ExternalID,
		SellerID:      l.SellerID(),
		ProductSKU:    l.ProductSKU,
		ProductName:   l.ProductName,
		Quantity:      l.Quantity,
		Total:         l.Total,
		PayoutTotal:   l.PayoutTotal(),
		CustomerName:  l.CustomerName,
		CustomerPhone: l.CustomerPhone,
		Country:       l.Country,
		Source:        string(l.Source),
		Status:        string(l.Status),
		CreatedAt:     l.CreatedAt,
	}
}

// ToLeadListItemResponses converts a slice of domain Leads to list responses
func ToLeadListItemResponses(leads []trade.Lead) []LeadListItemResponse {
	responses := make([]LeadListItemResponse, len(leads))
	for i := range leads {
		responses[i] = ToLeadListItemResponse(&leads[i])
	}
	return responses
}
