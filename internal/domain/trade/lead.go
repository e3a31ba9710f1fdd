package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadStatus represents where a lead is in its fulfillment lifecycle
type LeadStatus string

const (
	// LeadStatusNew is the initial status of every captured lead
	LeadStatusNew LeadStatus = "NEW"
	// LeadStatusCallback means the customer could not be reached yet and a call back is scheduled
	LeadStatusCallback LeadStatus = "CALLBACK"
	// LeadStatusConfirmed means the customer confirmed the order
	LeadStatusConfirmed LeadStatus = "CONFIRMED"
	// LeadStatusShipped means the parcel left the warehouse
	LeadStatusShipped LeadStatus = "SHIPPED"
	// LeadStatusDelivered means the parcel reached the customer
	LeadStatusDelivered LeadStatus = "DELIVERED"
	// LeadStatusPaid means the payout for the lead has been credited
	LeadStatusPaid LeadStatus = "PAID"
	// LeadStatusCancelled means the order was cancelled before shipment
	LeadStatusCancelled LeadStatus = "CANCELLED"
	// LeadStatusReturned means the parcel came back undelivered
	LeadStatusReturned LeadStatus = "RETURNED"
	// LeadStatusTrash marks junk/duplicate leads excluded from approve rate
	LeadStatusTrash LeadStatus = "TRASH"
)

// AllLeadStatuses returns every known lead status
func AllLeadStatuses() []LeadStatus {
	return []LeadStatus{
		LeadStatusNew,
		LeadStatusCallback,
		LeadStatusConfirmed,
		LeadStatusShipped,
		LeadStatusDelivered,
		LeadStatusPaid,
		LeadStatusCancelled,
		LeadStatusReturned,
		LeadStatusTrash,
	}
}

// IsValid checks if the status is a valid LeadStatus
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusCallback, LeadStatusConfirmed, LeadStatusShipped,
		LeadStatusDelivered, LeadStatusPaid, LeadStatusCancelled, LeadStatusReturned, LeadStatusTrash:
		return true
	}
	return false
}

// String returns the string representation of LeadStatus
func (s LeadStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s LeadStatus) CanTransitionTo(target LeadStatus) bool {
	switch s {
	case LeadStatusNew:
		return target == LeadStatusCallback || target == LeadStatusConfirmed ||
			target == LeadStatusCancelled || target == LeadStatusTrash
	case LeadStatusCallback:
		return target == LeadStatusConfirmed || target == LeadStatusCancelled || target == LeadStatusTrash
	case LeadStatusConfirmed:
		return target == LeadStatusShipped || target == LeadStatusCancelled
	case LeadStatusShipped:
		return target == LeadStatusDelivered || target == LeadStatusReturned
	case LeadStatusDelivered:
		return target == LeadStatusPaid
	case LeadStatusPaid, LeadStatusCancelled, LeadStatusReturned, LeadStatusTrash:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true if no further transitions are possible
func (s LeadStatus) IsTerminal() bool {
	switch s {
	case LeadStatusPaid, LeadStatusCancelled, LeadStatusReturned, LeadStatusTrash:
		return true
	}
	return false
}

// IsApproved returns true for statuses at or beyond customer confirmation
// Used by the approve-rate calculation
func (s LeadStatus) IsApproved() bool {
	switch s {
	case LeadStatusConfirmed, LeadStatusShipped, LeadStatusDelivered, LeadStatusPaid:
		return true
	}
	return false
}

// LeadSource represents how a lead entered the system
type LeadSource string

const (
	LeadSourceWeb    LeadSource = "WEB"
	LeadSourceAPI    LeadSource = "API"
	LeadSourceImport LeadSource = "IMPORT"
)

// IsValid checks if the source is a valid LeadSource
func (s LeadSource) IsValid() bool {
	switch s {
	case LeadSourceWeb, LeadSourceAPI, LeadSourceImport:
		return true
	}
	return false
}

// StatusChange records one transition in a lead's history
type StatusChange struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	FromStatus LeadStatus
	ToStatus   LeadStatus
	Reason     string
	ChangedBy  *uuid.UUID
	ChangedAt  time.Time
}

// SubIDs carries the affiliate tracking parameters captured with a lead
type SubIDs struct {
	Sub1 string
	Sub2 string
	Sub3 string
	Sub4 string
	Sub5 string
}

// Lead represents a customer order request and is the aggregate root
// for order tracking. Product details and payout are snapshotted at
// capture time so later catalog edits do not rewrite history.
type Lead struct {
	shared.TenantAggregateRoot
	Number        string
	ExternalID    string
	ProductID     uuid.UUID
	ProductSKU    string
	ProductName   string
	Quantity      int
	UnitPrice     decimal.Decimal // Selling price per unit at capture time
	Total         decimal.Decimal // UnitPrice * Quantity
	Payout        decimal.Decimal // Seller commission per unit at capture time
	CustomerName  string
	CustomerPhone string
	Country       string // ISO 3166-1 alpha-2
	City          string
	Address       string
	Comment       string
	Source        LeadSource
	Subs          SubIDs
	Status        LeadStatus
	StatusHistory []StatusChange
	PaidAt        *time.Time
}

// NewLeadInput carries the data needed to capture a lead
type NewLeadInput struct {
	TenantID      uuid.UUID
	SellerID      uuid.UUID
	Number        string
	ExternalID    string
	ProductID     uuid.UUID
	ProductSKU    string
	ProductName   string
	Quantity      int
	UnitPrice     valueobject.Money
	Payout        valueobject.Money
	CustomerName  string
	CustomerPhone string
	Country       string
	City          string
	Address       string
	Comment       string
	Source        LeadSource
	Subs          SubIDs
}

// NewLead captures a new lead in NEW status
func NewLead(input NewLeadInput) (*Lead, error) {
	if input.Number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Lead number cannot be empty")
	}
	if len(input.Number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Lead number cannot exceed 50 characters")
	}
	if len(input.ExternalID) > 100 {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot exceed 100 characters")
	}
	if input.SellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if input.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if input.ProductSKU == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product SKU cannot be empty")
	}
	if input.ProductName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if input.Quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if input.UnitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if input.Payout.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PAYOUT", "Payout cannot be negative")
	}
	if err := validateCustomerName(input.CustomerName); err != nil {
		return nil, err
	}
	if err := validateCustomerPhone(input.CustomerPhone); err != nil {
		return nil, err
	}
	if err := validateCountry(input.Country); err != nil {
		return nil, err
	}
	if !input.Source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Unknown lead source")
	}

	qty := decimal.NewFromInt(int64(input.Quantity))

	lead := &Lead{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(input.TenantID, input.SellerID),
		Number:              input.Number,
		ExternalID:          input.ExternalID,
		ProductID:           input.ProductID,
		ProductSKU:          input.ProductSKU,
		ProductName:         input.ProductName,
		Quantity:            input.Quantity,
		UnitPrice:           input.UnitPrice.Amount(),
		Total:               input.UnitPrice.Amount().Mul(qty),
		Payout:              input.Payout.Amount(),
		CustomerName:        strings.TrimSpace(input.CustomerName),
		CustomerPhone:       strings.TrimSpace(input.CustomerPhone),
		Country:             strings.ToUpper(input.Country),
		City:                input.City,
		Address:             input.Address,
		Comment:             input.Comment,
		Source:              input.Source,
		Subs:                input.Subs,
		Status:              LeadStatusNew,
		StatusHistory:       make([]StatusChange, 0),
	}

	lead.AddDomainEvent(NewLeadCreatedEvent(lead))

	return lead, nil
}

// ChangeStatus moves the lead to the target status, recording the transition
func (l *Lead) ChangeStatus(target LeadStatus, reason string, changedBy *uuid.UUID) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown lead status: %s", target))
	}
	if !l.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition lead from %s to %s", l.Status, target))
	}
	if len(reason) > 500 {
		return shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 500 characters")
	}

	now := time.Now()
	oldStatus := l.Status

	l.Status = target
	if target == LeadStatusPaid {
		l.PaidAt = &now
	}
	l.StatusHistory = append(l.StatusHistory, StatusChange{
		ID:         uuid.New(),
		LeadID:     l.ID,
		FromStatus: oldStatus,
		ToStatus:   target,
		Reason:     reason,
		ChangedBy:  changedBy,
		ChangedAt:  now,
	})
	l.UpdatedAt = now
	l.IncrementVersion()

	l.AddDomainEvent(NewLeadStatusChangedEvent(l, oldStatus, target, reason))

	return nil
}

// UpdateCustomer updates the customer contact block while the lead is still workable
func (l *Lead) UpdateCustomer(name, phone, country, city, address string) error {
	if l.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a lead in a terminal status")
	}
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if err := validateCustomerPhone(phone); err != nil {
		return err
	}
	if err := validateCountry(country); err != nil {
		return err
	}

	l.CustomerName = strings.TrimSpace(name)
	l.CustomerPhone = strings.TrimSpace(phone)
	l.Country = strings.ToUpper(country)
	l.City = city
	l.Address = address
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// SetComment replaces the free-form operator comment
func (l *Lead) SetComment(comment string) error {
	if len(comment) > 2000 {
		return shared.NewDomainError("INVALID_COMMENT", "Comment cannot exceed 2000 characters")
	}
	l.Comment = comment
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// SellerID returns the user the lead belongs to
func (l *Lead) SellerID() uuid.UUID {
	if l.CreatedBy == nil {
		return uuid.Nil
	}
	return *l.CreatedBy
}

// PayoutTotal returns the payout credited when the lead is paid (per-unit payout times quantity)
func (l *Lead) PayoutTotal() decimal.Decimal {
	return l.Payout.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// GetTotalMoney returns the order total as Money value object
func (l *Lead) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(l.Total)
}

// IsApproved returns true if the lead is confirmed or beyond
func (l *Lead) IsApproved() bool {
	return l.Status.IsApproved()
}

func validateCustomerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validateCustomerPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_PHONE", "Customer phone cannot be empty")
	}
	if len(phone) < 5 || len(phone) > 20 {
		return shared.NewDomainError("INVALID_CUSTOMER_PHONE", "Customer phone must be between 5 and 20 characters")
	}
	for _, r := range phone {
		if !((r >= '0' && r <= '9') || r == '+' || r == '-' || r == ' ' || r == '(' || r == ')') {
			return shared.NewDomainError("INVALID_CUSTOMER_PHONE", "Customer phone contains invalid characters")
		}
	}
	return nil
}

func validateCountry(country string) error {
	if len(country) != 2 {
		return shared.NewDomainError("INVALID_COUNTRY", "Country must be a two-letter ISO code")
	}
	for _, r := range country {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return shared.NewDomainError("INVALID_COUNTRY", "Country must be a two-letter ISO code")
		}
	}
	return nil
}
