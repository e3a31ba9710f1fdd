package catalog

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVisibility represents where a product is in its publishing lifecycle
type ProductVisibility string

const (
	ProductVisibilityDraft    ProductVisibility = "draft"
	ProductVisibilityActive   ProductVisibility = "active"
	ProductVisibilityHidden   ProductVisibility = "hidden"
	ProductVisibilityArchived ProductVisibility = "archived"
)

// IsValid checks if the visibility is a known value
func (v ProductVisibility) IsValid() bool {
	switch v {
	case ProductVisibilityDraft, ProductVisibilityActive, ProductVisibilityHidden, ProductVisibilityArchived:
		return true
	}
	return false
}

// String returns the string representation of ProductVisibility
func (v ProductVisibility) String() string {
	return string(v)
}

// Product represents a sellable item in the catalog
// It is the aggregate root for product-related operations
type Product struct {
	shared.TenantAggregateRoot
	SKU           string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_sku,priority:2"`
	Name          string            `gorm:"type:varchar(200);not null"`
	Description   string            `gorm:"type:text"`
	CategoryID    *uuid.UUID        `gorm:"type:uuid;index"`
	SupplierURL   string            `gorm:"type:varchar(500)"`                     // Source listing the product is fulfilled from
	Images        string            `gorm:"type:jsonb"`                            // JSON array of object storage keys
	PurchasePrice decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"` // Cost at the supplier
	SellingPrice  decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"` // Price shown to customers
	Payout        decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"` // Seller commission per delivered unit
	StockQty      int               `gorm:"not null;default:0"`
	Visibility    ProductVisibility `gorm:"type:varchar(20);not null;default:'draft'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product in draft visibility
func NewProduct(tenantID uuid.UUID, sku, name string) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 strings.ToUpper(sku),
		Name:                name,
		Images:              "[]",
		PurchasePrice:       decimal.Zero,
		SellingPrice:        decimal.Zero,
		Payout:              decimal.Zero,
		Visibility:          ProductVisibilityDraft,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := p.ensureMutable(); err != nil {
		return err
	}
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// UpdateSKU updates the product's SKU
// Note: external systems (postbacks, imports) may reference the SKU, rename with care
func (p *Product) UpdateSKU(sku string) error {
	if err := p.ensureMutable(); err != nil {
		return err
	}
	if err := validateSKU(sku); err != nil {
		return err
	}

	p.SKU = strings.ToUpper(sku)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetCategory sets the product category
func (p *Product) SetCategory(categoryID *uuid.UUID) error {
	if err := p.ensureMutable(); err != nil {
		return err
	}

	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetSupplierURL sets the supplier source listing URL
func (p *Product) SetSupplierURL(rawURL string) error {
	if err := p.ensureMutable(); err != nil {
		return err
	}
	if rawURL != "" {
		if len(rawURL) > 500 {
			return shared.NewDomainError("INVALID_SUPPLIER_URL", "Supplier URL cannot exceed 500 characters")
		}
		u, err := url.Parse(rawURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return shared.NewDomainError("INVALID_SUPPLIER_URL", "Supplier URL must be a valid http(s) URL")
		}
	}

	p.SupplierURL = rawURL
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetImages replaces the product image keys
func (p *Product) SetImages(keys []string) error {
	if err := p.ensureMutable(); err != nil {
		return err
	}
	if len(keys) > 20 {
		return shared.NewDomainError("INVALID_IMAGES", "A product cannot have more than 20 images")
	}
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			return shared.NewDomainError("INVALID_IMAGES", "Image keys cannot be empty")
		}
	}
	if keys == nil {
		keys = []string{}
	}

	data, err := json.Marshal(keys)
	if err != nil {
		return shared.NewDomainError("INVALID_IMAGES", "Image keys could not be encoded")
	}

	p.Images = string(data)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// GetImages returns the product image keys
func (p *Product) GetImages() []string {
	if p.Images == "" {
		return []string{}
	}
	var keys []string
	if err := json.Unmarshal([]byte(p.Images), &keys); err != nil {
		return []string{}
	}
	return keys
}

// SetPrices sets both purchase and selling prices
func (p *Product) SetPrices(purchasePrice, sellingPrice valueobject.Money) error {
	if err := p.ensureMutable(); err != nil {
		return err
	}
	if purchasePrice.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Purchase price cannot be negative")
	}
	if sellingPrice.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}

	oldPurchasePrice := p.PurchasePrice
	oldSellingPrice := p.SellingPrice

	p.PurchasePrice = purchasePrice.Amount()
	p.SellingPrice = sellingPrice.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPurchasePrice, oldSellingPrice))

	return nil
}

// SetPayout sets the seller commission credited per delivered unit
func (p *Product) SetPayout(payout valueobject.Money) error {
	if err := p.ensureMutable(); err != nil {
		return err
	}
	if payout.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_PAYOUT", "Payout cannot be negative")
	}

	p.Payout = payout.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// AdjustStock changes the stock quantity by delta (positive or negative)
func (p *Product) AdjustStock(delta int) error {
	if err := p.ensureMutable(); err != nil {
		return err
	}
	newQty := p.StockQty + delta
	if newQty < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock quantity cannot go below zero")
	}

	oldQty := p.StockQty
	p.StockQty = newQty
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStockAdjustedEvent(p, oldQty, newQty))

	return nil
}

// SetStock sets the stock quantity to an absolute value
func (p *Product) SetStock(qty int) error {
	if err := p.ensureMutable(); err != nil {
		return err
	}
	if qty < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock quantity cannot be negative")
	}

	oldQty := p.StockQty
	p.StockQty = qty
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStockAdjustedEvent(p, oldQty, qty))

	return nil
}

// Activate makes the product visible and sellable
func (p *Product) Activate() error {
	if p.Visibility == ProductVisibilityActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	if p.Visibility == ProductVisibilityArchived {
		return shared.NewDomainError("PRODUCT_ARCHIVED", "Cannot activate an archived product, restore it first")
	}

	oldVisibility := p.Visibility
	p.Visibility = ProductVisibilityActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductVisibilityChangedEvent(p, oldVisibility, ProductVisibilityActive))

	return nil
}

// Hide hides the product without archiving it
func (p *Product) Hide() error {
	if p.Visibility == ProductVisibilityHidden {
		return shared.NewDomainError("ALREADY_HIDDEN", "Product is already hidden")
	}
	if p.Visibility == ProductVisibilityArchived {
		return shared.NewDomainError("PRODUCT_ARCHIVED", "Cannot hide an archived product")
	}

	oldVisibility := p.Visibility
	p.Visibility = ProductVisibilityHidden
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductVisibilityChangedEvent(p, oldVisibility, ProductVisibilityHidden))

	return nil
}

// Archive retires the product; archived products reject all mutation except Restore
func (p *Product) Archive() error {
	if p.Visibility == ProductVisibilityArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Product is already archived")
	}

	oldVisibility := p.Visibility
	p.Visibility = ProductVisibilityArchived
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductVisibilityChangedEvent(p, oldVisibility, ProductVisibilityArchived))

	return nil
}

// Restore brings an archived product back as hidden
func (p *Product) Restore() error {
	if p.Visibility != ProductVisibilityArchived {
		return shared.NewDomainError("NOT_ARCHIVED", "Only archived products can be restored")
	}

	p.Visibility = ProductVisibilityHidden
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductVisibilityChangedEvent(p, ProductVisibilityArchived, ProductVisibilityHidden))

	return nil
}

// IsActive returns true if the product is active (visible and sellable)
func (p *Product) IsActive() bool {
	return p.Visibility == ProductVisibilityActive
}

// IsArchived returns true if the product is archived
func (p *Product) IsArchived() bool {
	return p.Visibility == ProductVisibilityArchived
}

// HasCategory returns true if the product has a category assigned
func (p *Product) HasCategory() bool {
	return p.CategoryID != nil
}

// GetSellingPriceMoney returns selling price as Money value object
func (p *Product) GetSellingPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.SellingPrice)
}

// GetPayoutMoney returns payout as Money value object
func (p *Product) GetPayoutMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Payout)
}

// GetProfitMargin returns the profit margin percentage
// Returns 0 if purchase price is zero
func (p *Product) GetProfitMargin() decimal.Decimal {
	if p.PurchasePrice.IsZero() {
		return decimal.Zero
	}
	profit := p.SellingPrice.Sub(p.PurchasePrice)
	return profit.Div(p.PurchasePrice).Mul(decimal.NewFromInt(100))
}

func (p *Product) ensureMutable() error {
	if p.Visibility == ProductVisibilityArchived {
		return shared.NewDomainError("PRODUCT_ARCHIVED", "Archived products cannot be modified")
	}
	return nil
}

// validateSKU validates the product SKU
func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	// SKU should be alphanumeric with underscores and hyphens
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
