package catalog

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	SKU           string           `json:"sku" binding:"required,min=1,max=50"`
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	Description   string           `json:"description" binding:"max=2000"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	SupplierURL   string           `json:"supplier_url" binding:"omitempty,url,max=500"`
	ImageKeys     []string         `json:"image_keys" binding:"max=20"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	Payout        *decimal.Decimal `json:"payout"`
	StockQty      *int             `json:"stock_qty" binding:"omitempty,min=0"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" binding:"omitempty,max=2000"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	SupplierURL   *string          `json:"supplier_url" binding:"omitempty,max=500"`
	ImageKeys     []string         `json:"image_keys" binding:"omitempty,max=20"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	Payout        *decimal.Decimal `json:"payout"`
}

// UpdateProductSKURequest represents a request to rename a product's SKU
type UpdateProductSKURequest struct {
	SKU string `json:"sku" binding:"required,min=1,max=50"`
}

// AdjustStockRequest represents a stock adjustment. Exactly one of Delta
// or Absolute must be set.
type AdjustStockRequest struct {
	Delta    *int `json:"delta"`
	Absolute *int `json:"absolute" binding:"omitempty,min=0"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	SupplierURL   string          `json:"supplier_url,omitempty"`
	ImageKeys     []string        `json:"image_keys"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Payout        decimal.Decimal `json:"payout"`
	StockQty      int             `json:"stock_qty"`
	Visibility    string          `json:"visibility"`
	ProfitMargin  decimal.Decimal `json:"profit_margin"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ProductListResponse represents a list item for products
type ProductListResponse struct {
	ID           uuid.UUID       `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	CategoryID   *uuid.UUID      `json:"category_id"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Payout       decimal.Decimal `json:"payout"`
	StockQty     int             `json:"stock_qty"`
	Visibility   string          `json:"visibility"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	Visibility string     `form:"visibility" binding:"omitempty,oneof=draft active hidden archived"`
	CategoryID *uuid.UUID `form:"category_id"`
	InStock    *bool      `form:"in_stock"`
	MinPrice   *float64   `form:"min_price"`
	MaxPrice   *float64   `form:"max_price"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// VisibilityCounts holds product totals per visibility for the dashboard
type VisibilityCounts struct {
	Draft    int64 `json:"draft"`
	Active   int64 `json:"active"`
	Hidden   int64 `json:"hidden"`
	Archived int64 `json:"archived"`
	Total    int64 `json:"total"`
}

// CreateCategoryRequest represents a request to create a new category
type CreateCategoryRequest struct {
	Name      string     `json:"name" binding:"required,min=1,max=100"`
	ParentID  *uuid.UUID `json:"parent_id"`
	SortOrder *int       `json:"sort_order"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	SortOrder *int    `json:"sort_order"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	Name         string     `json:"name"`
	ParentID     *uuid.UUID `json:"parent_id"`
	SortOrder    int        `json:"sort_order"`
	ProductCount int64      `json:"product_count,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CategoryTreeNode represents a category with its children
type CategoryTreeNode struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	ParentID  *uuid.UUID         `json:"parent_id"`
	SortOrder int                `json:"sort_order"`
	Children  []CategoryTreeNode `json:"children"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		SupplierURL:   p.SupplierURL,
		ImageKeys:     p.GetImages(),
		PurchasePrice: p.PurchasePrice,
		SellingPrice:  p.SellingPrice,
		Payout:        p.Payout,
		StockQty:      p.StockQty,
		Visibility:    string(p.Visibility),
		ProfitMargin:  p.GetProfitMargin(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

// ToProductListResponse converts a domain Product to ProductListResponse
func ToProductListResponse(p *catalog.Product) ProductListResponse {
	return ProductListResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		SellingPrice: p.SellingPrice,
		Payout:       p.Payout,
		StockQty:     p.StockQty,
		Visibility:   string(p.Visibility),
		CreatedAt:    p.CreatedAt,
	}
}

// ToProductListResponses converts a slice of domain Products to ProductListResponses
func ToProductListResponses(products []catalog.Product) []ProductListResponse {
	responses := make([]ProductListResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductListResponse(&p)
	}
	return responses
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		TenantID:  c.TenantID,
		Name:      c.Name,
		ParentID:  c.ParentID,
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
