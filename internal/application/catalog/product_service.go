package catalog

import (
	"context"
	"errors"

	"github.com/dropship/backoffice/internal/domain/catalog"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadCounter reports how many leads reference a product. Products with
// captured leads cannot be hard-deleted, only archived.
type LeadCounter interface {
	CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)
}

// ProductService handles product catalog operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	categoryRepo   catalog.CategoryRepository
	leadCounter    LeadCounter
	eventPublisher shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLeadCounter sets the lead counter used by delete validation
func (s *ProductService) SetLeadCounter(counter LeadCounter) {
	s.leadCounter = counter
}

// Create creates a new product in draft visibility
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	// Check if SKU already exists
	exists, err := s.productRepo.ExistsBySKU(ctx, tenantID, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}

	product, err := catalog.NewProduct(tenantID, req.SKU, req.Name)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := product.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}

	if req.CategoryID != nil {
		if err := s.ensureCategoryExists(ctx, tenantID, *req.CategoryID); err != nil {
			return nil, err
		}
		if err := product.SetCategory(req.CategoryID); err != nil {
			return nil, err
		}
	}

	if req.SupplierURL != "" {
		if err := product.SetSupplierURL(req.SupplierURL); err != nil {
			return nil, err
		}
	}

	if len(req.ImageKeys) > 0 {
		if err := product.SetImages(req.ImageKeys); err != nil {
			return nil, err
		}
	}

	if req.PurchasePrice != nil || req.SellingPrice != nil {
		purchase := decimal.Zero
		selling := decimal.Zero
		if req.PurchasePrice != nil {
			purchase = *req.PurchasePrice
		}
		if req.SellingPrice != nil {
			selling = *req.SellingPrice
		}
		if err := product.SetPrices(valueobject.NewMoneyUSD(purchase), valueobject.NewMoneyUSD(selling)); err != nil {
			return nil, err
		}
	}

	if req.Payout != nil {
		if err := product.SetPayout(valueobject.NewMoneyUSD(*req.Payout)); err != nil {
			return nil, err
		}
	}

	if req.StockQty != nil {
		if err := product.SetStock(*req.StockQty); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetBySKU retrieves a product by SKU
func (s *ProductService) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a list of products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductListResponse, int64, error) {
	domainFilter := s.toDomainFilter(filter)

	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductListResponses(products), total, nil
}

// Update updates a product's editable fields
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name := product.Name
		description := product.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(name, description); err != nil {
			return nil, err
		}
	}

	if req.ClearCategory {
		if err := product.SetCategory(nil); err != nil {
			return nil, err
		}
	} else if req.CategoryID != nil {
		if err := s.ensureCategoryExists(ctx, tenantID, *req.CategoryID); err != nil {
			return nil, err
		}
		if err := product.SetCategory(req.CategoryID); err != nil {
			return nil, err
		}
	}

	if req.SupplierURL != nil {
		if err := product.SetSupplierURL(*req.SupplierURL); err != nil {
			return nil, err
		}
	}

	if req.ImageKeys != nil {
		if err := product.SetImages(req.ImageKeys); err != nil {
			return nil, err
		}
	}

	if req.PurchasePrice != nil || req.SellingPrice != nil {
		purchase := product.PurchasePrice
		selling := product.SellingPrice
		if req.PurchasePrice != nil {
			purchase = *req.PurchasePrice
		}
		if req.SellingPrice != nil {
			selling = *req.SellingPrice
		}
		if err := product.SetPrices(valueobject.NewMoneyUSD(purchase), valueobject.NewMoneyUSD(selling)); err != nil {
			return nil, err
		}
	}

	if req.Payout != nil {
		if err := product.SetPayout(valueobject.NewMoneyUSD(*req.Payout)); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// UpdateSKU renames a product's SKU with duplicate checking
func (s *ProductService) UpdateSKU(ctx context.Context, tenantID, productID uuid.UUID, newSKU string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if product.SKU != newSKU {
		exists, err := s.productRepo.ExistsBySKU(ctx, tenantID, newSKU)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
		}
	}

	if err := product.UpdateSKU(newSKU); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// AdjustStock changes a product's stock level by delta or to an absolute value
func (s *ProductService) AdjustStock(ctx context.Context, tenantID, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	if (req.Delta == nil) == (req.Absolute == nil) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Exactly one of delta or absolute must be provided")
	}

	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if req.Delta != nil {
		err = product.AdjustStock(*req.Delta)
	} else {
		err = product.SetStock(*req.Absolute)
	}
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Activate makes a product visible and orderable
func (s *ProductService) Activate(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeVisibility(ctx, tenantID, productID, func(p *catalog.Product) error {
		return p.Activate()
	})
}

// Hide removes a product from sale without archiving it
func (s *ProductService) Hide(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeVisibility(ctx, tenantID, productID, func(p *catalog.Product) error {
		return p.Hide()
	})
}

// Archive retires a product. Archived products reject further mutation
// except restore.
func (s *ProductService) Archive(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeVisibility(ctx, tenantID, productID, func(p *catalog.Product) error {
		return p.Archive()
	})
}

// Restore returns an archived product to draft visibility
func (s *ProductService) Restore(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeVisibility(ctx, tenantID, productID, func(p *catalog.Product) error {
		return p.Restore()
	})
}

// Delete removes a product. Products referenced by leads cannot be
// deleted so lead history keeps its snapshot target; archive instead.
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return err
	}

	if s.leadCounter != nil {
		leadCount, err := s.leadCounter.CountByProduct(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		if leadCount > 0 {
			return shared.NewDomainError("PRODUCT_IN_USE",
				"Product has captured leads and cannot be deleted; archive it instead")
		}
	}

	product.AddDomainEvent(catalog.NewProductDeletedEvent(product))

	if err := s.productRepo.DeleteForTenant(ctx, tenantID, productID); err != nil {
		return err
	}

	s.publishEvents(ctx, product)

	return nil
}

// CountByVisibility returns product totals per visibility for the dashboard
func (s *ProductService) CountByVisibility(ctx context.Context, tenantID uuid.UUID) (*VisibilityCounts, error) {
	counts := &VisibilityCounts{}

	visibilities := []struct {
		visibility catalog.ProductVisibility
		target     *int64
	}{
		{catalog.ProductVisibilityDraft, &counts.Draft},
		{catalog.ProductVisibilityActive, &counts.Active},
		{catalog.ProductVisibilityHidden, &counts.Hidden},
		{catalog.ProductVisibilityArchived, &counts.Archived},
	}
	for _, v := range visibilities {
		n, err := s.productRepo.CountByVisibility(ctx, tenantID, v.visibility)
		if err != nil {
			return nil, err
		}
		*v.target = n
		counts.Total += n
	}

	return counts, nil
}

// changeVisibility loads, mutates and saves a product's visibility
func (s *ProductService) changeVisibility(ctx context.Context, tenantID, productID uuid.UUID, mutate func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := mutate(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// ensureCategoryExists verifies a category belongs to the tenant
func (s *ProductService) ensureCategoryExists(ctx context.Context, tenantID, categoryID uuid.UUID) error {
	if _, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

// toDomainFilter builds the repository filter from the API filter
func (s *ProductService) toDomainFilter(filter ProductListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Visibility != "" {
		domainFilter.Filters["visibility"] = filter.Visibility
	}
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.InStock != nil {
		domainFilter.Filters["in_stock"] = *filter.InStock
	}
	if filter.MinPrice != nil {
		domainFilter.Filters["min_price"] = decimal.NewFromFloat(*filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		domainFilter.Filters["max_price"] = decimal.NewFromFloat(*filter.MaxPrice)
	}

	return domainFilter
}

// publishEvents forwards accumulated domain events to the event bus
func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	product.ClearDomainEvents()
}
