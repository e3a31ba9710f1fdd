package catalog

import (
	"context"
	"errors"
	"sort"

	"github.com/dropship/backoffice/internal/domain/catalog"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryService handles category operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// Create creates a new category, optionally nested under a parent
func (s *CategoryService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsByName(ctx, tenantID, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
	}

	var category *catalog.Category

	if req.ParentID != nil {
		parent, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, *req.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
			}
			return nil, err
		}

		category, err = catalog.NewChildCategory(tenantID, req.Name, parent)
		if err != nil {
			return nil, err
		}
	} else {
		category, err = catalog.NewCategory(tenantID, req.Name)
		if err != nil {
			return nil, err
		}
	}

	if req.SortOrder != nil {
		category.SetSortOrder(*req.SortOrder)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	return ToCategoryResponse(category), nil
}

// GetByID retrieves a category by ID with its product count
func (s *CategoryService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)

	count, err := s.productRepo.CountByCategory(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response.ProductCount = count

	return response, nil
}

// List retrieves all categories for a tenant ordered for display
func (s *CategoryService) List(ctx context.Context, tenantID uuid.UUID) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAllForTenant(ctx, tenantID, shared.Filter{
		OrderBy:  "sort_order",
		OrderDir: "asc",
	})
	if err != nil {
		return nil, err
	}

	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = *ToCategoryResponse(&categories[i])
	}

	return responses, nil
}

// GetTree retrieves categories as a two-level tree
func (s *CategoryService) GetTree(ctx context.Context, tenantID uuid.UUID) ([]CategoryTreeNode, error) {
	categories, err := s.categoryRepo.FindAllForTenant(ctx, tenantID, shared.Filter{
		OrderBy:  "sort_order",
		OrderDir: "asc",
	})
	if err != nil {
		return nil, err
	}

	return buildCategoryTree(categories), nil
}

// GetChildren retrieves direct children of a category
func (s *CategoryService) GetChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]CategoryResponse, error) {
	children, err := s.categoryRepo.FindChildren(ctx, tenantID, parentID)
	if err != nil {
		return nil, err
	}

	responses := make([]CategoryResponse, len(children))
	for i := range children {
		responses[i] = *ToCategoryResponse(&children[i])
	}

	return responses, nil
}

// Update renames a category or changes its sort order
func (s *CategoryService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != category.Name {
		exists, err := s.categoryRepo.ExistsByName(ctx, tenantID, *req.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
		}
		if err := category.Rename(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.SortOrder != nil {
		category.SetSortOrder(*req.SortOrder)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	return ToCategoryResponse(category), nil
}

// Delete removes a category. Categories with children cannot be deleted;
// products assigned to the category are detached, not deleted.
func (s *CategoryService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}

	hasChildren, err := s.categoryRepo.HasChildren(ctx, tenantID, category.ID)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewDomainError("HAS_CHILDREN", "Cannot delete category with child categories")
	}

	if err := s.productRepo.ClearCategory(ctx, tenantID, category.ID); err != nil {
		return err
	}

	return s.categoryRepo.DeleteForTenant(ctx, tenantID, id)
}

// buildCategoryTree groups child categories under their roots.
// Categories nest at most one level, so a single grouping pass suffices.
func buildCategoryTree(categories []catalog.Category) []CategoryTreeNode {
	childrenByParent := make(map[uuid.UUID][]CategoryTreeNode)
	var roots []CategoryTreeNode

	for _, cat := range categories {
		node := CategoryTreeNode{
			ID:        cat.ID,
			Name:      cat.Name,
			ParentID:  cat.ParentID,
			SortOrder: cat.SortOrder,
			Children:  []CategoryTreeNode{},
		}
		if cat.ParentID == nil {
			roots = append(roots, node)
		} else {
			childrenByParent[*cat.ParentID] = append(childrenByParent[*cat.ParentID], node)
		}
	}

	for i := range roots {
		if children, ok := childrenByParent[roots[i].ID]; ok {
			sort.SliceStable(children, func(a, b int) bool {
				return children[a].SortOrder < children[b].SortOrder
			})
			roots[i].Children = children
		}
	}

	return roots
}
