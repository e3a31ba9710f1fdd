package trade

import (
	"context"
	"testing"

	"github.com/dropship/backoffice/internal/domain/catalog"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/shared/valueobject"
	"github.com/dropship/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockLeadRepository is a mock implementation of LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Lead, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*trade.Lead, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*trade.Lead, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.Lead, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]trade.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindBySeller(ctx context.Context, tenantID, sellerID uuid.UUID, filter shared.Filter) ([]trade.Lead, error) {
	args := m.Called(ctx, tenantID, sellerID, filter)
	return args.Get(0).([]trade.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status trade.LeadStatus, filter shared.Filter) ([]trade.Lead, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]trade.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]trade.Lead, error) {
	args := m.Called(ctx, tenantID, productID, filter)
	return args.Get(0).([]trade.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]trade.Lead, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]trade.Lead), args.Error(1)
}

func (m *MockLeadRepository) Save(ctx context.Context, lead *trade.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) SaveWithLock(ctx context.Context, lead *trade.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) SaveWithLockAndEvents(ctx context.Context, lead *trade.Lead, events []shared.DomainEvent) error {
	args := m.Called(ctx, lead, events)
	return args.Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockLeadRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status trade.LeadStatus) (int64, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) CountBySeller(ctx context.Context, tenantID, sellerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, sellerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) ExistsByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (bool, error) {
	args := m.Called(ctx, tenantID, externalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockLeadRepository) CountsByDay(ctx context.Context, tenantID uuid.UUID, query trade.StatsQuery) ([]trade.StatusDayCount, error) {
	args := m.Called(ctx, tenantID, query)
	return args.Get(0).([]trade.StatusDayCount), args.Error(1)
}

func (m *MockLeadRepository) FindStatusHistory(ctx context.Context, tenantID, leadID uuid.UUID) ([]trade.StatusChange, error) {
	args := m.Called(ctx, tenantID, leadID)
	return args.Get(0).([]trade.StatusChange), args.Error(1)
}

// MockProductReader is a mock implementation of catalog.ProductRepository
type MockProductReader struct {
	mock.Mock
}

func (m *MockProductReader) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductReader) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductReader) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductReader) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductReader) FindByCategory(ctx context.Context, tenantID, categoryID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, categoryID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductReader) FindByVisibility(ctx context.Context, tenantID uuid.UUID, visibility catalog.ProductVisibility, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, visibility, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductReader) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductReader) FindBySKUs(ctx context.Context, tenantID uuid.UUID, skus []string) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, skus)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductReader) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductReader) SaveBatch(ctx context.Context, products []*catalog.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductReader) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductReader) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockProductReader) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductReader) CountByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductReader) CountByVisibility(ctx context.Context, tenantID uuid.UUID, visibility catalog.ProductVisibility) (int64, error) {
	args := m.Called(ctx, tenantID, visibility)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductReader) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	args := m.Called(ctx, tenantID, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductReader) ClearCategory(ctx context.Context, tenantID, categoryID uuid.UUID) error {
	args := m.Called(ctx, tenantID, categoryID)
	return args.Error(0)
}

// Test helper functions
func newTestTenantID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func newTestSellerID() uuid.UUID {
	return uuid.MustParse("44444444-4444-4444-4444-444444444444")
}

func createActiveProduct(tenantID uuid.UUID) *catalog.Product {
	product, _ := catalog.NewProduct(tenantID, "POSTURE-01", "Posture Corrector")
	_ = product.SetPrices(valueobject.NewMoneyUSDFromFloat(12.50), valueobject.NewMoneyUSDFromFloat(39.90))
	_ = product.SetPayout(valueobject.NewMoneyUSDFromFloat(8.00))
	_ = product.Activate()
	product.ClearDomainEvents()
	return product
}

func createTestLead(tenantID, sellerID, productID uuid.UUID, number string) *trade.Lead {
	lead, _ := trade.NewLead(trade.NewLeadInput{
		TenantID:      tenantID,
		SellerID:      sellerID,
		Number:        number,
		ProductID:     productID,
		ProductSKU:    "POSTURE-01",
		ProductName:   "Posture Corrector",
		Quantity:      2,
		UnitPrice:     valueobject.NewMoneyUSDFromFloat(39.90),
		Payout:        valueobject.NewMoneyUSDFromFloat(8.00),
		CustomerName:  "Jane Smith",
		CustomerPhone: "+15550100200",
		Country:       "US",
		City:          "Austin",
		Source:        trade.LeadSourceWeb,
	})
	lead.ClearDomainEvents()
	return lead
}

func newTestLeadService() (*LeadService, *MockLeadRepository, *MockProductReader) {
	mockLeadRepo := new(MockLeadRepository)
	mockProductRepo := new(MockProductReader)
	service := NewLeadService(mockLeadRepo, mockProductRepo, nil)
	return service, mockLeadRepo, mockProductRepo
}

// Tests for LeadService.Create
func TestLeadService_Create_Success(t *testing.T) {
	service, mockLeadRepo, mockProductRepo := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	sellerID := newTestSellerID()
	product := createActiveProduct(tenantID)

	req := CreateLeadRequest{
		ProductID:     product.ID,
		Quantity:      2,
		CustomerName:  "Jane Smith",
		CustomerPhone: "+15550100200",
		Country:       "us",
		City:          "Austin",
	}

	mockProductRepo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
	mockLeadRepo.On("GenerateNumber", ctx, tenantID).Return("LD-20260829-000001", nil)
	mockLeadRepo.On("Save", ctx, mock.AnythingOfType("*trade.Lead")).Return(nil)

	result, err := service.Create(ctx, tenantID, sellerID, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "LD-20260829-000001", result.Number)
	assert.Equal(t, sellerID, result.SellerID)
	assert.Equal(t, "NEW", result.Status)
	assert.Equal(t, "WEB", result.Source)
	assert.Equal(t, "US", result.Country)
	// Catalog values are snapshotted onto the lead
	assert.Equal(t, "POSTURE-01", result.ProductSKU)
	assert.Equal(t, "Posture Corrector", result.ProductName)
	assert.True(t, result.UnitPrice.Equal(decimal.NewFromFloat(39.90)))
	assert.True(t, result.Total.Equal(decimal.NewFromFloat(79.80)))
	assert.True(t, result.Payout.Equal(decimal.NewFromFloat(8.00)))
	assert.True(t, result.PayoutTotal.Equal(decimal.NewFromFloat(16.00)))
	mockLeadRepo.AssertExpectations(t)
	mockProductRepo.AssertExpectations(t)
}

func TestLeadService_Create_DefaultsQuantityAndSource(t *testing.T) {
	service, mockLeadRepo, mockProductRepo := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	sellerID := newTestSellerID()
	product := createActiveProduct(tenantID)

	req := CreateLeadRequest{
		ProductID:     product.ID,
		CustomerName:  "Jane Smith",
		CustomerPhone: "+15550100200",
		Country:       "US",
	}

	mockProductRepo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
	mockLeadRepo.On("GenerateNumber", ctx, tenantID).Return("LD-20260829-000002", nil)
	mockLeadRepo.On("Save", ctx, mock.AnythingOfType("*trade.Lead")).Return(nil)

	result, err := service.Create(ctx, tenantID, sellerID, req)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Quantity)
	assert.Equal(t, "WEB", result.Source)
	mockLeadRepo.AssertExpectations(t)
}

func TestLeadService_Create_ProductNotActive(t *testing.T) {
	service, mockLeadRepo, mockProductRepo := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	product, _ := catalog.NewProduct(tenantID, "DRAFT-01", "Draft Product")

	req := CreateLeadRequest{
		ProductID:     product.ID,
		CustomerName:  "Jane Smith",
		CustomerPhone: "+15550100200",
		Country:       "US",
	}

	mockProductRepo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)

	result, err := service.Create(ctx, tenantID, newTestSellerID(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRODUCT_NOT_ACTIVE", domainErr.Code)
	mockLeadRepo.AssertNotCalled(t, "Save")
}

func TestLeadService_Create_DuplicateExternalID(t *testing.T) {
	service, mockLeadRepo, mockProductRepo := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	product := createActiveProduct(tenantID)

	req := CreateLeadRequest{
		ProductID:     product.ID,
		ExternalID:    "ext-123",
		CustomerName:  "Jane Smith",
		CustomerPhone: "+15550100200",
		Country:       "US",
	}

	mockProductRepo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
	mockLeadRepo.On("ExistsByExternalID", ctx, tenantID, "ext-123").Return(true, nil)

	result, err := service.Create(ctx, tenantID, newTestSellerID(), req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	mockLeadRepo.AssertNotCalled(t, "GenerateNumber")
}

// Tests for seller scoping
func TestLeadService_GetByID_SellerScope(t *testing.T) {
	service, mockLeadRepo, _ := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	owner := newTestSellerID()
	lead := createTestLead(tenantID, owner, uuid.New(), "LD-20260829-000003")

	mockLeadRepo.On("FindByIDForTenant", ctx, tenantID, lead.ID).Return(lead, nil)

	t.Run("owner can read the lead", func(t *testing.T) {
		result, err := service.GetByID(ctx, tenantID, lead.ID, &owner)
		assert.NoError(t, err)
		assert.Equal(t, lead.ID, result.ID)
	})

	t.Run("another seller gets NOT_FOUND", func(t *testing.T) {
		other := uuid.New()
		result, err := service.GetByID(ctx, tenantID, lead.ID, &other)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, result)
	})

	t.Run("staff without scope can read the lead", func(t *testing.T) {
		result, err := service.GetByID(ctx, tenantID, lead.ID, nil)
		assert.NoError(t, err)
		assert.Equal(t, lead.ID, result.ID)
	})
}

func TestLeadService_GetByNumber_SellerScope(t *testing.T) {
	service, mockLeadRepo, _ := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	owner := newTestSellerID()
	lead := createTestLead(tenantID, owner, uuid.New(), "LD-20260829-000004")
	other := uuid.New()

	mockLeadRepo.On("FindByNumber", ctx, tenantID, lead.Number).Return(lead, nil)

	result, err := service.GetByNumber(ctx, tenantID, lead.Number, &other)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Nil(t, result)
}

func TestLeadService_List_SellerScopeOverridesFilter(t *testing.T) {
	service, mockLeadRepo, _ := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	scope := newTestSellerID()
	requested := uuid.New()

	// The seller asked for someone else's leads; the scope must win
	expectedFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["seller_id"] == scope && f.Page == 1 && f.PageSize == 20
	})
	mockLeadRepo.On("FindAllForTenant", ctx, tenantID, expectedFilter).Return([]trade.Lead{}, nil)
	mockLeadRepo.On("CountForTenant", ctx, tenantID, expectedFilter).Return(int64(0), nil)

	_, _, err := service.List(ctx, tenantID, LeadListFilter{SellerID: &requested}, &scope)

	assert.NoError(t, err)
	mockLeadRepo.AssertExpectations(t)
}

// Tests for LeadService.Update
func TestLeadService_Update_CustomerBlock(t *testing.T) {
	service, mockLeadRepo, _ := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	sellerID := newTestSellerID()
	lead := createTestLead(tenantID, sellerID, uuid.New(), "LD-20260829-000005")
	newPhone := "+15550100999"
	newComment := "call after 6pm"

	mockLeadRepo.On("FindByIDForTenant", ctx, tenantID, lead.ID).Return(lead, nil)
	mockLeadRepo.On("SaveWithLock", ctx, lead).Return(nil)

	result, err := service.Update(ctx, tenantID, lead.ID, UpdateLeadRequest{
		CustomerPhone: &newPhone,
		Comment:       &newComment,
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "+15550100999", result.CustomerPhone)
	assert.Equal(t, "Jane Smith", result.CustomerName)
	assert.Equal(t, "call after 6pm", result.Comment)
	mockLeadRepo.AssertExpectations(t)
}

func TestLeadService_Update_TerminalLead(t *testing.T) {
	service, mockLeadRepo, _ := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	sellerID := newTestSellerID()
	lead := createTestLead(tenantID, sellerID, uuid.New(), "LD-20260829-000006")
	actor := sellerID
	_ = lead.ChangeStatus(trade.LeadStatusCancelled, "", &actor)
	newName := "Someone Else"

	mockLeadRepo.On("FindByIDForTenant", ctx, tenantID, lead.ID).Return(lead, nil)

	result, err := service.Update(ctx, tenantID, lead.ID, UpdateLeadRequest{CustomerName: &newName}, nil)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	mockLeadRepo.AssertNotCalled(t, "SaveWithLock")
}

// Tests for LeadService.ChangeStatus
func TestLeadService_ChangeStatus_Success(t *testing.T) {
	service, mockLeadRepo, _ := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	sellerID := newTestSellerID()
	changedBy := uuid.New()
	lead := createTestLead(tenantID, sellerID, uuid.New(), "LD-20260829-000007")

	mockLeadRepo.On("FindByIDForTenant", ctx, tenantID, lead.ID).Return(lead, nil)
	mockLeadRepo.On("SaveWithLockAndEvents", ctx, lead, mock.AnythingOfType("[]shared.DomainEvent")).Return(nil)

	result, err := service.ChangeStatus(ctx, tenantID, lead.ID, ChangeLeadStatusRequest{
		Status: "CONFIRMED",
		Reason: "customer confirmed by phone",
	}, changedBy, nil)

	assert.NoError(t, err)
	assert.Equal(t, "CONFIRMED", result.Status)
	assert.Len(t, result.StatusHistory, 1)
	assert.Equal(t, "NEW", result.StatusHistory[0].FromStatus)
	assert.Equal(t, "CONFIRMED", result.StatusHistory[0].ToStatus)
	assert.Equal(t, "customer confirmed by phone", result.StatusHistory[0].Reason)
	mockLeadRepo.AssertExpectations(t)
}

func TestLeadService_ChangeStatus_InvalidTransition(t *testing.T) {
	service, mockLeadRepo, _ := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	lead := createTestLead(tenantID, newTestSellerID(), uuid.New(), "LD-20260829-000008")

	mockLeadRepo.On("FindByIDForTenant", ctx, tenantID, lead.ID).Return(lead, nil)

	result, err := service.ChangeStatus(ctx, tenantID, lead.ID, ChangeLeadStatusRequest{
		Status: "DELIVERED",
	}, uuid.New(), nil)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	mockLeadRepo.AssertNotCalled(t, "SaveWithLockAndEvents")
}

// Tests for LeadService.BulkChangeStatus
func TestLeadService_BulkChangeStatus_PartialSuccess(t *testing.T) {
	service, mockLeadRepo, _ := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	sellerID := newTestSellerID()
	changedBy := uuid.New()

	workable := createTestLead(tenantID, sellerID, uuid.New(), "LD-20260829-000009")
	terminal := createTestLead(tenantID, sellerID, uuid.New(), "LD-20260829-000010")
	actor := sellerID
	_ = terminal.ChangeStatus(trade.LeadStatusTrash, "", &actor)
	missing := uuid.New()

	req := BulkChangeStatusRequest{
		LeadIDs: []uuid.UUID{workable.ID, terminal.ID, missing},
		Status:  "CONFIRMED",
	}

	mockLeadRepo.On("FindByIDs", ctx, tenantID, req.LeadIDs).Return([]trade.Lead{*workable, *terminal}, nil)
	mockLeadRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*trade.Lead"), mock.AnythingOfType("[]shared.DomainEvent")).Return(nil)

	result, err := service.BulkChangeStatus(ctx, tenantID, req, changedBy, nil)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.NotEmpty(t, result.Results[1].Error)
	assert.False(t, result.Results[2].Success)
	assert.Equal(t, "Lead not found", result.Results[2].Error)
	mockLeadRepo.AssertExpectations(t)
}

func TestLeadService_BulkChangeStatus_EmptyList(t *testing.T) {
	service, mockLeadRepo, _ := newTestLeadService()

	result, err := service.BulkChangeStatus(context.Background(), newTestTenantID(), BulkChangeStatusRequest{
		Status: "CONFIRMED",
	}, uuid.New(), nil)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	mockLeadRepo.AssertNotCalled(t, "FindByIDs")
}

func TestLeadService_BulkChangeStatus_SellerScopeHidesForeignLeads(t *testing.T) {
	service, mockLeadRepo, _ := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()
	scope := newTestSellerID()
	foreign := createTestLead(tenantID, uuid.New(), uuid.New(), "LD-20260829-000011")

	req := BulkChangeStatusRequest{
		LeadIDs: []uuid.UUID{foreign.ID},
		Status:  "CONFIRMED",
	}

	mockLeadRepo.On("FindByIDs", ctx, tenantID, req.LeadIDs).Return([]trade.Lead{*foreign}, nil)

	result, err := service.BulkChangeStatus(ctx, tenantID, req, scope, &scope)

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "Lead not found", result.Results[0].Error)
	mockLeadRepo.AssertNotCalled(t, "SaveWithLockAndEvents")
}

// Tests for LeadService.GetStatusSummary
func TestLeadService_GetStatusSummary(t *testing.T) {
	service, mockLeadRepo, _ := newTestLeadService()

	ctx := context.Background()
	tenantID := newTestTenantID()

	counts := map[string]int64{
		"NEW": 4, "CALLBACK": 1, "CONFIRMED": 3, "SHIPPED": 2, "DELIVERED": 1,
		"PAID": 5, "CANCELLED": 2, "RETURNED": 0, "TRASH": 1,
	}
	for status, n := range counts {
		status, n := status, n
		mockLeadRepo.On("CountForTenant", ctx, tenantID, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["status"] == status
		})).Return(n, nil)
	}

	summary, err := service.GetStatusSummary(ctx, tenantID, nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(4), summary.New)
	assert.Equal(t, int64(5), summary.Paid)
	assert.Equal(t, int64(19), summary.Total)
	mockLeadRepo.AssertExpectations(t)
}
