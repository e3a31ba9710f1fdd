package trade

import (
	"context"
	"errors"

	"github.com/dropship/backoffice/internal/domain/catalog"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadService handles lead capture and lifecycle operations
type LeadService struct {
	leadRepo       trade.LeadRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLeadService creates a new LeadService
func NewLeadService(
	leadRepo trade.LeadRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{
		leadRepo:    leadRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LeadService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create captures a new lead for the seller. The product must be active;
// its SKU, name, price and payout are snapshotted onto the lead so later
// catalog edits do not rewrite order history.
func (s *LeadService) Create(ctx context.Context, tenantID, sellerID uuid.UUID, req CreateLeadRequest) (*LeadResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("PRODUCT_NOT_ACTIVE", "Product is not available for ordering")
	}

	if req.ExternalID != "" {
		exists, err := s.leadRepo.ExistsByExternalID(ctx, tenantID, req.ExternalID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Lead with this external ID already exists")
		}
	}

	number, err := s.leadRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	source := trade.LeadSource(req.Source)
	if req.Source == "" {
		source = trade.LeadSourceWeb
	}

	lead, err := trade.NewLead(trade.NewLeadInput{
		TenantID:      tenantID,
		SellerID:      sellerID,
		Number:        number,
		ExternalID:    req.ExternalID,
		ProductID:     product.ID,
		ProductSKU:    product.SKU,
		ProductName:   product.Name,
		Quantity:      quantity,
		UnitPrice:     product.GetSellingPriceMoney(),
		Payout:        product.GetPayoutMoney(),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Country:       req.Country,
		City:          req.City,
		Address:       req.Address,
		Comment:       req.Comment,
		Source:        source,
		Subs: trade.SubIDs{
			Sub1: req.Sub1,
			Sub2: req.Sub2,
			Sub3: req.Sub3,
			Sub4: req.Sub4,
			Sub5: req.Sub5,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, err
	}

	s.logger.Info("lead captured",
		zap.String("lead_id", lead.ID.String()),
		zap.String("number", lead.Number),
		zap.String("product_sku", lead.ProductSKU),
		zap.String("country", lead.Country),
	)

	s.publishEvents(ctx, lead)

	response := ToLeadResponse(lead)
	return &response, nil
}

// GetByID retrieves a lead by ID. A non-nil sellerScope restricts the
// lookup to leads owned by that seller.
func (s *LeadService) GetByID(ctx context.Context, tenantID, leadID uuid.UUID, sellerScope *uuid.UUID) (*LeadResponse, error) {
	lead, err := s.findLead(ctx, tenantID, leadID, sellerScope)
	if err != nil {
		return nil, err
	}
	response := ToLeadResponse(lead)
	return &response, nil
}

// GetByNumber retrieves a lead by its human-readable number
func (s *LeadService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string, sellerScope *uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	if sellerScope != nil && lead.SellerID() != *sellerScope {
		return nil, shared.ErrNotFound
	}
	response := ToLeadResponse(lead)
	return &response, nil
}

// List retrieves leads with filtering and pagination. A non-nil
// sellerScope overrides any seller filter in the request.
func (s *LeadService) List(ctx context.Context, tenantID uuid.UUID, filter LeadListFilter, sellerScope *uuid.UUID) ([]LeadListItemResponse, int64, error) {
	if sellerScope != nil {
		filter.SellerID = sellerScope
	}
	domainFilter := s.toDomainFilter(filter)

	leads, err := s.leadRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.leadRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToLeadListItemResponses(leads), total, nil
}

// Update edits a lead's customer block and comment while the lead is workable
func (s *LeadService) Update(ctx context.Context, tenantID, leadID uuid.UUID, req UpdateLeadRequest, sellerScope *uuid.UUID) (*LeadResponse, error) {
	lead, err := s.findLead(ctx, tenantID, leadID, sellerScope)
	if err != nil {
		return nil, err
	}

	if req.CustomerName != nil || req.CustomerPhone != nil || req.Country != nil ||
		req.City != nil || req.Address != nil {
		name := lead.CustomerName
		phone := lead.CustomerPhone
		country := lead.Country
		city := lead.City
		address := lead.Address
		if req.CustomerName != nil {
			name = *req.CustomerName
		}
		if req.CustomerPhone != nil {
			phone = *req.CustomerPhone
		}
		if req.Country != nil {
			country = *req.Country
		}
		if req.City != nil {
			city = *req.City
		}
		if req.Address != nil {
			address = *req.Address
		}
		if err := lead.UpdateCustomer(name, phone, country, city, address); err != nil {
			return nil, err
		}
	}

	if req.Comment != nil {
		if err := lead.SetComment(*req.Comment); err != nil {
			return nil, err
		}
	}

	if err := s.leadRepo.SaveWithLock(ctx, lead); err != nil {
		return nil, err
	}

	response := ToLeadResponse(lead)
	return &response, nil
}

// ChangeStatus moves a lead along the status table. The transition and
// its events are committed atomically so downstream consumers (postback
// delivery, wallet crediting) never miss a change.
func (s *LeadService) ChangeStatus(ctx context.Context, tenantID, leadID uuid.UUID, req ChangeLeadStatusRequest, changedBy uuid.UUID, sellerScope *uuid.UUID) (*LeadResponse, error) {
	lead, err := s.findLead(ctx, tenantID, leadID, sellerScope)
	if err != nil {
		return nil, err
	}

	actor := changedBy
	if err := lead.ChangeStatus(trade.LeadStatus(req.Status), req.Reason, &actor); err != nil {
		return nil, err
	}

	events := lead.GetDomainEvents()
	if err := s.leadRepo.SaveWithLockAndEvents(ctx, lead, events); err != nil {
		return nil, err
	}
	lead.ClearDomainEvents()

	s.logger.Info("lead status changed",
		zap.String("lead_id", lead.ID.String()),
		zap.String("number", lead.Number),
		zap.String("status", string(lead.Status)),
	)

	response := ToLeadResponse(lead)
	return &response, nil
}

// BulkChangeStatus applies one target status to several leads, reporting
// per-lead success. Partial success is allowed; each lead is committed
// independently.
func (s *LeadService) BulkChangeStatus(ctx context.Context, tenantID uuid.UUID, req BulkChangeStatusRequest, changedBy uuid.UUID, sellerScope *uuid.UUID) (*BulkChangeStatusResult, error) {
	if len(req.LeadIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Lead ID list cannot be empty")
	}

	leads, err := s.leadRepo.FindByIDs(ctx, tenantID, req.LeadIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*trade.Lead, len(leads))
	for i := range leads {
		byID[leads[i].ID] = &leads[i]
	}

	result := &BulkChangeStatusResult{
		Results: make([]BulkChangeStatusItemResult, 0, len(req.LeadIDs)),
	}

	actor := changedBy
	for _, leadID := range req.LeadIDs {
		lead, ok := byID[leadID]
		if !ok || (sellerScope != nil && lead.SellerID() != *sellerScope) {
			result.Failed++
			result.Results = append(result.Results, BulkChangeStatusItemResult{
				LeadID: leadID,
				Error:  "Lead not found",
			})
			continue
		}

		if err := lead.ChangeStatus(trade.LeadStatus(req.Status), req.Reason, &actor); err != nil {
			result.Failed++
			result.Results = append(result.Results, BulkChangeStatusItemResult{
				LeadID: leadID,
				Error:  errorMessage(err),
			})
			continue
		}

		events := lead.GetDomainEvents()
		if err := s.leadRepo.SaveWithLockAndEvents(ctx, lead, events); err != nil {
			result.Failed++
			result.Results = append(result.Results, BulkChangeStatusItemResult{
				LeadID: leadID,
				Error:  errorMessage(err),
			})
			continue
		}
		lead.ClearDomainEvents()

		result.Succeeded++
		result.Results = append(result.Results, BulkChangeStatusItemResult{
			LeadID:  leadID,
			Success: true,
		})
	}

	s.logger.Info("bulk lead status change completed",
		zap.String("status", req.Status),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

// GetStatusHistory returns a lead's transitions in chronological order
func (s *LeadService) GetStatusHistory(ctx context.Context, tenantID, leadID uuid.UUID, sellerScope *uuid.UUID) ([]StatusChangeResponse, error) {
	if _, err := s.findLead(ctx, tenantID, leadID, sellerScope); err != nil {
		return nil, err
	}

	history, err := s.leadRepo.FindStatusHistory(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}

	responses := make([]StatusChangeResponse, len(history))
	for i, change := range history {
		responses[i] = ToStatusChangeResponse(change)
	}
	return responses, nil
}

// GetStatusSummary returns lead counts per status for the dashboard
func (s *LeadService) GetStatusSummary(ctx context.Context, tenantID uuid.UUID, sellerScope *uuid.UUID) (*LeadStatusSummary, error) {
	summary := &LeadStatusSummary{}

	statuses := []struct {
		status trade.LeadStatus
		target *int64
	}{
		{trade.LeadStatusNew, &summary.New},
		{trade.LeadStatusCallback, &summary.Callback},
		{trade.LeadStatusConfirmed, &summary.Confirmed},
		{trade.LeadStatusShipped, &summary.Shipped},
		{trade.LeadStatusDelivered, &summary.Delivered},
		{trade.LeadStatusPaid, &summary.Paid},
		{trade.LeadStatusCancelled, &summary.Cancelled},
		{trade.LeadStatusReturned, &summary.Returned},
		{trade.LeadStatusTrash, &summary.Trash},
	}
	for _, st := range statuses {
		filter := shared.Filter{Filters: map[string]interface{}{"status": string(st.status)}}
		if sellerScope != nil {
			filter.Filters["seller_id"] = *sellerScope
		}
		n, err := s.leadRepo.CountForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		*st.target = n
		summary.Total += n
	}

	return summary, nil
}

// findLead loads a lead and enforces seller ownership. Leads owned by
// another seller are reported as not found so their existence does not leak.
func (s *LeadService) findLead(ctx context.Context, tenantID, leadID uuid.UUID, sellerScope *uuid.UUID) (*trade.Lead, error) {
	lead, err := s.leadRepo.FindByIDForTenant(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}
	if sellerScope != nil && lead.SellerID() != *sellerScope {
		return nil, shared.ErrNotFound
	}
	return lead, nil
}

// toDomainFilter builds the repository filter from the API filter
func (s *LeadService) toDomainFilter(filter LeadListFilter) shared.Filter {
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

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if len(filter.Statuses) > 0 {
		domainFilter.Filters["statuses"] = filter.Statuses
	}
	if filter.SellerID != nil {
		domainFilter.Filters["seller_id"] = *filter.SellerID
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}
	if filter.Country != "" {
		domainFilter.Filters["country"] = filter.Country
	}
	if filter.Source != "" {
		domainFilter.Filters["source"] = filter.Source
	}
	if filter.Sub1 != "" {
		domainFilter.Filters["sub1"] = filter.Sub1
	}
	if filter.Sub2 != "" {
		domainFilter.Filters["sub2"] = filter.Sub2
	}
	if filter.Sub3 != "" {
		domainFilter.Filters["sub3"] = filter.Sub3
	}
	if filter.Sub4 != "" {
		domainFilter.Filters["sub4"] = filter.Sub4
	}
	if filter.Sub5 != "" {
		domainFilter.Filters["sub5"] = filter.Sub5
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	return domainFilter
}

// publishEvents forwards accumulated domain events to the event bus
func (s *LeadService) publishEvents(ctx context.Context, lead *trade.Lead) {
	if s.eventPublisher == nil {
		return
	}
	events := lead.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	lead.ClearDomainEvents()
}

// errorMessage extracts a human-readable message for bulk result rows
func errorMessage(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	if errors.Is(err, shared.ErrNotFound) {
		return "Lead not found"
	}
	return err.Error()
}
