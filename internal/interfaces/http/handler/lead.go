package handler

import (
	tradeapp "github.com/dropship/backoffice/internal/application/trade"
	"github.com/dropship/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadHandler handles lead (order) API endpoints. Sellers only see their
// own leads; staff see every lead of the tenant.
type LeadHandler struct {
	BaseHandler
	leadService  *tradeapp.LeadService
	statsService *tradeapp.LeadStatsService
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadService *tradeapp.LeadService, statsService *tradeapp.LeadStatsService) *LeadHandler {
	return &LeadHandler{
		leadService:  leadService,
		statsService: statsService,
	}
}

// Create godoc
// @Summary      Capture a new lead
// @Description  Create a lead for a product; price and payout are snapshotted from the product
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateLeadRequest true "Lead creation request"
// @Success      201 {object} dto.Response{data=tradeapp.LeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	sellerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req tradeapp.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.Create(c.Request.Context(), tenantID, sellerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, lead)
}

// List godoc
// @Summary      List leads
// @Description  List leads with pagination, search and filters; sellers see only their own
// @Tags         leads
// @Produce      json
// @Param        search query string false "Search by number, customer name or phone"
// @Param        status query string false "Filter by status"
// @Param        statuses query []string false "Filter by several statuses"
// @Param        product_id query string false "Filter by product" format(uuid)
// @Param        country query string false "Filter by country code"
// @Param        start_date query string false "Created on or after (YYYY-MM-DD)"
// @Param        end_date query string false "Created on or before (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]tradeapp.LeadListItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter tradeapp.LeadListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	leads, total, err := h.leadService.List(c.Request.Context(), tenantID, filter, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page := filter.Page
	if page == 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, leads, total, page, pageSize)
}

// GetByID godoc
// @Summary      Get lead by ID
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.LeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id} [get]
func (h *LeadHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	lead, err := h.leadService.GetByID(c.Request.Context(), tenantID, leadID, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lead)
}

// GetByNumber godoc
// @Summary      Get lead by number
// @Tags         leads
// @Produce      json
// @Param        number path string true "Lead number"
// @Success      200 {object} dto.Response{data=tradeapp.LeadResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/number/{number} [get]
func (h *LeadHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Lead number is required")
		return
	}

	lead, err := h.leadService.GetByNumber(c.Request.Context(), tenantID, number, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lead)
}

// Update godoc
// @Summary      Update a lead
// @Description  Edit the customer block and comment; terminal leads reject edits
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body tradeapp.UpdateLeadRequest true "Lead update request"
// @Success      200 {object} dto.Response{data=tradeapp.LeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req tradeapp.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.Update(c.Request.Context(), tenantID, leadID, req, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lead)
}

// ChangeStatus godoc
// @Summary      Change a lead's status
// @Description  Move a lead along the workflow; invalid transitions are rejected
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body tradeapp.ChangeLeadStatusRequest true "Target status"
// @Success      200 {object} dto.Response{data=tradeapp.LeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id}/status [post]
func (h *LeadHandler) ChangeStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req tradeapp.ChangeLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.ChangeStatus(c.Request.Context(), tenantID, leadID, req, userID, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lead)
}

// BulkChangeStatus godoc
// @Summary      Change status for several leads
// @Description  Apply the same status change to up to 500 leads; per-lead outcomes are reported
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.BulkChangeStatusRequest true "Bulk status change"
// @Success      200 {object} dto.Response{data=tradeapp.BulkChangeStatusResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/bulk/status [post]
func (h *LeadHandler) BulkChangeStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req tradeapp.BulkChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.leadService.BulkChangeStatus(c.Request.Context(), tenantID, req, userID, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetStatusHistory godoc
// @Summary      Lead status history
// @Description  Ordered list of the lead's status transitions
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]tradeapp.StatusChangeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id}/history [get]
func (h *LeadHandler) GetStatusHistory(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	history, err := h.leadService.GetStatusHistory(c.Request.Context(), tenantID, leadID, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, history)
}

// GetStatusSummary godoc
// @Summary      Lead counts per status
// @Description  Dashboard card: lead totals per status
// @Tags         leads
// @Produce      json
// @Success      200 {object} dto.Response{data=tradeapp.LeadStatusSummary}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/summary [get]
func (h *LeadHandler) GetStatusSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	summary, err := h.leadService.GetStatusSummary(c.Request.Context(), tenantID, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetDailyStats godoc
// @Summary      Daily lead statistics
// @Description  Per-day lead counts, revenue and payout over the requested window
// @Tags         leads
// @Produce      json
// @Param        from query string false "Window start (YYYY-MM-DD)"
// @Param        to query string false "Window end (YYYY-MM-DD)"
// @Param        status query string false "Filter by status"
// @Param        product_id query string false "Filter by product" format(uuid)
// @Param        country query string false "Filter by country code"
// @Success      200 {object} dto.Response{data=[]trade.LeadDailyStat}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/stats/daily [get]
func (h *LeadHandler) GetDailyStats(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter tradeapp.DailyStatsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stats, err := h.statsService.GetDailyStats(c.Request.Context(), tenantID, filter, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
