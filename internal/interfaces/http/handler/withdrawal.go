package handler

import (
	walletapp "github.com/dropship/backoffice/internal/application/wallet"
	"github.com/dropship/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WithdrawalHandler handles withdrawal API endpoints. Sellers request and
// cancel their own withdrawals; approval, rejection and payout retry are
// admin operations.
type WithdrawalHandler struct {
	BaseHandler
	withdrawalService *walletapp.WithdrawalService
}

// NewWithdrawalHandler creates a new WithdrawalHandler
func NewWithdrawalHandler(withdrawalService *walletapp.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
	}
}

// Request godoc
// @Summary      Request a withdrawal
// @Description  Reserve available balance for payout to one of the caller's wallets
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        request body walletapp.CreateWithdrawalRequest true "Withdrawal request"
// @Success      201 {object} dto.Response{data=walletapp.WithdrawalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /withdrawals [post]
func (h *WithdrawalHandler) Request(c *gin.Context) {
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

	var req walletapp.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	withdrawal, err := h.withdrawalService.Request(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, withdrawal)
}

// List godoc
// @Summary      List withdrawals
// @Description  List withdrawals with filters; sellers see only their own
// @Tags         withdrawals
// @Produce      json
// @Param        status query string false "Filter by status" Enums(PENDING, APPROVED, PAID, REJECTED, CANCELLED)
// @Param        user_id query string false "Filter by user (staff only)" format(uuid)
// @Param        start_date query string false "Requested on or after (YYYY-MM-DD)"
// @Param        end_date query string false "Requested on or before (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]walletapp.WithdrawalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /withdrawals [get]
func (h *WithdrawalHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter walletapp.WithdrawalListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	withdrawals, total, err := h.withdrawalService.List(c.Request.Context(), tenantID, filter, middleware.SellerScope(c))
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
	h.SuccessWithMeta(c, withdrawals, total, page, pageSize)
}

// GetByID godoc
// @Summary      Get a withdrawal
// @Tags         withdrawals
// @Produce      json
// @Param        id path string true "Withdrawal ID" format(uuid)
// @Success      200 {object} dto.Response{data=walletapp.WithdrawalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /withdrawals/{id} [get]
func (h *WithdrawalHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid withdrawal ID format")
		return
	}

	withdrawal, err := h.withdrawalService.GetByID(c.Request.Context(), tenantID, withdrawalID, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, withdrawal)
}

// Cancel godoc
// @Summary      Cancel a withdrawal
// @Description  The requester cancels a still-pending withdrawal; the reserved amount is released
// @Tags         withdrawals
// @Produce      json
// @Param        id path string true "Withdrawal ID" format(uuid)
// @Success      200 {object} dto.Response{data=walletapp.WithdrawalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /withdrawals/{id}/cancel [post]
func (h *WithdrawalHandler) Cancel(c *gin.Context) {
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

	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid withdrawal ID format")
		return
	}

	withdrawal, err := h.withdrawalService.Cancel(c.Request.Context(), tenantID, userID, withdrawalID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, withdrawal)
}

// Approve godoc
// @Summary      Approve a withdrawal
// @Description  Approve a pending withdrawal and trigger the payout. Admin only.
// @Tags         withdrawals
// @Produce      json
// @Param        id path string true "Withdrawal ID" format(uuid)
// @Success      200 {object} dto.Response{data=walletapp.WithdrawalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/withdrawals/{id}/approve [post]
func (h *WithdrawalHandler) Approve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid withdrawal ID format")
		return
	}

	withdrawal, err := h.withdrawalService.Approve(c.Request.Context(), tenantID, adminID, withdrawalID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, withdrawal)
}

// Reject godoc
// @Summary      Reject a withdrawal
// @Description  Decline a pending withdrawal with a reason; the reserved amount is released. Admin only.
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        id path string true "Withdrawal ID" format(uuid)
// @Param        request body walletapp.RejectWithdrawalRequest true "Rejection reason"
// @Success      200 {object} dto.Response{data=walletapp.WithdrawalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/withdrawals/{id}/reject [post]
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid withdrawal ID format")
		return
	}

	var req walletapp.RejectWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	withdrawal, err := h.withdrawalService.Reject(c.Request.Context(), tenantID, adminID, withdrawalID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, withdrawal)
}

// RetryPayout godoc
// @Summary      Retry a failed payout
// @Description  Re-run the payment gateway call for an approved withdrawal whose payout failed. Admin only.
// @Tags         withdrawals
// @Produce      json
// @Param        id path string true "Withdrawal ID" format(uuid)
// @Success      200 {object} dto.Response{data=walletapp.WithdrawalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/withdrawals/{id}/retry [post]
func (h *WithdrawalHandler) RetryPayout(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid withdrawal ID format")
		return
	}

	withdrawal, err := h.withdrawalService.RetryPayout(c.Request.Context(), tenantID, withdrawalID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, withdrawal)
}

// GetStatusSummary godoc
// @Summary      Withdrawal counts per status
// @Description  Dashboard card: withdrawal totals per status. Staff only.
// @Tags         withdrawals
// @Produce      json
// @Success      200 {object} dto.Response{data=walletapp.WithdrawalStatusSummary}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/withdrawals/summary [get]
func (h *WithdrawalHandler) GetStatusSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	summary, err := h.withdrawalService.GetStatusSummary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}
