package handler

import (
	walletapp "github.com/dropship/backoffice/internal/application/wallet"
	"github.com/dropship/backoffice/internal/domain/identity"
	"github.com/dropship/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles wallet ledger API endpoints: transaction history,
// balance summaries and manual operator adjustments.
type LedgerHandler struct {
	BaseHandler
	ledgerService *walletapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *walletapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// ListTransactions godoc
// @Summary      Ledger history
// @Description  The caller's wallet transactions, newest first. Staff may pass user_id to inspect another user's ledger.
// @Tags         ledger
// @Produce      json
// @Param        user_id query string false "Inspect another user's ledger (staff only)" format(uuid)
// @Param        type query string false "Filter by entry type" Enums(CREDIT, DEBIT, WITHDRAWAL, WITHDRAWAL_REVERSAL, ADJUSTMENT)
// @Param        source query string false "Filter by source" Enums(LEAD_PAYOUT, WITHDRAWAL, MANUAL, CORRECTION)
// @Param        date_from query string false "Entries on or after (YYYY-MM-DD)"
// @Param        date_to query string false "Entries on or before (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]walletapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /wallet/transactions [get]
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	callerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter walletapp.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	subjectID := callerID
	if raw := c.Query("user_id"); raw != "" {
		requested, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid user ID format")
			return
		}
		if requested != callerID {
			role := identity.Role(middleware.GetJWTRole(c))
			if role != identity.RoleAdmin && role != identity.RoleManager {
				h.Forbidden(c, "Cannot inspect another user's ledger")
				return
			}
			subjectID = requested
		}
	}

	transactions, total, err := h.ledgerService.ListTransactions(c.Request.Context(), tenantID, subjectID, filter)
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
	h.SuccessWithMeta(c, transactions, total, page, pageSize)
}

// ListAllTransactions godoc
// @Summary      Tenant-wide ledger history
// @Description  All wallet transactions of the tenant, optionally narrowed to one user. Staff only.
// @Tags         ledger
// @Produce      json
// @Param        user_id query string false "Narrow to one user" format(uuid)
// @Param        type query string false "Filter by entry type"
// @Param        source query string false "Filter by source"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]walletapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/wallet/transactions [get]
func (h *LedgerHandler) ListAllTransactions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter walletapp.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var subjectID *uuid.UUID
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid user ID format")
			return
		}
		subjectID = &parsed
	}

	transactions, total, err := h.ledgerService.ListAllTransactions(c.Request.Context(), tenantID, subjectID, filter)
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
	h.SuccessWithMeta(c, transactions, total, page, pageSize)
}

// GetBalanceSummary godoc
// @Summary      Wallet balance summary
// @Description  Available, pending and lifetime figures for the caller
// @Tags         ledger
// @Produce      json
// @Success      200 {object} dto.Response{data=walletapp.BalanceSummaryResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /wallet/balance [get]
func (h *LedgerHandler) GetBalanceSummary(c *gin.Context) {
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

	summary, err := h.ledgerService.GetBalanceSummary(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// Adjust godoc
// @Summary      Manual balance adjustment
// @Description  Credit or debit a user's wallet with an audited ledger entry. Admin only.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body walletapp.AdjustBalanceRequest true "Adjustment request"
// @Success      200 {object} dto.Response{data=walletapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/wallet/adjust [post]
func (h *LedgerHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	operatorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req walletapp.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transaction, err := h.ledgerService.Adjust(c.Request.Context(), tenantID, operatorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, transaction)
}
