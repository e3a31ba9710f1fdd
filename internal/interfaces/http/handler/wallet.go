package handler

import (
	walletapp "github.com/dropship/backoffice/internal/application/wallet"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles payout wallet API endpoints. Wallets are always
// scoped to the authenticated user, admins included.
type WalletHandler struct {
	BaseHandler
	walletService *walletapp.WalletService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(walletService *walletapp.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

func (h *WalletHandler) callerIDs(c *gin.Context) (tenantID, userID uuid.UUID, ok bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

// Create godoc
// @Summary      Register a payout wallet
// @Description  Add a payout destination for the caller; the first wallet becomes the default
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request body walletapp.CreateWalletRequest true "Wallet registration request"
// @Success      201 {object} dto.Response{data=walletapp.WalletResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /wallets [post]
func (h *WalletHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.callerIDs(c)
	if !ok {
		return
	}

	var req walletapp.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wallet, err := h.walletService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, wallet)
}

// List godoc
// @Summary      List the caller's payout wallets
// @Tags         wallets
// @Produce      json
// @Success      200 {object} dto.Response{data=[]walletapp.WalletResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /wallets [get]
func (h *WalletHandler) List(c *gin.Context) {
	tenantID, userID, ok := h.callerIDs(c)
	if !ok {
		return
	}

	wallets, err := h.walletService.List(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, wallets)
}

// GetByID godoc
// @Summary      Get a payout wallet
// @Tags         wallets
// @Produce      json
// @Param        id path string true "Wallet ID" format(uuid)
// @Success      200 {object} dto.Response{data=walletapp.WalletResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /wallets/{id} [get]
func (h *WalletHandler) GetByID(c *gin.Context) {
	tenantID, userID, ok := h.callerIDs(c)
	if !ok {
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID format")
		return
	}

	wallet, err := h.walletService.GetByID(c.Request.Context(), tenantID, userID, walletID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, wallet)
}

// Update godoc
// @Summary      Update a payout wallet
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        id path string true "Wallet ID" format(uuid)
// @Param        request body walletapp.UpdateWalletRequest true "Wallet update request"
// @Success      200 {object} dto.Response{data=walletapp.WalletResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /wallets/{id} [put]
func (h *WalletHandler) Update(c *gin.Context) {
	tenantID, userID, ok := h.callerIDs(c)
	if !ok {
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID format")
		return
	}

	var req walletapp.UpdateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wallet, err := h.walletService.Update(c.Request.Context(), tenantID, userID, walletID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, wallet)
}

// SetDefault godoc
// @Summary      Make a wallet the default payout destination
// @Tags         wallets
// @Produce      json
// @Param        id path string true "Wallet ID" format(uuid)
// @Success      200 {object} dto.Response{data=walletapp.WalletResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /wallets/{id}/default [post]
func (h *WalletHandler) SetDefault(c *gin.Context) {
	tenantID, userID, ok := h.callerIDs(c)
	if !ok {
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID format")
		return
	}

	wallet, err := h.walletService.SetDefault(c.Request.Context(), tenantID, userID, walletID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, wallet)
}

// Delete godoc
// @Summary      Delete a payout wallet
// @Description  Wallets with pending withdrawals cannot be deleted
// @Tags         wallets
// @Produce      json
// @Param        id path string true "Wallet ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /wallets/{id} [delete]
func (h *WalletHandler) Delete(c *gin.Context) {
	tenantID, userID, ok := h.callerIDs(c)
	if !ok {
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID format")
		return
	}

	if err := h.walletService.Delete(c.Request.Context(), tenantID, userID, walletID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
