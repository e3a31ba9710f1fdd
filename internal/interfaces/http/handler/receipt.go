package handler

import (
	"errors"
	"net/http"

	"github.com/dropship/backoffice/internal/application/receipt"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/interfaces/http/dto"
	"github.com/dropship/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReceiptHandler streams lead receipt PDFs
type ReceiptHandler struct {
	BaseHandler
	receiptService *receipt.Service
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *receipt.Service) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
	}
}

// GetLeadReceipt godoc
// @Summary      Lead receipt PDF
// @Description  Render the lead's receipt as an A4 PDF. Returns 503 when PDF rendering is not configured.
// @Tags         leads
// @Produce      application/pdf
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id}/receipt [get]
func (h *ReceiptHandler) GetLeadReceipt(c *gin.Context) {
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

	doc, err := h.receiptService.RenderLeadReceipt(c.Request.Context(), tenantID, leadID, middleware.SellerScope(c))
	if err != nil {
		if errors.Is(err, receipt.ErrRenderingDisabled) {
			h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Receipt rendering is not configured")
			return
		}
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			h.HandleDomainError(c, err)
			return
		}
		h.InternalError(c, "Receipt rendering failed")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc.PDF)
}
