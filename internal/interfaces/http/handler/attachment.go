package handler

import (
	"github.com/dropship/backoffice/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttachmentHandler handles product attachment API endpoints. Uploads use
// the presign-then-confirm flow: the client asks for an upload URL, PUTs
// the file straight to object storage, then confirms so the attachment
// becomes visible.
type AttachmentHandler struct {
	BaseHandler
	attachmentService *catalog.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService *catalog.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
	}
}

// InitiateUpload godoc
// @Summary      Initiate an attachment upload
// @Description  Create a pending attachment and issue a presigned PUT URL
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Param        request body catalog.InitiateUploadRequest true "Upload request"
// @Success      200 {object} dto.Response{data=catalog.InitiateUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /attachments/initiate [post]
func (h *AttachmentHandler) InitiateUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req catalog.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var uploadedBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		uploadedBy = &userID
	}

	result, err := h.attachmentService.InitiateUpload(c.Request.Context(), tenantID, req, uploadedBy)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ConfirmUpload godoc
// @Summary      Confirm an attachment upload
// @Description  Verify the object exists in storage and activate the attachment
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Param        id path string true "Attachment ID"
// @Success      200 {object} dto.Response{data=catalog.AttachmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /attachments/{id}/confirm [post]
func (h *AttachmentHandler) ConfirmUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	attachmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID")
		return
	}

	result, err := h.attachmentService.ConfirmUpload(c.Request.Context(), tenantID, attachmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID godoc
// @Summary      Get an attachment
// @Tags         attachments
// @Produce      json
// @Param        id path string true "Attachment ID"
// @Success      200 {object} dto.Response{data=catalog.AttachmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /attachments/{id} [get]
func (h *AttachmentHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	attachmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID")
		return
	}

	result, err := h.attachmentService.GetByID(c.Request.Context(), tenantID, attachmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListByProduct godoc
// @Summary      List attachments for a product
// @Tags         attachments
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        filter query catalog.AttachmentListFilter false "Filter options"
// @Success      200 {object} dto.Response{data=[]catalog.AttachmentListResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/attachments [get]
func (h *AttachmentHandler) ListByProduct(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var filter catalog.AttachmentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, total, err := h.attachmentService.GetByProduct(c.Request.Context(), tenantID, productID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result, total, filter.Page, filter.PageSize)
}

// GetMainImage godoc
// @Summary      Get the main image for a product
// @Tags         attachments
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalog.AttachmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/attachments/main [get]
func (h *AttachmentHandler) GetMainImage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	result, err := h.attachmentService.GetMainImage(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// SetMainImage godoc
// @Summary      Promote an attachment to main image
// @Tags         attachments
// @Produce      json
// @Param        id path string true "Attachment ID"
// @Success      200 {object} dto.Response{data=catalog.AttachmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /attachments/{id}/main [post]
func (h *AttachmentHandler) SetMainImage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	attachmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID")
		return
	}

	result, err := h.attachmentService.SetAsMainImage(c.Request.Context(), tenantID, attachmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Reorder godoc
// @Summary      Reorder product attachments
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Param        request body catalog.ReorderAttachmentsRequest true "New order"
// @Success      200 {object} dto.Response{data=[]catalog.AttachmentListResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /attachments/reorder [post]
func (h *AttachmentHandler) Reorder(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req catalog.ReorderAttachmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.attachmentService.ReorderAttachments(c.Request.Context(), tenantID, req.ProductID, req.AttachmentIDs)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete an attachment
// @Description  Soft delete by default; pass permanent=true to also remove the stored object
// @Tags         attachments
// @Produce      json
// @Param        id path string true "Attachment ID"
// @Param        permanent query bool false "Permanently delete the storage object"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /attachments/{id} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	attachmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid attachment ID")
		return
	}

	if c.Query("permanent") == "true" {
		err = h.attachmentService.PermanentDelete(c.Request.Context(), tenantID, attachmentID)
	} else {
		err = h.attachmentService.Delete(c.Request.Context(), tenantID, attachmentID)
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
