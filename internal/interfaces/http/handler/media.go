package handler

import (
	"github.com/dropship/backoffice/internal/application/media"
	"github.com/gin-gonic/gin"
)

// MediaHandler handles product image storage API endpoints. Files never
// pass through the server; clients upload and download straight to object
// storage with presigned URLs.
type MediaHandler struct {
	BaseHandler
	mediaService *media.MediaService
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(mediaService *media.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
	}
}

// PresignUpload godoc
// @Summary      Presign an image upload
// @Description  Issue a short-lived PUT URL for a new product image
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        request body media.PresignUploadRequest true "Upload request"
// @Success      200 {object} dto.Response{data=media.PresignUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /media/presign-upload [post]
func (h *MediaHandler) PresignUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req media.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.mediaService.PresignUpload(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// PresignDownload godoc
// @Summary      Presign an image download
// @Description  Issue a short-lived GET URL for a stored image key
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        request body media.PresignDownloadRequest true "Download request"
// @Success      200 {object} dto.Response{data=media.PresignDownloadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /media/presign-download [post]
func (h *MediaHandler) PresignDownload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req media.PresignDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.mediaService.PresignDownload(c.Request.Context(), tenantID, req.StorageKey)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete a stored image
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        request body media.PresignDownloadRequest true "Storage key"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /media [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req media.PresignDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.mediaService.Delete(c.Request.Context(), tenantID, req.StorageKey); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
