package handler

import (
	"io"

	importapp "github.com/dropship/backoffice/internal/application/import"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ImportHandler handles spreadsheet import API endpoints
type ImportHandler struct {
	BaseHandler
	importService *importapp.ImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *importapp.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
	}
}

// Upload godoc
// @Summary      Upload a product spreadsheet
// @Description  Accept a CSV or XLSX file and start an asynchronous import session. The file format is detected from the extension.
// @Tags         imports
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV or XLSX file"
// @Param        conflict_mode formData string false "Behavior on duplicate SKU" Enums(SKIP, UPDATE, FAIL) default(SKIP)
// @Param        dry_run formData bool false "Validate and simulate without writing"
// @Param        auto_create_categories formData bool false "Create missing categories on the fly"
// @Success      202 {object} dto.Response{data=importapp.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /imports [post]
func (h *ImportHandler) Upload(c *gin.Context) {
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

	var req importapp.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Cannot read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Cannot read uploaded file")
		return
	}

	session, err := h.importService.Upload(c.Request.Context(), tenantID, userID, fileHeader.Filename, data, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Accepted(c, session)
}

// GetSession godoc
// @Summary      Import session report
// @Description  Full session state including per-row errors; poll while the import runs
// @Tags         imports
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=importapp.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /imports/{id} [get]
func (h *ImportHandler) GetSession(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	session, err := h.importService.GetSession(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, session)
}

// ListSessions godoc
// @Summary      List import sessions
// @Tags         imports
// @Produce      json
// @Param        status query string false "Filter by status" Enums(PENDING, VALIDATING, IMPORTING, COMPLETED, FAILED, CANCELLED)
// @Param        user_id query string false "Filter by uploader" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]importapp.SessionListItem}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /imports [get]
func (h *ImportHandler) ListSessions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter importapp.SessionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sessions, total, err := h.importService.ListSessions(c.Request.Context(), tenantID, filter)
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
	h.SuccessWithMeta(c, sessions, total, page, pageSize)
}

// Cancel godoc
// @Summary      Cancel an import session
// @Description  Request cancellation; rows already written stay written
// @Tags         imports
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=importapp.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /imports/{id}/cancel [post]
func (h *ImportHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	session, err := h.importService.Cancel(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, session)
}
