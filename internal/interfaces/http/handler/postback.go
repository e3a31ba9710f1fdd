package handler

import (
	"context"
	"strconv"

	postbackapp "github.com/dropship/backoffice/internal/application/postback"
	"github.com/dropship/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PostbackHandler handles postback configuration and delivery API
// endpoints. Sellers manage their own configs; the dead-letter queue and
// requeue operations are staff-only.
type PostbackHandler struct {
	BaseHandler
	configService   *postbackapp.ConfigService
	deliveryService *postbackapp.DeliveryService
}

// NewPostbackHandler creates a new PostbackHandler
func NewPostbackHandler(configService *postbackapp.ConfigService, deliveryService *postbackapp.DeliveryService) *PostbackHandler {
	return &PostbackHandler{
		configService:   configService,
		deliveryService: deliveryService,
	}
}

// CreateConfig godoc
// @Summary      Create a postback config
// @Description  Register a webhook URL template fired on lead status changes
// @Tags         postbacks
// @Accept       json
// @Produce      json
// @Param        request body postbackapp.CreateConfigRequest true "Config creation request"
// @Success      201 {object} dto.Response{data=postbackapp.ConfigResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /postbacks [post]
func (h *PostbackHandler) CreateConfig(c *gin.Context) {
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

	var req postbackapp.CreateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	config, err := h.configService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, config)
}

// ListConfigs godoc
// @Summary      List the caller's postback configs
// @Tags         postbacks
// @Produce      json
// @Success      200 {object} dto.Response{data=[]postbackapp.ConfigResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /postbacks [get]
func (h *PostbackHandler) ListConfigs(c *gin.Context) {
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

	configs, err := h.configService.List(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, configs)
}

// GetConfig godoc
// @Summary      Get a postback config
// @Tags         postbacks
// @Produce      json
// @Param        id path string true "Config ID" format(uuid)
// @Success      200 {object} dto.Response{data=postbackapp.ConfigResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /postbacks/{id} [get]
func (h *PostbackHandler) GetConfig(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	configID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid config ID format")
		return
	}

	config, err := h.configService.GetByID(c.Request.Context(), tenantID, configID, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, config)
}

// UpdateConfig godoc
// @Summary      Update a postback config
// @Tags         postbacks
// @Accept       json
// @Produce      json
// @Param        id path string true "Config ID" format(uuid)
// @Param        request body postbackapp.UpdateConfigRequest true "Config update request"
// @Success      200 {object} dto.Response{data=postbackapp.ConfigResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /postbacks/{id} [put]
func (h *PostbackHandler) UpdateConfig(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	configID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid config ID format")
		return
	}

	var req postbackapp.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	config, err := h.configService.Update(c.Request.Context(), tenantID, configID, middleware.SellerScope(c), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, config)
}

// EnableConfig godoc
// @Summary      Enable a postback config
// @Tags         postbacks
// @Produce      json
// @Param        id path string true "Config ID" format(uuid)
// @Success      200 {object} dto.Response{data=postbackapp.ConfigResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /postbacks/{id}/enable [post]
func (h *PostbackHandler) EnableConfig(c *gin.Context) {
	h.changeEnabled(c, h.configService.Enable)
}

// DisableConfig godoc
// @Summary      Disable a postback config
// @Description  Disabled configs stop firing; queued deliveries still drain
// @Tags         postbacks
// @Produce      json
// @Param        id path string true "Config ID" format(uuid)
// @Success      200 {object} dto.Response{data=postbackapp.ConfigResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /postbacks/{id}/disable [post]
func (h *PostbackHandler) DisableConfig(c *gin.Context) {
	h.changeEnabled(c, h.configService.Disable)
}

// DeleteConfig godoc
// @Summary      Delete a postback config
// @Tags         postbacks
// @Produce      json
// @Param        id path string true "Config ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /postbacks/{id} [delete]
func (h *PostbackHandler) DeleteConfig(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	configID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid config ID format")
		return
	}

	if err := h.configService.Delete(c.Request.Context(), tenantID, configID, middleware.SellerScope(c)); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// SendTest godoc
// @Summary      Fire a test postback
// @Description  Queue a delivery with sample lead data against the config's URL template
// @Tags         postbacks
// @Produce      json
// @Param        id path string true "Config ID" format(uuid)
// @Success      200 {object} dto.Response{data=postbackapp.DeliveryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /postbacks/{id}/test [post]
func (h *PostbackHandler) SendTest(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	configID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid config ID format")
		return
	}

	delivery, err := h.configService.SendTest(c.Request.Context(), tenantID, configID, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, delivery)
}

// ListDeliveries godoc
// @Summary      List deliveries of a postback config
// @Description  Delivery attempts for one config, newest first
// @Tags         postbacks
// @Produce      json
// @Param        id path string true "Config ID" format(uuid)
// @Param        status query string false "Filter by delivery status" Enums(PENDING, RETRYING, DELIVERED, DEAD)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]postbackapp.DeliveryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /postbacks/{id}/deliveries [get]
func (h *PostbackHandler) ListDeliveries(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	configID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid config ID format")
		return
	}

	var filter postbackapp.DeliveryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	deliveries, total, err := h.deliveryService.ListByConfig(c.Request.Context(), tenantID, configID, middleware.SellerScope(c), filter)
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
	h.SuccessWithMeta(c, deliveries, total, page, pageSize)
}

// GetDelivery godoc
// @Summary      Get a postback delivery
// @Tags         postbacks
// @Produce      json
// @Param        id path string true "Delivery ID" format(uuid)
// @Success      200 {object} dto.Response{data=postbackapp.DeliveryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/postback-deliveries/{id} [get]
func (h *PostbackHandler) GetDelivery(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID format")
		return
	}

	delivery, err := h.deliveryService.GetByID(c.Request.Context(), tenantID, deliveryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, delivery)
}

// ListDead godoc
// @Summary      Dead-letter queue
// @Description  Deliveries that exhausted their retries. Staff only.
// @Tags         postbacks
// @Produce      json
// @Param        limit query int false "Max entries" default(50)
// @Success      200 {object} dto.Response{data=[]postbackapp.DeliveryResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/postback-deliveries/dead [get]
func (h *PostbackHandler) ListDead(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	deliveries, err := h.deliveryService.ListDead(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, deliveries)
}

// RequeueDelivery godoc
// @Summary      Requeue a dead delivery
// @Description  Reset a dead delivery for another round of attempts. Staff only.
// @Tags         postbacks
// @Produce      json
// @Param        id path string true "Delivery ID" format(uuid)
// @Success      200 {object} dto.Response{data=postbackapp.DeliveryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/postback-deliveries/{id}/requeue [post]
func (h *PostbackHandler) RequeueDelivery(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID format")
		return
	}

	delivery, err := h.deliveryService.Requeue(c.Request.Context(), tenantID, deliveryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, delivery)
}

// GetDeliverySummary godoc
// @Summary      Delivery counts per status
// @Description  Dashboard card: delivery totals per status. Staff only.
// @Tags         postbacks
// @Produce      json
// @Success      200 {object} dto.Response{data=postbackapp.DeliverySummaryResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/postback-deliveries/summary [get]
func (h *PostbackHandler) GetDeliverySummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	summary, err := h.deliveryService.GetSummary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

type enabledAction func(ctx context.Context, tenantID, configID uuid.UUID, userScope *uuid.UUID) (*postbackapp.ConfigResponse, error)

func (h *PostbackHandler) changeEnabled(c *gin.Context, action enabledAction) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	configID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid config ID format")
		return
	}

	config, err := action(c.Request.Context(), tenantID, configID, middleware.SellerScope(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, config)
}
