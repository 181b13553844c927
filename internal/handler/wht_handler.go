package handler

import (
	"net/http"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/middleware"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/service"
	"github.com/LOSTXKER/anajakdoc-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type WhtHandler struct {
	whtService service.WhtService
}

func NewWhtHandler(whtService service.WhtService) *WhtHandler {
	return &WhtHandler{whtService: whtService}
}

func (h *WhtHandler) RegisterRoutes(router *gin.RouterGroup) {
	boxWht := router.Group("/api/boxes/:id/wht")
	{
		boxWht.GET("", middleware.RequireRole("admin", "accountant", "reviewer", "employee"), h.ListTrackings)
		boxWht.POST("", middleware.RequireRole("admin", "accountant"), h.CreateTracking)
	}

	wht := router.Group("/api/wht")
	{
		wht.POST("/:trackingId/advance", middleware.RequireRole("admin", "accountant"), h.Advance)
		wht.POST("/:trackingId/cancel", middleware.RequireRole("admin", "accountant"), h.Cancel)
	}
}

// ListTrackings returns WHT certificate trackings of a box
// @Summary      List WHT trackings
// @Description  Retrieves all withholding tax certificate trackings of a box
// @Tags         wht
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Box ID"
// @Success      200  {object}  response.Response{data=[]service.WhtTrackingResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/boxes/{id}/wht [get]
func (h *WhtHandler) ListTrackings(c *gin.Context) {
	trackings, err := h.whtService.ListByBox(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, trackings))
}

// CreateTracking opens a WHT certificate tracking on a box
// @Summary      Create WHT tracking
// @Description  Opens a withholding tax certificate tracking in PENDING for a box with WHT enabled
// @Tags         wht
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Box ID"
// @Param        payload  body      service.CreateWhtTrackingRequest  true  "Create Tracking Payload"
// @Success      201      {object}  response.Response{data=service.WhtTrackingResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/boxes/{id}/wht [post]
func (h *WhtHandler) CreateTracking(c *gin.Context) {
	var req service.CreateWhtTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tracking, err := h.whtService.CreateTracking(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tracking))
}

// Advance moves a WHT tracking one step forward
// @Summary      Advance WHT tracking
// @Description  Moves a tracking to the next status in its lifecycle and stamps the transition date
// @Tags         wht
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        trackingId  path      string                     true  "Tracking ID"
// @Param        payload     body      service.AdvanceWhtRequest  true  "Target Status"
// @Success      200         {object}  response.Response{data=service.WhtTrackingResponse}
// @Failure      409         {object}  response.Response
// @Router       /api/wht/{trackingId}/advance [post]
func (h *WhtHandler) Advance(c *gin.Context) {
	var req service.AdvanceWhtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tracking, err := h.whtService.Advance(c.Request.Context(), c.Param("trackingId"), currentUserID(c), req)
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tracking))
}

// Cancel cancels a WHT tracking
// @Summary      Cancel WHT tracking
// @Description  Cancels a non-terminal tracking and stamps the cancellation date
// @Tags         wht
// @Security     BearerAuth
// @Produce      json
// @Param        trackingId  path      string  true  "Tracking ID"
// @Success      200         {object}  response.Response{data=service.WhtTrackingResponse}
// @Failure      409         {object}  response.Response
// @Router       /api/wht/{trackingId}/cancel [post]
func (h *WhtHandler) Cancel(c *gin.Context) {
	tracking, err := h.whtService.Cancel(c.Request.Context(), c.Param("trackingId"), currentUserID(c))
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tracking))
}
