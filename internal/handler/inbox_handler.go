package handler

import (
	"net/http"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/middleware"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/rules"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/service"
	"github.com/LOSTXKER/anajakdoc-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type InboxHandler struct {
	inboxService service.InboxService
}

func NewInboxHandler(inboxService service.InboxService) *InboxHandler {
	return &InboxHandler{inboxService: inboxService}
}

func (h *InboxHandler) RegisterRoutes(router *gin.RouterGroup) {
	inbox := router.Group("/api/inbox")
	{
		inbox.POST("/aggregate", middleware.RequireRole("admin", "accountant", "employee"), h.Aggregate)
		inbox.POST("/:draftId/overrides", middleware.RequireRole("admin", "accountant", "employee"), h.ApplyOverride)
		inbox.DELETE("/:draftId/overrides", middleware.RequireRole("admin", "accountant", "employee"), h.ClearOverrides)
	}
}

// Aggregate merges per-file extraction results and suggests a target box
// @Summary      Aggregate extraction results
// @Description  Merges per-file extraction results into one record, flags conflicts, and suggests whether to add to an existing pending box or create a new one. Pass draft_id to continue an existing review; stored overrides keep applying.
// @Tags         inbox
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AggregateRequest  true  "Extraction Results"
// @Success      200      {object}  response.Response{data=service.AggregateResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/inbox/aggregate [post]
func (h *InboxHandler) Aggregate(c *gin.Context) {
	var req service.AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.inboxService.Aggregate(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ApplyOverride stores user field edits on a draft
// @Summary      Apply field overrides
// @Description  Merges user-edited field values into the draft's stored overrides and returns the recomputed aggregate. Overrides persist across aggregations until cleared.
// @Tags         inbox
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        draftId  path      string           true  "Draft ID"
// @Param        payload  body      rules.Overrides  true  "Field Overrides"
// @Success      200      {object}  response.Response{data=service.AggregateResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/inbox/{draftId}/overrides [post]
func (h *InboxHandler) ApplyOverride(c *gin.Context) {
	var ov rules.Overrides
	if err := c.ShouldBindJSON(&ov); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.inboxService.ApplyOverride(c.Request.Context(), c.Param("draftId"), ov)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ClearOverrides drops all stored overrides from a draft
// @Summary      Clear field overrides
// @Description  Removes every stored override from the draft so computed values win again, and returns the recomputed aggregate
// @Tags         inbox
// @Security     BearerAuth
// @Produce      json
// @Param        draftId  path      string  true  "Draft ID"
// @Success      200      {object}  response.Response{data=service.AggregateResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/inbox/{draftId}/overrides [delete]
func (h *InboxHandler) ClearOverrides(c *gin.Context) {
	result, err := h.inboxService.ClearOverrides(c.Request.Context(), c.Param("draftId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
