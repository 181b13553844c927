package handler

import (
	"errors"
	"net/http"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/middleware"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/repository"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/rules"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/service"
	"github.com/LOSTXKER/anajakdoc-sub000/pkg/pagination"
	"github.com/LOSTXKER/anajakdoc-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type BoxHandler struct {
	boxService service.BoxService
}

func NewBoxHandler(boxService service.BoxService) *BoxHandler {
	return &BoxHandler{boxService: boxService}
}

func (h *BoxHandler) RegisterRoutes(router *gin.RouterGroup) {
	boxes := router.Group("/api/boxes")
	{
		boxes.POST("", middleware.RequireRole("admin", "accountant", "employee"), h.CreateBox)
		boxes.GET("", middleware.RequireRole("admin", "accountant", "reviewer", "employee"), h.ListBoxes)
		boxes.GET("/:id", middleware.RequireRole("admin", "accountant", "reviewer", "employee"), h.GetBox)
		boxes.PUT("/:id", middleware.RequireRole("admin", "accountant", "employee"), h.UpdateBoxConfig)
		boxes.DELETE("/:id", middleware.RequireRole("admin", "accountant"), h.DeleteBox)
		boxes.GET("/:id/checklist", middleware.RequireRole("admin", "accountant", "reviewer", "employee"), h.GetChecklist)
		boxes.PUT("/:id/not-applicable", middleware.RequireRole("admin", "accountant"), h.SetNotApplicable)
		boxes.POST("/:id/submit", middleware.RequireRole("admin", "accountant", "employee"), h.SubmitBox)
		boxes.POST("/:id/review", middleware.RequireRole("admin", "reviewer"), h.ReviewBox)
		boxes.POST("/:id/reimburse", middleware.RequireRole("admin", "accountant"), h.MarkReimbursed)
	}
}

// statusForServiceError maps rule violations to 409 and everything else to 400
func statusForServiceError(err error) int {
	var invalid *rules.InvalidTransitionError
	if errors.As(err, &invalid) {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// CreateBox creates a new document box
// @Summary      Create box
// @Description  Creates a new document box in DRAFT with a derived requirement checklist
// @Tags         boxes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateBoxRequest  true  "Create Box Payload"
// @Success      201      {object}  response.Response{data=service.BoxResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/boxes [post]
func (h *BoxHandler) CreateBox(c *gin.Context) {
	var req service.CreateBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	box, err := h.boxService.CreateBox(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, box))
}

// ListBoxes returns a paginated list of boxes with optional filters
// @Summary      List boxes
// @Description  Retrieves a paginated list of boxes, optionally filtered by status, type, and payment status
// @Tags         boxes
// @Security     BearerAuth
// @Produce      json
// @Param        status          query     string  false  "Filter by status (DRAFT, PENDING, NEED_DOCS, COMPLETED, REJECTED, VOID)"
// @Param        box_type        query     string  false  "Filter by box type (EXPENSE, INCOME)"
// @Param        payment_status  query     string  false  "Filter by payment status (UNPAID, PARTIAL, PAID, OVERPAID)"
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        limit           query     int     false  "Number of items per page (default 20)"
// @Success      200             {object}  response.Response{data=object}
// @Failure      500             {object}  response.Response
// @Router       /api/boxes [get]
func (h *BoxHandler) ListBoxes(c *gin.Context) {
	p := pagination.Parse(c)

	filter := repository.BoxFilter{
		Status:        c.Query("status"),
		BoxType:       c.Query("box_type"),
		PaymentStatus: c.Query("payment_status"),
	}

	boxes, total, err := h.boxService.ListBoxes(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"boxes": boxes,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// GetBox returns a single box with its live checklist
// @Summary      Get box
// @Description  Fetch a single box with its requirement checklist by ID
// @Tags         boxes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Box ID"
// @Success      200  {object}  response.Response{data=service.BoxResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/boxes/{id} [get]
func (h *BoxHandler) GetBox(c *gin.Context) {
	box, err := h.boxService.GetBox(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, box))
}

// UpdateBoxConfig updates tax configuration and amounts of a box
// @Summary      Update box configuration
// @Description  Updates VAT/WHT flags, expense type, and total amount, then recomputes the checklist
// @Tags         boxes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Box ID"
// @Param        payload  body      service.UpdateBoxConfigRequest  true  "Update Config Payload"
// @Success      200      {object}  response.Response{data=service.BoxResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/boxes/{id} [put]
func (h *BoxHandler) UpdateBoxConfig(c *gin.Context) {
	var req service.UpdateBoxConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	box, err := h.boxService.UpdateBoxConfig(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, box))
}

// DeleteBox removes a draft box, or voids it when payments exist
// @Summary      Delete box
// @Description  Hard deletes a DRAFT box without payments; voids it as a tombstone otherwise
// @Tags         boxes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Box ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/boxes/{id} [delete]
func (h *BoxHandler) DeleteBox(c *gin.Context) {
	if err := h.boxService.DeleteBox(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Box deleted"))
}

// GetChecklist returns the live requirement checklist for a box
// @Summary      Get box checklist
// @Description  Evaluates and returns the current requirement checklist without persisting changes
// @Tags         boxes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Box ID"
// @Success      200  {object}  response.Response{data=rules.Checklist}
// @Failure      404  {object}  response.Response
// @Router       /api/boxes/{id}/checklist [get]
func (h *BoxHandler) GetChecklist(c *gin.Context) {
	checklist, err := h.boxService.GetChecklist(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, checklist))
}

type notApplicableRequest struct {
	RequirementIDs []string `json:"requirement_ids" binding:"required"`
}

// SetNotApplicable marks requirement items as not applicable for a box
// @Summary      Set not-applicable requirements
// @Description  Replaces the set of requirement items waived for this box and recomputes the checklist
// @Tags         boxes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Box ID"
// @Param        payload  body      notApplicableRequest  true  "Requirement IDs"
// @Success      200      {object}  response.Response{data=service.BoxResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/boxes/{id}/not-applicable [put]
func (h *BoxHandler) SetNotApplicable(c *gin.Context) {
	var req notApplicableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	box, err := h.boxService.SetNotApplicable(c.Request.Context(), c.Param("id"), currentUserID(c), req.RequirementIDs)
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, box))
}

// SubmitBox submits a draft box for review
// @Summary      Submit box
// @Description  Moves a DRAFT box to PENDING (or a NEED_DOCS box back to PENDING)
// @Tags         boxes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Box ID"
// @Success      200  {object}  response.Response{data=service.BoxResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/boxes/{id}/submit [post]
func (h *BoxHandler) SubmitBox(c *gin.Context) {
	box, err := h.boxService.SubmitBox(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, box))
}

// ReviewBox applies a reviewer decision to a pending box
// @Summary      Review box
// @Description  Approves, rejects, or requests more documents for a PENDING box
// @Tags         boxes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Box ID"
// @Param        payload  body      service.ReviewBoxRequest  true  "Review Decision"
// @Success      200      {object}  response.Response{data=service.BoxResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/boxes/{id}/review [post]
func (h *BoxHandler) ReviewBox(c *gin.Context) {
	var req service.ReviewBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	box, err := h.boxService.ReviewBox(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, box))
}

// MarkReimbursed marks an employee-paid box as reimbursed
// @Summary      Mark box reimbursed
// @Description  Marks a fully paid employee-advanced box as reimbursed
// @Tags         boxes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Box ID"
// @Success      200  {object}  response.Response{data=service.BoxResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/boxes/{id}/reimburse [post]
func (h *BoxHandler) MarkReimbursed(c *gin.Context) {
	box, err := h.boxService.MarkReimbursed(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, box))
}

// currentUserID returns the authenticated user's ID from the gin context
func currentUserID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	idStr, _ := userID.(string)
	return idStr
}
