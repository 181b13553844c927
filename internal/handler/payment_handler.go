package handler

import (
	"net/http"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/middleware"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/service"
	"github.com/LOSTXKER/anajakdoc-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/boxes/:id/payments")
	{
		payments.GET("", middleware.RequireRole("admin", "accountant", "reviewer", "employee"), h.ListPayments)
		payments.POST("", middleware.RequireRole("admin", "accountant"), h.RecordPayment)
		payments.POST("/recalculate", middleware.RequireRole("admin", "accountant"), h.Recalculate)
	}

	router.POST("/api/payments/:paymentId/void", middleware.RequireRole("admin", "accountant"), h.VoidPayment)
}

// ListPayments returns all payment records of a box
// @Summary      List box payments
// @Description  Retrieves all payment records of a box, voided ones included
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Box ID"
// @Success      200  {object}  response.Response{data=[]service.PaymentResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/boxes/{id}/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payments))
}

// RecordPayment records a manual payment against a box
// @Summary      Record payment
// @Description  Records a payment and re-derives the box payment status from the full payment history
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Box ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Record Payment Payload"
// @Success      201      {object}  response.Response{data=service.ReconcileResult}
// @Failure      400      {object}  response.Response
// @Router       /api/boxes/{id}/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// Recalculate re-derives the payment status of a box from its payment history
// @Summary      Recalculate payment status
// @Description  Re-sums non-voided payments and re-derives the box payment status; safe to call repeatedly
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Box ID"
// @Success      200  {object}  response.Response{data=service.ReconcileResult}
// @Failure      400  {object}  response.Response
// @Router       /api/boxes/{id}/payments/recalculate [post]
func (h *PaymentHandler) Recalculate(c *gin.Context) {
	result, err := h.paymentService.RecalculateBoxPaymentStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

type voidPaymentRequest struct {
	Reason string `json:"reason"`
}

// VoidPayment voids a payment record and re-derives the box payment status
// @Summary      Void payment
// @Description  Marks a payment as voided so it no longer counts toward the paid amount
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        paymentId  path      string              true   "Payment ID"
// @Param        payload    body      voidPaymentRequest  false  "Void Reason"
// @Success      200        {object}  response.Response{data=service.ReconcileResult}
// @Failure      400        {object}  response.Response
// @Router       /api/payments/{paymentId}/void [post]
func (h *PaymentHandler) VoidPayment(c *gin.Context) {
	var req voidPaymentRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.paymentService.VoidPayment(c.Request.Context(), c.Param("paymentId"), currentUserID(c), req.Reason)
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
