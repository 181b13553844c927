package handler

import (
	"net/http"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/middleware"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/service"
	"github.com/LOSTXKER/anajakdoc-sub000/pkg/pagination"
	"github.com/LOSTXKER/anajakdoc-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactService service.ContactService
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) RegisterRoutes(router *gin.RouterGroup) {
	contacts := router.Group("/api/contacts")
	{
		contacts.POST("", middleware.RequireRole("admin", "accountant"), h.CreateContact)
		contacts.GET("", middleware.RequireRole("admin", "accountant", "reviewer", "employee"), h.ListContacts)
		contacts.GET("/:id", middleware.RequireRole("admin", "accountant", "reviewer", "employee"), h.GetContact)
		contacts.PUT("/:id", middleware.RequireRole("admin", "accountant"), h.UpdateContact)
	}
}

// CreateContact registers a new counterpart
// @Summary      Create contact
// @Description  Registers a vendor, customer, or employee counterpart; tax ids must be unique
// @Tags         contacts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateContactRequest  true  "Contact"
// @Success      201      {object}  response.Response{data=service.ContactResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/contacts [post]
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req service.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contact, err := h.contactService.CreateContact(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contact))
}

// ListContacts lists counterparts
// @Summary      List contacts
// @Description  Retrieves a paginated list of contacts ordered by name
// @Tags         contacts
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/contacts [get]
func (h *ContactHandler) ListContacts(c *gin.Context) {
	p := pagination.Parse(c)

	contacts, total, err := h.contactService.ListContacts(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch contacts"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"contacts": contacts,
		"total":    total,
		"page":     p.Page,
		"limit":    p.Limit,
	}))
}

// GetContact fetches one counterpart
// @Summary      Get contact
// @Description  Fetch a single contact by its UUID
// @Tags         contacts
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Contact ID"
// @Success      200  {object}  response.Response{data=service.ContactResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/contacts/{id} [get]
func (h *ContactHandler) GetContact(c *gin.Context) {
	contact, err := h.contactService.GetContact(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contact))
}

// UpdateContact edits a counterpart
// @Summary      Update contact
// @Description  Updates contact details; deactivation hides the contact from new references without losing history
// @Tags         contacts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Contact ID"
// @Param        payload  body      service.UpdateContactRequest  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.ContactResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/contacts/{id} [put]
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	var req service.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contact, err := h.contactService.UpdateContact(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, contact))
}
