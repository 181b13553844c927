package handler

import (
	"net/http"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/middleware"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/service"
	"github.com/LOSTXKER/anajakdoc-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService service.DocumentService
}

func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	docs := router.Group("/api/boxes/:id/documents")
	{
		docs.GET("", middleware.RequireRole("admin", "accountant", "reviewer", "employee"), h.ListDocuments)
		docs.POST("/files", middleware.RequireRole("admin", "accountant", "employee"), h.AddFile)
	}

	files := router.Group("/api/files")
	{
		files.DELETE("/:fileId", middleware.RequireRole("admin", "accountant"), h.RemoveFile)
	}
}

// ListDocuments returns all documents of a box with their files
// @Summary      List box documents
// @Description  Retrieves the documents of a box grouped by type, each with its files
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Box ID"
// @Success      200  {object}  response.Response{data=[]service.DocumentResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/boxes/{id}/documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.documentService.ListByBox(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, docs))
}

// AddFile attaches a file to a box and recomputes the checklist
// @Summary      Add file to box
// @Description  Attaches a file under its document type, auto-records a payment for payment proofs, and returns the refreshed checklist
// @Tags         documents
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Box ID"
// @Param        payload  body      service.AddFileRequest  true  "Add File Payload"
// @Success      201      {object}  response.Response{data=service.AddFileResult}
// @Failure      400      {object}  response.Response
// @Router       /api/boxes/{id}/documents/files [post]
func (h *DocumentHandler) AddFile(c *gin.Context) {
	var req service.AddFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.documentService.AddFile(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// RemoveFile detaches a file and recomputes the checklist
// @Summary      Remove file
// @Description  Removes a file from its document and returns the refreshed checklist
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        fileId  path      string  true  "File ID"
// @Success      200     {object}  response.Response{data=rules.Checklist}
// @Failure      400     {object}  response.Response
// @Router       /api/files/{fileId} [delete]
func (h *DocumentHandler) RemoveFile(c *gin.Context) {
	checklist, err := h.documentService.RemoveFile(c.Request.Context(), c.Param("fileId"), currentUserID(c))
	if err != nil {
		c.JSON(statusForServiceError(err), response.Error(statusForServiceError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, checklist))
}
