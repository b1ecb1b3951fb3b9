package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/response"
)

type documentTypeService interface {
	List(ctx context.Context) ([]models.DocumentType, error)
	Get(ctx context.Context, id string) (*models.DocumentType, error)
	Create(ctx context.Context, req dto.CreateDocumentTypeRequest, actorID string) (*models.DocumentType, error)
	Update(ctx context.Context, id string, req dto.UpdateDocumentTypeRequest, actorID string) (*models.DocumentType, error)
	Delete(ctx context.Context, id, actorID string) error
}

// DocumentTypeHandler exposes the document category registry.
type DocumentTypeHandler struct {
	service documentTypeService
}

// NewDocumentTypeHandler constructs the handler.
func NewDocumentTypeHandler(service documentTypeService) *DocumentTypeHandler {
	return &DocumentTypeHandler{service: service}
}

// List godoc
// @Summary List document types
// @Tags DocumentTypes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /document-types [get]
func (h *DocumentTypeHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get document type
// @Tags DocumentTypes
// @Produce json
// @Param id path string true "Document type ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /document-types/{id} [get]
func (h *DocumentTypeHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create document type
// @Tags DocumentTypes
// @Accept json
// @Produce json
// @Param payload body dto.CreateDocumentTypeRequest true "Document type"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /document-types [post]
func (h *DocumentTypeHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update document type
// @Tags DocumentTypes
// @Accept json
// @Produce json
// @Param id path string true "Document type ID"
// @Param payload body dto.UpdateDocumentTypeRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /document-types/{id} [put]
func (h *DocumentTypeHandler) Update(c *gin.Context) {
	var req dto.UpdateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete document type
// @Tags DocumentTypes
// @Param id path string true "Document type ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /document-types/{id} [delete]
func (h *DocumentTypeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
