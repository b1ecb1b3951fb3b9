package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/middleware"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	"github.com/noah-isme/arsip-desa-api/internal/service"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/response"
)

type archiveService interface {
	Create(ctx context.Context, fields dto.ArchiveFields, upload *service.FileUpload, actorID string) (*models.Archive, error)
	List(ctx context.Context, query dto.PeriodQuery) ([]models.Archive, error)
	Get(ctx context.Context, id string) (*models.Archive, error)
	Update(ctx context.Context, id string, fields dto.ArchiveFields, upload *service.FileUpload, actorID string) (*models.Archive, error)
	Delete(ctx context.Context, id, actorID string) error
	Open(ctx context.Context, id string) (*service.FileDownload, error)
	GetDownloadURL(ctx context.Context, id string) (*dto.ArchiveDownloadResponse, error)
}

// ArchiveHandler manages archive HTTP endpoints.
type ArchiveHandler struct {
	service archiveService
}

// NewArchiveHandler constructs the handler.
func NewArchiveHandler(service archiveService) *ArchiveHandler {
	return &ArchiveHandler{service: service}
}

// List godoc
// @Summary List archives
// @Tags Archives
// @Produce json
// @Param month query string false "Month 1-12 or all"
// @Param year query string false "Year or all"
// @Param typeId query string false "Document type ID or all"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /archives [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	var query dto.PeriodQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	items, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create archive
// @Description Accepts multipart/form-data (title, documentTypeId, file) or JSON with base64 fileData.
// @Tags Archives
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param title formData string true "Title"
// @Param documentTypeId formData string true "Document type ID"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /archives [post]
func (h *ArchiveHandler) Create(c *gin.Context) {
	fields, upload, err := bindArchive(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Create(c.Request.Context(), fields, upload, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Get godoc
// @Summary Get archive metadata
// @Tags Archives
// @Produce json
// @Param id path string true "Archive ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /archives/{id} [get]
func (h *ArchiveHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Update archive
// @Tags Archives
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param id path string true "Archive ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /archives/{id} [put]
func (h *ArchiveHandler) Update(c *gin.Context) {
	fields, upload, err := bindArchive(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), fields, upload, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete archive and its stored file
// @Tags Archives
// @Param id path string true "Archive ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /archives/{id} [delete]
func (h *ArchiveHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Download godoc
// @Summary Stream the archive file inline
// @Tags Archives
// @Produce octet-stream
// @Param id path string true "Archive ID"
// @Param token query string false "Signed token from download-url"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /archives/{id}/download [get]
func (h *ArchiveHandler) Download(c *gin.Context) {
	file, err := h.service.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveInline(c, file)
}

// DownloadURL godoc
// @Summary Issue a signed download URL
// @Tags Archives
// @Produce json
// @Param id path string true "Archive ID"
// @Success 200 {object} response.Envelope
// @Router /archives/{id}/download-url [get]
func (h *ArchiveHandler) DownloadURL(c *gin.Context) {
	resp, err := h.service.GetDownloadURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

func bindArchive(c *gin.Context) (dto.ArchiveFields, *service.FileUpload, error) {
	var fields dto.ArchiveFields
	if isMultipart(c) {
		if title, ok := c.GetPostForm("title"); ok {
			fields.Title = &title
		}
		if typeID, ok := c.GetPostForm("documentTypeId"); ok {
			fields.DocumentTypeID = &typeID
		}
		fh, err := c.FormFile("file")
		if err != nil {
			if err == http.ErrMissingFile {
				return fields, nil, nil
			}
			return fields, nil, bodyError(err, "invalid multipart payload")
		}
		upload, err := uploadFromHeader(fh, middleware.MaxBodyBytes(c))
		return fields, upload, err
	}

	var req dto.ArchiveJSONRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return fields, nil, bodyError(err, "invalid archive payload")
	}
	fields.Title = req.Title
	fields.DocumentTypeID = req.DocumentTypeID
	upload, err := uploadFromBase64(req.FileName, req.FileData, req.ContentType)
	return fields, upload, err
}
