package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/middleware"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	"github.com/noah-isme/arsip-desa-api/internal/service"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/response"
)

type profileService interface {
	Get(ctx context.Context) (*models.InstitutionProfile, error)
	Save(ctx context.Context, req dto.SaveProfileRequest, logo *service.FileUpload, documents []*service.FileUpload, retainedIDs []string, actorID string) (*models.InstitutionProfile, error)
	OpenLogo(ctx context.Context) (*service.FileDownload, error)
	OpenDocument(ctx context.Context, id string) (*service.FileDownload, error)
}

// SettingsHandler serves the institution profile.
type SettingsHandler struct {
	service profileService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(service profileService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get godoc
// @Summary Get institution profile
// @Description Returns a placeholder flagged "placeholder" when no profile is stored yet or the lookup is slow.
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Save godoc
// @Summary Save institution profile
// @Tags Settings
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param address formData string true "Address"
// @Param phone formData string true "Phone"
// @Param email formData string true "Email"
// @Param description formData string true "Description"
// @Param dashboardTitle formData string false "Dashboard title"
// @Param logo formData file false "Logo image"
// @Param documents formData file false "Supporting PDF documents"
// @Param existingDocuments formData string false "JSON array of retained document IDs"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings [post]
func (h *SettingsHandler) Save(c *gin.Context) {
	var req dto.SaveProfileRequest
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bodyError(err, "invalid payload"))
			return
		}
		retained, err := retainedDocumentIDs(string(req.ExistingDocuments))
		if err != nil {
			response.Error(c, err)
			return
		}
		profile, err := h.service.Save(c.Request.Context(), req, nil, nil, retained, actorID(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, profile, nil)
		return
	}

	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bodyError(err, "invalid form payload"))
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, bodyError(err, "invalid multipart payload"))
		return
	}

	var logo *service.FileUpload
	if headers := form.File["logo"]; len(headers) > 0 {
		if logo, err = uploadFromHeader(headers[0], middleware.MaxBodyBytes(c)); err != nil {
			response.Error(c, err)
			return
		}
	}
	documents := make([]*service.FileUpload, 0, len(form.File["documents"]))
	for _, fh := range form.File["documents"] {
		upload, err := uploadFromHeader(fh, middleware.MaxBodyBytes(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		documents = append(documents, upload)
	}
	retained, err := retainedDocumentIDs(c.PostForm("existingDocuments"))
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.service.Save(c.Request.Context(), req, logo, documents, retained, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Logo godoc
// @Summary Stream the institution logo
// @Tags Settings
// @Produce octet-stream
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /settings/logo [get]
func (h *SettingsHandler) Logo(c *gin.Context) {
	file, err := h.service.OpenLogo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	serveInline(c, file)
}

// Document godoc
// @Summary Stream a supporting profile document
// @Tags Settings
// @Produce application/pdf
// @Param docId path string true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /settings/documents/{docId} [get]
func (h *SettingsHandler) Document(c *gin.Context) {
	file, err := h.service.OpenDocument(c.Request.Context(), c.Param("docId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveInline(c, file)
}

// retainedDocumentIDs accepts a JSON array of ids or of {id} objects. An absent
// or null value yields nil, which keeps every stored document.
func retainedDocumentIDs(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err == nil {
		return ids, nil
	}
	var docs []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "existingDocuments must be a JSON array")
	}
	ids = make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.ID != "" {
			ids = append(ids, doc.ID)
		}
	}
	return ids, nil
}
