package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/response"
)

type accessService interface {
	PagesFor(role models.UserRole) []models.Page
	Check(page string, role models.UserRole) models.AccessDecision
}

// AccessHandler answers page-level access questions for the front end.
type AccessHandler struct {
	service accessService
}

// NewAccessHandler constructs the handler.
func NewAccessHandler(service accessService) *AccessHandler {
	return &AccessHandler{service: service}
}

// Pages godoc
// @Summary Pages the caller may open
// @Tags Access
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /access/pages [get]
func (h *AccessHandler) Pages(c *gin.Context) {
	var role models.UserRole
	if claims := claimsFromContext(c); claims != nil {
		role = claims.Role
	}
	response.JSON(c, http.StatusOK, h.service.PagesFor(role), nil)
}

// Check godoc
// @Summary Check access to a page
// @Tags Access
// @Produce json
// @Param page query string true "Page path"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /access/check [get]
func (h *AccessHandler) Check(c *gin.Context) {
	page := c.Query("page")
	if page == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page is required"))
		return
	}
	var role models.UserRole
	if claims := claimsFromContext(c); claims != nil {
		role = claims.Role
	}
	response.JSON(c, http.StatusOK, h.service.Check(page, role), nil)
}
