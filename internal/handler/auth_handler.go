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

type authService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*models.LoginResponse, error)
	ChangePassword(ctx context.Context, uid string, req dto.ChangePasswordRequest) error
}

type accountLookup interface {
	Get(ctx context.Context, uid string) (*models.User, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service  authService
	accounts accountLookup
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, accounts accountLookup) *AuthHandler {
	return &AuthHandler{service: svc, accounts: accounts}
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// ChangePassword godoc
// @Summary Change password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.ChangePasswordRequest true "Change password payload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid change password payload"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Me godoc
// @Summary Current user
// @Description Returns the caller with the role resolved from the account record.
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	info := models.UserInfo{UID: claims.UserID, Email: claims.Email, DisplayName: claims.DisplayName, Role: claims.Role}
	if h.accounts != nil {
		if user, err := h.accounts.Get(c.Request.Context(), claims.UserID); err == nil {
			info.Email = user.Email
			info.DisplayName = user.DisplayName()
		}
	}
	response.JSON(c, http.StatusOK, info, nil)
}
