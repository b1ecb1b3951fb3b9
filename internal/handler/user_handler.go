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

type userService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, uid string) (*models.User, error)
	Upsert(ctx context.Context, uid string, req dto.UpsertUserRequest, actorID string) (*models.User, bool, error)
	Create(ctx context.Context, req dto.CreateUserRequest, actorID string) (*models.User, error)
	SetRole(ctx context.Context, uid string, role models.UserRole, actorID string) (*models.User, error)
	Delete(ctx context.Context, uid, actorID string) error
}

// UserHandler handles account management endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil, map[string]interface{}{"total": len(users)})
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param uid path string true "Account UID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{uid} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Create godoc
// @Summary Create login account
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body dto.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	user, err := h.service.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Upsert godoc
// @Summary Insert or update user by UID
// @Tags Users
// @Accept json
// @Produce json
// @Param uid path string true "Account UID"
// @Param payload body dto.UpsertUserRequest true "User payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Router /users/{uid} [post]
func (h *UserHandler) Upsert(c *gin.Context) {
	var req dto.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	user, created, err := h.service.Upsert(c.Request.Context(), c.Param("uid"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, user)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// SetRole godoc
// @Summary Change user role
// @Tags Users
// @Accept json
// @Produce json
// @Param uid path string true "Account UID"
// @Param payload body dto.SetRoleRequest true "Role"
// @Success 200 {object} response.Envelope
// @Router /users/{uid}/role [put]
func (h *UserHandler) SetRole(c *gin.Context) {
	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	user, err := h.service.SetRole(c.Request.Context(), c.Param("uid"), req.Role, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Delete godoc
// @Summary Delete user
// @Tags Users
// @Param uid path string true "Account UID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /users/{uid} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("uid"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
