package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context) ([]models.User, error)
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateIfAbsent(ctx context.Context, user *models.User) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, uid string) error
	IsRevoked(ctx context.Context, uid string) (bool, error)
	ClearRevocation(ctx context.Context, uid string) error
}

// UserService handles account management workflows.
type UserService struct {
	repo        userRepository
	audit       auditLogger
	cache       cacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
	defaultRole models.UserRole
}

// NewUserService creates an instance of UserService. An unknown defaultRole falls
// back to the regular user role.
func NewUserService(repo userRepository, audit auditLogger, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger, defaultRole models.UserRole) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if !defaultRole.Valid() {
		defaultRole = models.RoleRegularUser
	}
	return &UserService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger, defaultRole: defaultRole}
}

// DefaultRole is the role given to accounts created without one.
func (s *UserService) DefaultRole() models.UserRole {
	return s.defaultRole
}

// List returns all accounts, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// Get returns a user by uid.
func (s *UserService) Get(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Upsert inserts the account keyed by uid with the default role, or updates its
// email, names and role. It reports whether a new row was created.
func (s *UserService) Upsert(ctx context.Context, uid string, req dto.UpsertUserRequest, actorID string) (*models.User, bool, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "uid is required")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if req.Role != "" && !req.Role.Valid() {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "role must be one of administrator, pengelola_arsip, pengguna")
	}

	existing, err := s.repo.FindByUID(ctx, uid)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		user := &models.User{
			UID:       uid,
			Email:     req.Email,
			Role:      s.defaultRole,
			FirstName: normalizeOptional(req.FirstName),
			LastName:  normalizeOptional(req.LastName),
		}
		if req.Role != "" {
			user.Role = req.Role
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
		}
		// An administrator recreating a deleted uid lets its tokens back in.
		if err := s.repo.ClearRevocation(ctx, uid); err != nil {
			s.logger.Warn("failed to clear account revocation", zap.String("uid", uid), zap.Error(err))
		}
		s.auditUser(ctx, models.AuditActionUserCreate, actorID, user.UID, nil, user)
		s.invalidateDashboard(ctx)
		return user, true, nil
	case err != nil:
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	before := *existing
	existing.Email = req.Email
	if req.Role != "" {
		existing.Role = req.Role
	}
	if req.FirstName != nil {
		existing.FirstName = normalizeOptional(req.FirstName)
	}
	if req.LastName != nil {
		existing.LastName = normalizeOptional(req.LastName)
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	s.auditUser(ctx, models.AuditActionUserUpdate, actorID, existing.UID, &before, existing)
	return existing, false, nil
}

// Create adds an account that can sign in with the built-in login.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest, actorID string) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create user payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be one of administrator, pengelola_arsip, pengguna")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{
		UID:          uuid.NewString(),
		Email:        req.Email,
		Role:         req.Role,
		FirstName:    normalizeOptional(req.FirstName),
		LastName:     normalizeOptional(req.LastName),
		PasswordHash: strPtr(string(hash)),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.auditUser(ctx, models.AuditActionUserCreate, actorID, user.UID, nil, user)
	s.invalidateDashboard(ctx)
	return user, nil
}

// SetRole changes only the role of an account.
func (s *UserService) SetRole(ctx context.Context, uid string, role models.UserRole, actorID string) (*models.User, error) {
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be one of administrator, pengelola_arsip, pengguna")
	}
	user, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	before := *user
	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	s.auditUser(ctx, models.AuditActionUserUpdate, actorID, uid, &before, user)
	return user, nil
}

// Delete removes an account. Tokens already issued for it stop authenticating.
func (s *UserService) Delete(ctx context.Context, uid, actorID string) error {
	if err := s.repo.Delete(ctx, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.auditUser(ctx, models.AuditActionUserDelete, actorID, uid, nil, nil)
	s.invalidateDashboard(ctx)
	return nil
}

// EnsureAccount makes sure an account exists for uid and returns its role. Missing
// accounts are created with defaultRole unless the uid was deleted, which is
// reported as unauthorized. Lookup or insert failures are logged and answered
// with defaultRole.
func (s *UserService) EnsureAccount(ctx context.Context, uid, email, displayName string, defaultRole models.UserRole) (models.UserRole, error) {
	if !defaultRole.Valid() {
		defaultRole = s.defaultRole
	}
	user, err := s.repo.FindByUID(ctx, uid)
	if err == nil {
		if user.Role.Valid() {
			return user.Role, nil
		}
		return defaultRole, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("account lookup failed, using default role", zap.String("uid", uid), zap.Error(err))
		return defaultRole, nil
	}

	revoked, err := s.repo.IsRevoked(ctx, uid)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check account")
	}
	if revoked {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "account has been removed")
	}

	account := &models.User{
		UID:       uid,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      defaultRole,
		FirstName: normalizeOptional(&displayName),
	}
	created, err := s.repo.CreateIfAbsent(ctx, account)
	if err != nil {
		s.logger.Warn("account provisioning failed, using default role", zap.String("uid", uid), zap.Error(err))
		return defaultRole, nil
	}
	if created {
		s.auditUser(ctx, models.AuditActionUserCreate, uid, uid, nil, account)
		s.invalidateDashboard(ctx)
	}
	return defaultRole, nil
}

func (s *UserService) invalidateDashboard(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, dashboardCachePattern)
	}
}

func (s *UserService) auditUser(ctx context.Context, action, actorID, uid string, before, after *models.User) {
	entry := &models.AuditLog{
		UserID:     actorPtr(actorID),
		Action:     action,
		Resource:   "user",
		ResourceID: &uid,
	}
	if before != nil {
		entry.OldValues = auditJSON(map[string]interface{}{"email": before.Email, "role": before.Role})
	}
	if after != nil {
		entry.NewValues = auditJSON(map[string]interface{}{"email": after.Email, "role": after.Role})
	}
	recordAudit(ctx, s.audit, s.logger, entry)
}
