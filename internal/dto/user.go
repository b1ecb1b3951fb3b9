package dto

import "github.com/noah-isme/arsip-desa-api/internal/models"

// CreateUserRequest creates an account usable with the built-in login.
type CreateUserRequest struct {
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=6"`
	Role      models.UserRole `json:"role" validate:"required"`
	FirstName *string         `json:"firstName"`
	LastName  *string         `json:"lastName"`
}

// UpsertUserRequest inserts or updates the account keyed by uid.
type UpsertUserRequest struct {
	Email     string          `json:"email" validate:"required,email"`
	Role      models.UserRole `json:"role"`
	FirstName *string         `json:"firstName"`
	LastName  *string         `json:"lastName"`
}

// SetRoleRequest changes only the role of an account.
type SetRoleRequest struct {
	Role models.UserRole `json:"role"`
}
