package models

import (
	"strings"
	"time"
)

// UserRole represents the roles understood by the access gate.
type UserRole string

const (
	RoleAdministrator  UserRole = "administrator"
	RoleArchiveManager UserRole = "pengelola_arsip"
	RoleRegularUser    UserRole = "pengguna"
)

// AllRoles lists every role in display order.
var AllRoles = []UserRole{RoleAdministrator, RoleArchiveManager, RoleRegularUser}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdministrator, RoleArchiveManager, RoleRegularUser:
		return true
	default:
		return false
	}
}

// User is an account record keyed by the identity subject id.
type User struct {
	UID          string    `db:"uid" json:"uid"`
	Email        string    `db:"email" json:"email"`
	Role         UserRole  `db:"role" json:"role"`
	FirstName    *string   `db:"first_name" json:"firstName,omitempty"`
	LastName     *string   `db:"last_name" json:"lastName,omitempty"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// DisplayName joins first and last name, falling back to the email.
func (u *User) DisplayName() string {
	parts := make([]string, 0, 2)
	if u.FirstName != nil && strings.TrimSpace(*u.FirstName) != "" {
		parts = append(parts, strings.TrimSpace(*u.FirstName))
	}
	if u.LastName != nil && strings.TrimSpace(*u.LastName) != "" {
		parts = append(parts, strings.TrimSpace(*u.LastName))
	}
	if len(parts) == 0 {
		return u.Email
	}
	return strings.Join(parts, " ")
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}
