package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresIn   int64     `json:"expiresIn"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	UID         string   `json:"uid"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Role        UserRole `json:"role"`
}

// JWTClaims is the access token payload. The subject carries the account uid.
type JWTClaims struct {
	UserID      string   `json:"uid"`
	Email       string   `json:"email"`
	DisplayName string   `json:"name,omitempty"`
	Role        UserRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}
