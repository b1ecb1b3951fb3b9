package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// SignInRedirect is the navigation hint sent with 401 responses.
const SignInRedirect = "/signin"

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

type accountResolver interface {
	EnsureAccount(ctx context.Context, uid, email, displayName string, defaultRole models.UserRole) (models.UserRole, error)
}

type downloadTokenVerifier interface {
	VerifyDownloadToken(id, token string) error
}

// JWT requires a valid bearer token and resolves the caller's role from the
// account record, provisioning the account with defaultRole on first sight.
// Tokens of deleted accounts are rejected.
func JWT(tokens tokenValidator, accounts accountResolver, defaultRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, appErrors.ErrUnauthorized)
			return
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			unauthorized(c, err)
			return
		}

		if accounts != nil {
			role, err := accounts.EnsureAccount(c.Request.Context(), claims.UserID, claims.Email, claims.DisplayName, defaultRole)
			if err != nil {
				unauthorized(c, err)
				return
			}
			claims.Role = role
		} else if !claims.Role.Valid() {
			claims.Role = defaultRole
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// SignedDownload lets a request through when its ?token= was issued for the
// archive in the :id path parameter, and falls back to next otherwise.
func SignedDownload(verifier downloadTokenVerifier, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" || verifier == nil {
			next(c)
			return
		}
		if err := verifier.VerifyDownloadToken(c.Param("id"), token); err != nil {
			unauthorized(c, err)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(c *gin.Context, err error) {
	response.ErrorWithRedirect(c, err, SignInRedirect)
	c.Abort()
}
