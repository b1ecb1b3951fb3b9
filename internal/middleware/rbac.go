package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/response"
)

// HomeRedirect is the navigation hint sent with 403 responses.
const HomeRedirect = "/"

// RequireRoles rejects callers whose resolved role is not in roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := c.Get(ContextUserKey)
		user, _ := claims.(*models.JWTClaims)
		if !ok || user == nil {
			unauthorized(c, appErrors.ErrUnauthorized)
			return
		}
		if _, permitted := allowed[user.Role]; !permitted {
			response.ErrorWithRedirect(c, appErrors.Clone(appErrors.ErrForbidden, "your role cannot access this page"), HomeRedirect)
			c.Abort()
			return
		}
		c.Next()
	}
}
