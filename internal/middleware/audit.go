package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/arsip-desa-api/internal/service"
)

// AuditContext carries the client IP and user agent into the request context so
// services can stamp audit entries.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := service.WithRequestInfo(c.Request.Context(), service.RequestInfo{
			IP:        c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
