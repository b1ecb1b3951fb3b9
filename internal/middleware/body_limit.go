package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/response"
)

const maxBodyBytesKey = "max_body_bytes"

// BodyLimit caps request bodies at limit bytes. Bodies that declare a larger
// length are refused before any read; reads past the cap fail with
// *http.MaxBytesError. A non-positive limit disables the cap.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("request body exceeds %d bytes", limit)))
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Set(maxBodyBytesKey, limit)
		c.Next()
	}
}

// MaxBodyBytes returns the cap installed by BodyLimit, or 0 when none applies.
func MaxBodyBytes(c *gin.Context) int64 {
	return c.GetInt64(maxBodyBytesKey)
}
