package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newRouter(captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		*captured = Value(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestMiddlewareGeneratesID(t *testing.T) {
	var captured string
	w := httptest.NewRecorder()
	newRouter(&captured).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(captured)
	assert.NoError(t, err)
	assert.Equal(t, captured, w.Header().Get(headerKey))
}

func TestMiddlewareKeepsClientID(t *testing.T) {
	var captured string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerKey, "abc-123")
	newRouter(&captured).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc-123", captured)
}

func TestMiddlewareReplacesOversizedID(t *testing.T) {
	var captured string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerKey, strings.Repeat("x", maxLength+1))
	newRouter(&captured).ServeHTTP(httptest.NewRecorder(), req)
	assert.Len(t, captured, 36)
}
