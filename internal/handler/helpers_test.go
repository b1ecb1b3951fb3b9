package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/internal/middleware"
	"github.com/noah-isme/arsip-desa-api/internal/models"
)

type responseEnvelope struct {
	Data     interface{}            `json:"data"`
	Error    string                 `json:"error"`
	Code     string                 `json:"code"`
	Redirect string                 `json:"redirect"`
	Meta     map[string]interface{} `json:"meta"`
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func withUser(c *gin.Context, uid string, role models.UserRole) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: uid, Email: uid + "@desa.id", Role: role})
}

type formFile struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func newMultipartContext(t *testing.T, method, path string, fields map[string]string, files ...formFile) (*gin.Context, *httptest.ResponseRecorder) {
	body, contentType := multipartBody(t, fields, files...)
	c, w := newGinContext(method, path, nil)
	c.Request = httptest.NewRequest(method, path, body)
	c.Request.Header.Set("Content-Type", contentType)
	return c, w
}

func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return data
}

func ginParam(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}
