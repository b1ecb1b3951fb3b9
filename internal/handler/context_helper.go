package handler

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/arsip-desa-api/internal/middleware"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	"github.com/noah-isme/arsip-desa-api/internal/service"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// bodyError reports a body that hit the BodyLimit cap as 413 and any other bind
// failure as a validation error carrying message.
func bodyError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// uploadFromHeader buffers a multipart part into a rewindable upload. Parts
// larger than limit are refused without being read; a non-positive limit
// disables the check.
func uploadFromHeader(fh *multipart.FileHeader, limit int64) (*service.FileUpload, error) {
	if limit > 0 && fh.Size > limit {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file %s exceeds %d bytes", fh.Filename, limit))
	}
	src, err := fh.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	defer src.Close()

	// Parts may be backed by temp files removed at the end of the request.
	var r io.Reader = src
	if limit > 0 {
		r = io.LimitReader(src, limit+1)
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file")
	}
	if limit > 0 && int64(len(buf)) > limit {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file %s exceeds %d bytes", fh.Filename, limit))
	}
	return &service.FileUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        int64(len(buf)),
		Content:     bytes.NewReader(buf),
	}, nil
}

// uploadFromBase64 decodes a JSON file payload. data:<mime>;base64, prefixes
// override contentType.
func uploadFromBase64(fileName, data, contentType string) (*service.FileUpload, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, nil
	}
	if strings.HasPrefix(data, "data:") {
		comma := strings.IndexByte(data, ',')
		if comma < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "malformed data URL")
		}
		header := strings.TrimPrefix(data[:comma], "data:")
		if !strings.HasSuffix(header, ";base64") {
			return nil, appErrors.Clone(appErrors.ErrValidation, "fileData must be base64 encoded")
		}
		if mt := strings.TrimSuffix(header, ";base64"); mt != "" {
			contentType = mt
		}
		data = data[comma+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "fileData is not valid base64")
	}
	return &service.FileUpload{
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(raw)),
		Content:     bytes.NewReader(raw),
	}, nil
}

// serveInline streams a stored file for in-browser viewing.
func serveInline(c *gin.Context, file *service.FileDownload) {
	defer file.Body.Close() //nolint:errcheck
	name := strings.ReplaceAll(file.FileName, `"`, "")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", name))
	c.Header("Cache-Control", "private, no-store")
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := file.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, contentType, file.Body, nil)
}
