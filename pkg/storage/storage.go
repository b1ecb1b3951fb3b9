package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned when a locator does not resolve to a stored blob.
var ErrObjectNotFound = errors.New("storage: object not found")

// BlobStore persists named binary blobs and hands back an opaque locator.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Get(ctx context.Context, locator string) (*Object, error)
	Delete(ctx context.Context, locator string) error
}

// Object is an open handle on a stored blob. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	Name        string
	ContentType string
	Size        int64
}

// objectKey builds a collision-free key of the form 2024/03/<uuid>-<name>.
func objectKey(name string, now time.Time) string {
	base := sanitizeName(name)
	return fmt.Sprintf("%s/%s-%s", now.UTC().Format("2006/01"), uuid.NewString(), base)
}

func sanitizeName(raw string) string {
	raw = strings.ToLower(filepath.Base(strings.TrimSpace(raw)))
	ext := filepath.Ext(raw)
	stem := strings.TrimSuffix(raw, ext)

	var b strings.Builder
	for _, r := range stem {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	clean := strings.Trim(b.String(), "_")
	if clean == "" {
		clean = "file"
	}
	if len(clean) > 64 {
		clean = clean[:64]
	}

	var e strings.Builder
	for _, r := range strings.TrimPrefix(ext, ".") {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			e.WriteRune(r)
		}
	}
	if e.Len() == 0 {
		return clean
	}
	return clean + "." + e.String()
}
