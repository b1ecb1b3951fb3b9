package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store.now = func() time.Time { return time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC) }

	locator, err := store.Put(ctx, "Surat Keputusan 01.PDF", "application/pdf", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(locator, "2024/03/"))
	assert.True(t, strings.HasSuffix(locator, "-surat_keputusan_01.pdf"))

	obj, err := store.Get(ctx, locator)
	require.NoError(t, err)
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.NoError(t, obj.Body.Close())
	assert.Equal(t, "%PDF-1.4 body", string(body))
	assert.EqualValues(t, len(body), obj.Size)

	require.NoError(t, store.Delete(ctx, locator))
	_, err = os.Stat(store.Path(locator))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Get(ctx, locator)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorageDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Delete(context.Background(), "2024/01/missing.pdf"))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(dir, "blobs"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("x"), 0o644))

	_, err = store.Get(context.Background(), "../secret.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Error(t, store.Delete(context.Background(), "/etc/passwd"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "file", sanitizeName(""))
	assert.Equal(t, "laporan_2024.pdf", sanitizeName("../Laporan 2024.pdf"))
	assert.Equal(t, "scan.jpg", sanitizeName("scan.JPG"))
}
