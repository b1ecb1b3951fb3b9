package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage persists blobs on disk under a base directory.
type LocalStorage struct {
	baseDir string
	now     func() time.Time
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./storage"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, now: time.Now}, nil
}

// Put copies r into a new file and returns its path relative to the base dir.
func (s *LocalStorage) Put(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	locator := objectKey(name, s.now())
	path, err := s.resolve(locator)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare storage directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()    //nolint:errcheck
		os.Remove(path) //nolint:errcheck
		return "", fmt.Errorf("write blob file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path) //nolint:errcheck
		return "", fmt.Errorf("close blob file: %w", err)
	}
	return locator, nil
}

// Get opens the stored file for reading. The content type is left to the caller.
func (s *LocalStorage) Get(ctx context.Context, locator string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open blob file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, fmt.Errorf("stat blob file: %w", err)
	}
	return &Object{Body: file, Name: filepath.Base(path), Size: info.Size()}, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob file: %w", err)
	}
	return nil
}

// Path exposes the underlying path for a locator.
func (s *LocalStorage) Path(locator string) string {
	path, _ := s.resolve(locator)
	return path
}

// resolve maps a locator below baseDir, rejecting anything that escapes it.
func (s *LocalStorage) resolve(locator string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimSpace(locator)))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid locator %q: %w", locator, ErrObjectNotFound)
	}
	return filepath.Join(s.baseDir, clean), nil
}
