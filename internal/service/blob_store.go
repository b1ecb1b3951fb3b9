package service

import (
	"context"
	"io"
	"time"

	"github.com/noah-isme/arsip-desa-api/pkg/storage"
)

// meteredStore records Prometheus metrics around a storage backend.
type meteredStore struct {
	next    storage.BlobStore
	backend string
	metrics *MetricsService
}

// NewMeteredStore wraps store so every call is counted under backend.
func NewMeteredStore(store storage.BlobStore, backend string, metrics *MetricsService) storage.BlobStore {
	if metrics == nil {
		return store
	}
	return &meteredStore{next: store, backend: backend, metrics: metrics}
}

func (m *meteredStore) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	start := time.Now()
	locator, err := m.next.Put(ctx, name, contentType, r)
	m.metrics.ObserveStorage(m.backend, "put", err, time.Since(start))
	return locator, err
}

func (m *meteredStore) Get(ctx context.Context, locator string) (*storage.Object, error) {
	start := time.Now()
	obj, err := m.next.Get(ctx, locator)
	m.metrics.ObserveStorage(m.backend, "get", err, time.Since(start))
	return obj, err
}

func (m *meteredStore) Delete(ctx context.Context, locator string) error {
	start := time.Now()
	err := m.next.Delete(ctx, locator)
	m.metrics.ObserveStorage(m.backend, "delete", err, time.Since(start))
	return err
}
