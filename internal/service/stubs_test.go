package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/arsip-desa-api/internal/models"
	"github.com/noah-isme/arsip-desa-api/pkg/storage"
)

type auditStub struct {
	mu   sync.Mutex
	logs []*models.AuditLog
	err  error
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.logs = append(a.logs, log)
	return nil
}

func (a *auditStub) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.logs))
	for _, l := range a.logs {
		out = append(out, l.Action)
	}
	return out
}

type blobStoreStub struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	seq       int
	putErr    error
	deleteErr error
	deleted   []string
}

func newBlobStoreStub() *blobStoreStub {
	return &blobStoreStub{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *blobStoreStub) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	locator := fmt.Sprintf("blob-%d-%s", s.seq, name)
	s.objects[locator] = data
	s.types[locator] = contentType
	return locator, nil
}

func (s *blobStoreStub) Get(ctx context.Context, locator string) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[locator]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: s.types[locator],
		Size:        int64(len(data)),
	}, nil
}

func (s *blobStoreStub) Delete(ctx context.Context, locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, locator)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, locator)
	return nil
}

func (s *blobStoreStub) has(locator string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[locator]
	return ok
}

type cacheStub struct {
	invalidated []string
}

func (c *cacheStub) Invalidate(ctx context.Context, pattern string) {
	c.invalidated = append(c.invalidated, pattern)
}

type archiveRepoStub struct {
	mu        sync.Mutex
	items     map[string]*models.Archive
	seq       int
	now       time.Time
	createErr error
	filter    models.ArchiveFilter
}

func newArchiveRepoStub() *archiveRepoStub {
	return &archiveRepoStub{items: map[string]*models.Archive{}, now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (r *archiveRepoStub) Create(ctx context.Context, item *models.Archive) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	if item.ID == "" {
		item.ID = fmt.Sprintf("arch-%d", r.seq)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = r.now.Add(time.Duration(r.seq) * time.Minute)
	}
	item.UpdatedAt = item.CreatedAt
	copy := *item
	r.items[item.ID] = &copy
	return nil
}

func (r *archiveRepoStub) GetByID(ctx context.Context, id string) (*models.Archive, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		copy := *item
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *archiveRepoStub) List(ctx context.Context, filter models.ArchiveFilter) ([]models.Archive, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filter = filter
	result := make([]models.Archive, 0, len(r.items))
	for _, item := range r.items {
		if filter.DocumentTypeID != "" && item.DocumentTypeID != filter.DocumentTypeID {
			continue
		}
		if filter.From != nil && item.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !item.CreatedAt.Before(*filter.To) {
			continue
		}
		result = append(result, *item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *archiveRepoStub) Update(ctx context.Context, item *models.Archive) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *item
	r.items[item.ID] = &copy
	return nil
}

func (r *archiveRepoStub) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type documentTypeRepoStub struct {
	mu     sync.Mutex
	types  map[string]*models.DocumentType
	seq    int
	getErr error
}

func newDocumentTypeRepoStub(names ...string) *documentTypeRepoStub {
	repo := &documentTypeRepoStub{types: map[string]*models.DocumentType{}}
	for _, name := range names {
		_ = repo.Create(context.Background(), &models.DocumentType{Name: name})
	}
	return repo
}

func (r *documentTypeRepoStub) List(ctx context.Context) ([]models.DocumentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.DocumentType, 0, len(r.types))
	for _, dt := range r.types {
		out = append(out, *dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *documentTypeRepoStub) GetByID(ctx context.Context, id string) (*models.DocumentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	if dt, ok := r.types[id]; ok {
		copy := *dt
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *documentTypeRepoStub) Create(ctx context.Context, dt *models.DocumentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if dt.ID == "" {
		dt.ID = fmt.Sprintf("type-%d", r.seq)
	}
	copy := *dt
	r.types[dt.ID] = &copy
	return nil
}

func (r *documentTypeRepoStub) CreateMany(ctx context.Context, types []*models.DocumentType) error {
	for _, dt := range types {
		if err := r.Create(ctx, dt); err != nil {
			return err
		}
	}
	return nil
}

func (r *documentTypeRepoStub) Update(ctx context.Context, dt *models.DocumentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[dt.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *dt
	r.types[dt.ID] = &copy
	return nil
}

func (r *documentTypeRepoStub) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.types, id)
	return nil
}

func (r *documentTypeRepoStub) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.types), nil
}

var errBoom = errors.New("boom")
