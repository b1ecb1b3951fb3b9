package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
)

type documentTypeRepository interface {
	List(ctx context.Context) ([]models.DocumentType, error)
	GetByID(ctx context.Context, id string) (*models.DocumentType, error)
	Create(ctx context.Context, dt *models.DocumentType) error
	CreateMany(ctx context.Context, types []*models.DocumentType) error
	Update(ctx context.Context, dt *models.DocumentType) error
	Delete(ctx context.Context, id string) error
}

// DocumentTypeService manages archive categories.
type DocumentTypeService struct {
	repo         documentTypeRepository
	audit        auditLogger
	cache        cacheInvalidator
	logger       *zap.Logger
	seedDefaults bool
}

// NewDocumentTypeService constructs the service.
func NewDocumentTypeService(repo documentTypeRepository, audit auditLogger, cache cacheInvalidator, logger *zap.Logger, seedDefaults bool) *DocumentTypeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentTypeService{repo: repo, audit: audit, cache: cache, logger: logger, seedDefaults: seedDefaults}
}

// List returns every type by name, seeding the defaults into an empty registry.
func (s *DocumentTypeService) List(ctx context.Context) ([]models.DocumentType, error) {
	types, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list document types")
	}
	if len(types) > 0 || !s.seedDefaults {
		return types, nil
	}
	if _, err := s.SeedDefaults(ctx); err != nil {
		return nil, err
	}
	types, err = s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list document types")
	}
	return types, nil
}

// SeedDefaults inserts the village default categories and returns how many were added.
func (s *DocumentTypeService) SeedDefaults(ctx context.Context) (int, error) {
	batch := make([]*models.DocumentType, 0, len(models.DefaultDocumentTypeNames))
	for _, name := range models.DefaultDocumentTypeNames {
		batch = append(batch, &models.DocumentType{Name: name})
	}
	if err := s.repo.CreateMany(ctx, batch); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed document types")
	}
	s.logger.Info("seeded default document types", zap.Int("count", len(batch)))
	return len(batch), nil
}

// Get returns one type.
func (s *DocumentTypeService) Get(ctx context.Context, id string) (*models.DocumentType, error) {
	dt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document type")
	}
	return dt, nil
}

// Create adds a category.
func (s *DocumentTypeService) Create(ctx context.Context, req dto.CreateDocumentTypeRequest, actorID string) (*models.DocumentType, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	dt := &models.DocumentType{Name: name, Description: normalizeOptional(req.Description)}
	if err := s.repo.Create(ctx, dt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document type")
	}
	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     actorPtr(actorID),
		Action:     models.AuditActionDocumentTypeCreate,
		Resource:   "document_type",
		ResourceID: &dt.ID,
		NewValues:  auditJSON(dt),
	})
	s.invalidate(ctx)
	return dt, nil
}

// Update renames or re-describes a category. Archives keep their snapshot name.
func (s *DocumentTypeService) Update(ctx context.Context, id string, req dto.UpdateDocumentTypeRequest, actorID string) (*models.DocumentType, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name cannot be empty")
		}
		existing.Name = name
	}
	if req.Description != nil {
		existing.Description = normalizeOptional(req.Description)
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document type")
	}
	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     actorPtr(actorID),
		Action:     models.AuditActionDocumentTypeUpdate,
		Resource:   "document_type",
		ResourceID: &existing.ID,
		OldValues:  auditJSON(before),
		NewValues:  auditJSON(existing),
	})
	s.invalidate(ctx)
	return existing, nil
}

// Delete removes a category without touching archives that reference it.
func (s *DocumentTypeService) Delete(ctx context.Context, id, actorID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document type not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document type")
	}
	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     actorPtr(actorID),
		Action:     models.AuditActionDocumentTypeDelete,
		Resource:   "document_type",
		ResourceID: &id,
	})
	s.invalidate(ctx)
	return nil
}

func (s *DocumentTypeService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, dashboardCachePattern)
	}
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
