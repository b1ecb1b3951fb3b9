package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/storage"
)

const archiveTokenScope = "archive"

type archiveStore interface {
	Create(ctx context.Context, item *models.Archive) error
	GetByID(ctx context.Context, id string) (*models.Archive, error)
	List(ctx context.Context, filter models.ArchiveFilter) ([]models.Archive, error)
	Update(ctx context.Context, item *models.Archive) error
	Delete(ctx context.Context, id string) error
}

type documentTypeLookup interface {
	GetByID(ctx context.Context, id string) (*models.DocumentType, error)
}

type archiveSignedURLSigner interface {
	Generate(resourceID, scope string) (string, time.Time, error)
	Parse(token string) (resourceID, scope string, expiresAt time.Time, err error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string)
}

// FileUpload carries an incoming file. Content must be rewindable so the MIME
// type can be sniffed before storing.
type FileUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
}

// FileDownload bundles an open blob with the metadata needed to serve it.
// Callers must close Body.
type FileDownload struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
	Size        int64
}

// ArchiveServiceConfig holds validation parameters.
type ArchiveServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	APIPrefix    string
	Location     *time.Location
}

// ArchiveService manages archive metadata and the stored files behind it.
type ArchiveService struct {
	repo      archiveStore
	types     documentTypeLookup
	storage   storage.BlobStore
	signer    archiveSignedURLSigner
	audit     auditLogger
	cache     cacheInvalidator
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ArchiveServiceConfig
	mimeSet   map[string]struct{}
	urlPrefix string
}

// NewArchiveService constructs the service with defaults.
func NewArchiveService(repo archiveStore, types documentTypeLookup, store storage.BlobStore, signer archiveSignedURLSigner, audit auditLogger, cache cacheInvalidator, metrics *MetricsService, logger *zap.Logger, cfg ArchiveServiceConfig) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{
			"application/pdf",
			"image/jpeg",
			"image/png",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &ArchiveService{
		repo:      repo,
		types:     types,
		storage:   store,
		signer:    signer,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
		urlPrefix: strings.TrimRight(cfg.APIPrefix, "/"),
	}
}

// Create validates the request, stores the file and writes the archive record.
func (s *ArchiveService) Create(ctx context.Context, fields dto.ArchiveFields, upload *FileUpload, actorID string) (*models.Archive, error) {
	title := trimmed(fields.Title)
	if title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title is required")
	}
	typeID := trimmed(fields.DocumentTypeID)
	if typeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "documentTypeId is required")
	}
	if upload == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	contentType, err := s.validateUpload(upload)
	if err != nil {
		return nil, err
	}
	typeName, err := s.resolveTypeName(ctx, typeID)
	if err != nil {
		return nil, err
	}

	locator, err := s.store(ctx, upload, contentType)
	if err != nil {
		return nil, err
	}

	item := &models.Archive{
		Title:            title,
		DocumentTypeID:   typeID,
		DocumentTypeName: typeName,
		FileName:         displayFileName(upload.FileName, contentType),
		ContentType:      contentType,
		SizeBytes:        upload.Size,
		StorageLocator:   locator,
		UploadedBy:       actorID,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		s.removeBlob(ctx, locator, "rollback create")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create archive")
	}

	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     actorPtr(actorID),
		Action:     models.AuditActionArchiveCreate,
		Resource:   "archive",
		ResourceID: &item.ID,
		NewValues:  auditJSON(item),
	})
	s.invalidateDashboard(ctx)
	return s.decorate(item), nil
}

// List returns archives newest first, filtered by month/year/type.
func (s *ArchiveService) List(ctx context.Context, query dto.PeriodQuery) ([]models.Archive, error) {
	filter, _, err := archiveFilterFor(query, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list archives")
	}
	for i := range items {
		s.decorate(&items[i])
	}
	return items, nil
}

// Get returns one archive.
func (s *ArchiveService) Get(ctx context.Context, id string) (*models.Archive, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(item), nil
}

// Update changes metadata and optionally replaces the stored file.
func (s *ArchiveService) Update(ctx context.Context, id string, fields dto.ArchiveFields, upload *FileUpload, actorID string) (*models.Archive, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *existing
	updated := *existing

	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "title cannot be empty")
		}
		updated.Title = title
	}
	if fields.DocumentTypeID != nil {
		typeID := strings.TrimSpace(*fields.DocumentTypeID)
		if typeID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "documentTypeId cannot be empty")
		}
		if typeID != existing.DocumentTypeID {
			name, err := s.resolveTypeName(ctx, typeID)
			if err != nil {
				return nil, err
			}
			updated.DocumentTypeID = typeID
			updated.DocumentTypeName = name
		}
	}

	var newLocator string
	if upload != nil {
		contentType, err := s.validateUpload(upload)
		if err != nil {
			return nil, err
		}
		newLocator, err = s.store(ctx, upload, contentType)
		if err != nil {
			return nil, err
		}
		updated.FileName = displayFileName(upload.FileName, contentType)
		updated.ContentType = contentType
		updated.SizeBytes = upload.Size
		updated.StorageLocator = newLocator
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if newLocator != "" {
			s.removeBlob(ctx, newLocator, "rollback update")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "archive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update archive")
	}
	if newLocator != "" && before.StorageLocator != "" && before.StorageLocator != newLocator {
		s.removeBlob(ctx, before.StorageLocator, "replace file")
	}

	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     actorPtr(actorID),
		Action:     models.AuditActionArchiveUpdate,
		Resource:   "archive",
		ResourceID: &updated.ID,
		OldValues:  auditJSON(before),
		NewValues:  auditJSON(updated),
	})
	s.invalidateDashboard(ctx)
	return s.decorate(&updated), nil
}

// Delete removes the record, then the stored file on a best-effort basis.
func (s *ArchiveService) Delete(ctx context.Context, id, actorID string) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "archive not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete archive")
	}
	s.removeBlob(ctx, existing.StorageLocator, "delete archive")

	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     actorPtr(actorID),
		Action:     models.AuditActionArchiveDelete,
		Resource:   "archive",
		ResourceID: &existing.ID,
		OldValues:  auditJSON(existing),
	})
	s.invalidateDashboard(ctx)
	return nil
}

// Open streams the stored file of an archive.
func (s *ArchiveService) Open(ctx context.Context, id string) (*FileDownload, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	obj, err := s.storage.Get(ctx, item.StorageLocator)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "archive file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read archive file")
	}
	size := obj.Size
	if size <= 0 {
		size = item.SizeBytes
	}
	return &FileDownload{
		Body:        obj.Body,
		FileName:    item.FileName,
		ContentType: item.ContentType,
		Size:        size,
	}, nil
}

// GetDownloadURL returns a signed URL usable without an Authorization header.
func (s *ArchiveService) GetDownloadURL(ctx context.Context, id string) (*dto.ArchiveDownloadResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(item.ID, archiveTokenScope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate download token")
	}
	return &dto.ArchiveDownloadResponse{
		Archive:     *item,
		DownloadURL: fmt.Sprintf("%s?token=%s", item.FileURL, token),
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// VerifyDownloadToken checks that token was issued for archive id.
func (s *ArchiveService) VerifyDownloadToken(id, token string) error {
	if s.signer == nil || token == "" {
		return appErrors.ErrUnauthorized
	}
	resourceID, scope, _, err := s.signer.Parse(token)
	if err != nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	if resourceID != id || scope != archiveTokenScope {
		return appErrors.Clone(appErrors.ErrUnauthorized, "download token mismatch")
	}
	return nil
}

func (s *ArchiveService) load(ctx context.Context, id string) (*models.Archive, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "archive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load archive")
	}
	return item, nil
}

func (s *ArchiveService) resolveTypeName(ctx context.Context, typeID string) (string, error) {
	if s.types == nil {
		return models.UnknownDocumentTypeName, nil
	}
	dt, err := s.types.GetByID(ctx, typeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UnknownDocumentTypeName, nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve document type")
	}
	return dt.Name, nil
}

func (s *ArchiveService) validateUpload(upload *FileUpload) (string, error) {
	if upload.Content == nil || upload.Size <= 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	contentType, err := detectMime(upload)
	if err != nil {
		return "", err
	}
	if _, allowed := s.mimeSet[contentType]; !allowed {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %s is not allowed", contentType))
	}
	return contentType, nil
}

func (s *ArchiveService) store(ctx context.Context, upload *FileUpload, contentType string) (string, error) {
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	locator, err := s.storage.Put(ctx, displayFileName(upload.FileName, contentType), contentType, upload.Content)
	if err != nil {
		s.logger.Error("archive upload failed", zap.String("file_name", upload.FileName), zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
	s.metrics.ObserveUpload(upload.Size)
	return locator, nil
}

func (s *ArchiveService) removeBlob(ctx context.Context, locator, reason string) {
	if locator == "" {
		return
	}
	if err := s.storage.Delete(ctx, locator); err != nil {
		s.logger.Warn("failed to remove archive file",
			zap.String("locator", locator),
			zap.String("reason", reason),
			zap.Error(err))
	}
}

func (s *ArchiveService) invalidateDashboard(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, dashboardCachePattern)
	}
}

func (s *ArchiveService) decorate(item *models.Archive) *models.Archive {
	item.FileURL = fmt.Sprintf("%s/archives/%s/download", s.urlPrefix, item.ID)
	return item
}

func init() {
	// Office formats missing from minimal mime.types installs.
	_ = mime.AddExtensionType(".doc", "application/msword")
	_ = mime.AddExtensionType(".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
}

// detectMime prefers the declared type and sniffs the first 512 bytes otherwise.
// Sniffed containers that say nothing about the document (OLE or zip, as .doc
// and .docx files sniff) defer to the file name extension.
func detectMime(upload *FileUpload) (string, error) {
	if declared := normalizeMime(upload.ContentType); declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	sniffed := normalizeMime(http.DetectContentType(header[:n]))
	if sniffed == "application/octet-stream" || sniffed == "application/zip" {
		if byExt := normalizeMime(mime.TypeByExtension(strings.ToLower(filepath.Ext(upload.FileName)))); byExt != "" {
			return byExt, nil
		}
	}
	return sniffed, nil
}

func normalizeMime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	return strings.ToLower(mediaType)
}

func displayFileName(original, contentType string) string {
	name := strings.TrimSpace(filepath.Base(strings.ReplaceAll(original, "\\", "/")))
	if name != "" && name != "." && name != "/" {
		return name
	}
	return "document" + mimeExtension(contentType)
}

func mimeExtension(contentType string) string {
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/msword":
		return ".doc"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	default:
		return ".bin"
	}
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
