package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/storage"
)

type profileStore interface {
	Get(ctx context.Context) (*models.InstitutionProfile, error)
	Upsert(ctx context.Context, profile *models.InstitutionProfile) error
}

// ProfileServiceConfig tunes fetch timeout and upload limits.
type ProfileServiceConfig struct {
	FetchTimeout    time.Duration
	LogoMaxSize     int64
	DocumentMaxSize int64
	DefaultTitle    string
	APIPrefix       string
}

// ProfileService reads and saves the institution profile.
type ProfileService struct {
	repo      profileStore
	storage   storage.BlobStore
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ProfileServiceConfig
	urlPrefix string
	now       func() time.Time
}

// NewProfileService constructs the service.
func NewProfileService(repo profileStore, store storage.BlobStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg ProfileServiceConfig) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.LogoMaxSize <= 0 {
		cfg.LogoMaxSize = 2 * 1024 * 1024
	}
	if cfg.DocumentMaxSize <= 0 {
		cfg.DocumentMaxSize = 10 * 1024 * 1024
	}
	if cfg.DefaultTitle == "" {
		cfg.DefaultTitle = "Sistem Arsip Digital Desa"
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	return &ProfileService{
		repo:      repo,
		storage:   store,
		audit:     audit,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		urlPrefix: strings.TrimRight(cfg.APIPrefix, "/"),
		now:       time.Now,
	}
}

type profileResult struct {
	profile *models.InstitutionProfile
	err     error
}

// Get returns the saved profile, or a placeholder when none exists or the lookup
// does not finish within the fetch timeout.
func (s *ProfileService) Get(ctx context.Context) (*models.InstitutionProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	done := make(chan profileResult, 1)
	go func() {
		profile, err := s.repo.Get(ctx)
		done <- profileResult{profile: profile, err: err}
	}()

	select {
	case <-ctx.Done():
		timeoutErr := appErrors.Wrap(ctx.Err(), appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, appErrors.ErrTimeout.Message)
		s.logger.Warn("profile fetch timed out, serving placeholder", zap.Duration("timeout", s.cfg.FetchTimeout), zap.Error(timeoutErr))
		return s.placeholder(), nil
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, sql.ErrNoRows) {
				return s.placeholder(), nil
			}
			return nil, appErrors.Wrap(res.err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
		}
		return s.decorate(res.profile), nil
	}
}

// Save validates and persists the profile. New files are uploaded first; files no
// longer referenced are removed after the upsert succeeds. A nil retainedIDs
// keeps every stored document, while a non-nil list keeps only the ids it names.
func (s *ProfileService) Save(ctx context.Context, req dto.SaveProfileRequest, logo *FileUpload, documents []*FileUpload, retainedIDs []string, actorID string) (*models.InstitutionProfile, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "missing or invalid required fields")
	}

	var logoType string
	if logo != nil {
		mt, err := s.checkFile(logo, s.cfg.LogoMaxSize, "logo")
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(mt, "image/") {
			return nil, appErrors.Clone(appErrors.ErrValidation, "logo must be an image")
		}
		logoType = mt
	}
	for _, doc := range documents {
		mt, err := s.checkFile(doc, s.cfg.DocumentMaxSize, "document")
		if err != nil {
			return nil, err
		}
		if mt != "application/pdf" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("document %s must be a PDF", doc.FileName))
		}
	}

	existing, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
		}
		existing = &models.InstitutionProfile{}
	}
	before := *existing

	profile := *existing
	profile.Name = req.Name
	profile.Address = req.Address
	profile.Phone = req.Phone
	profile.Email = req.Email
	profile.Description = req.Description
	profile.DashboardTitle = strPtr(s.cfg.DefaultTitle)
	if title := normalizeOptional(req.DashboardTitle); title != nil {
		profile.DashboardTitle = title
	}
	profile.UpdatedBy = actorPtr(actorID)

	var uploaded, obsolete []string
	rollback := func(reason string) {
		for _, locator := range uploaded {
			s.removeBlob(ctx, locator, reason)
		}
	}

	if logo != nil {
		name := displayFileName(logo.FileName, logoType)
		locator, err := s.put(ctx, logo, name, logoType)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, locator)
		if existing.LogoLocator != nil {
			obsolete = append(obsolete, *existing.LogoLocator)
		}
		profile.LogoLocator = &locator
		profile.LogoName = &name
		profile.LogoContentType = &logoType
	} else if req.RemoveLogo {
		if existing.LogoLocator != nil {
			obsolete = append(obsolete, *existing.LogoLocator)
		}
		profile.LogoLocator, profile.LogoName, profile.LogoContentType = nil, nil, nil
	}

	keep := make(map[string]struct{}, len(retainedIDs))
	for _, id := range retainedIDs {
		keep[strings.TrimSpace(id)] = struct{}{}
	}
	docs := make(models.ProfileDocuments, 0, len(existing.Documents)+len(documents))
	for _, doc := range existing.Documents {
		if _, ok := keep[doc.ID]; ok || retainedIDs == nil {
			docs = append(docs, doc)
			continue
		}
		obsolete = append(obsolete, doc.Locator)
	}
	for _, upload := range documents {
		name := displayFileName(upload.FileName, "application/pdf")
		locator, err := s.put(ctx, upload, name, "application/pdf")
		if err != nil {
			rollback("rollback profile upload")
			return nil, err
		}
		uploaded = append(uploaded, locator)
		docs = append(docs, models.ProfileDocument{
			ID:          uuid.NewString(),
			Name:        name,
			Locator:     locator,
			ContentType: "application/pdf",
			UploadedAt:  s.now().UTC(),
		})
	}
	profile.Documents = docs

	if err := s.repo.Upsert(ctx, &profile); err != nil {
		rollback("rollback profile save")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save profile")
	}
	for _, locator := range obsolete {
		s.removeBlob(ctx, locator, "profile file replaced")
	}

	recordAudit(ctx, s.audit, s.logger, &models.AuditLog{
		UserID:     actorPtr(actorID),
		Action:     models.AuditActionProfileSave,
		Resource:   "institution_profile",
		ResourceID: strPtr(models.DefaultProfileID),
		OldValues:  auditJSON(before),
		NewValues:  auditJSON(profile),
	})
	return s.decorate(&profile), nil
}

// OpenLogo streams the stored logo.
func (s *ProfileService) OpenLogo(ctx context.Context) (*FileDownload, error) {
	profile, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if profile.LogoLocator == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "logo not found")
	}
	name, contentType := "logo", "application/octet-stream"
	if profile.LogoName != nil {
		name = *profile.LogoName
	}
	if profile.LogoContentType != nil {
		contentType = *profile.LogoContentType
	}
	return s.open(ctx, *profile.LogoLocator, name, contentType, "logo not found")
}

// OpenDocument streams one supporting document.
func (s *ProfileService) OpenDocument(ctx context.Context, id string) (*FileDownload, error) {
	profile, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, doc := range profile.Documents {
		if doc.ID == id {
			return s.open(ctx, doc.Locator, doc.Name, doc.ContentType, "document not found")
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
}

func (s *ProfileService) load(ctx context.Context) (*models.InstitutionProfile, error) {
	profile, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

func (s *ProfileService) open(ctx context.Context, locator, name, contentType, missing string) (*FileDownload, error) {
	obj, err := s.storage.Get(ctx, locator)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, missing)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read file")
	}
	return &FileDownload{Body: obj.Body, FileName: name, ContentType: contentType, Size: obj.Size}, nil
}

func (s *ProfileService) checkFile(upload *FileUpload, limit int64, label string) (string, error) {
	if upload.Content == nil || upload.Size <= 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, label+" is empty")
	}
	if upload.Size > limit {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s exceeds %d bytes limit", label, limit))
	}
	return detectMime(upload)
}

func (s *ProfileService) put(ctx context.Context, upload *FileUpload, name, contentType string) (string, error) {
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	locator, err := s.storage.Put(ctx, name, contentType, upload.Content)
	if err != nil {
		s.logger.Error("profile upload failed", zap.String("file_name", name), zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
	return locator, nil
}

func (s *ProfileService) removeBlob(ctx context.Context, locator, reason string) {
	if locator == "" {
		return
	}
	if err := s.storage.Delete(ctx, locator); err != nil {
		s.logger.Warn("failed to remove profile file", zap.String("locator", locator), zap.String("reason", reason), zap.Error(err))
	}
}

func (s *ProfileService) placeholder() *models.InstitutionProfile {
	return &models.InstitutionProfile{
		ID:             models.DefaultProfileID,
		DashboardTitle: strPtr(s.cfg.DefaultTitle),
		Documents:      models.ProfileDocuments{},
		Placeholder:    true,
	}
}

func (s *ProfileService) decorate(profile *models.InstitutionProfile) *models.InstitutionProfile {
	if profile.LogoLocator != nil {
		profile.LogoURL = s.urlPrefix + "/settings/logo"
	}
	if profile.Documents == nil {
		profile.Documents = models.ProfileDocuments{}
	}
	for i := range profile.Documents {
		profile.Documents[i].URL = fmt.Sprintf("%s/settings/documents/%s", s.urlPrefix, profile.Documents[i].ID)
	}
	return profile
}
