// Package app wires configuration, storage and services for the server and the
// admin CLI.
package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/arsip-desa-api/internal/models"
	"github.com/noah-isme/arsip-desa-api/internal/repository"
	"github.com/noah-isme/arsip-desa-api/internal/service"
	"github.com/noah-isme/arsip-desa-api/pkg/cache"
	"github.com/noah-isme/arsip-desa-api/pkg/config"
	"github.com/noah-isme/arsip-desa-api/pkg/database"
	"github.com/noah-isme/arsip-desa-api/pkg/export"
	"github.com/noah-isme/arsip-desa-api/pkg/storage"
)

// Container holds the long-lived dependencies built from configuration.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sqlx.DB
	BlobDB  *sqlx.DB
	Redis   *redis.Client
	Metrics *service.MetricsService

	Archives      *service.ArchiveService
	DocumentTypes *service.DocumentTypeService
	Profile       *service.ProfileService
	Users         *service.UserService
	Auth          *service.AuthService
	Dashboard     *service.DashboardService
	Reports       *service.ReportService
	Access        *service.AccessService
}

// Build opens the databases and constructs every service.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Container{Config: cfg, Logger: logger, Metrics: service.NewMetricsService()}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c.DB = db

	blobs, err := c.openBlobStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
	}
	c.Redis = redisClient

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, cfg.Redis.KeyPrefix, logger)
	}
	cacheSvc := service.NewCacheService(cacheRepo, c.Metrics, cfg.Dashboard.CacheTTL, logger, cfg.Dashboard.CacheEnabled)

	validate := validator.New()
	loc := cfg.Reports.Location()

	archiveRepo := repository.NewArchiveRepository(db)
	typeRepo := repository.NewDocumentTypeRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	signer := storage.NewSignedURLSigner(cfg.Archives.SignedURLSecret, cfg.Archives.SignedURLTTL)

	c.Archives = service.NewArchiveService(archiveRepo, typeRepo, blobs, signer, auditRepo, cacheSvc, c.Metrics, logger, service.ArchiveServiceConfig{
		MaxFileSize:  cfg.Archives.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Archives.AllowedMIMEs,
		APIPrefix:    cfg.APIPrefix,
		Location:     loc,
	})
	c.DocumentTypes = service.NewDocumentTypeService(typeRepo, auditRepo, cacheSvc, logger, cfg.DocumentTypes.SeedDefaults)
	c.Profile = service.NewProfileService(profileRepo, blobs, auditRepo, validate, logger, service.ProfileServiceConfig{
		FetchTimeout:    cfg.Profile.FetchTimeout,
		LogoMaxSize:     cfg.Profile.LogoMaxSizeBytes,
		DocumentMaxSize: cfg.Profile.DocumentMaxSizeByte,
		DefaultTitle:    cfg.Profile.DefaultTitle,
		APIPrefix:       cfg.APIPrefix,
	})
	c.Users = service.NewUserService(userRepo, auditRepo, cacheSvc, validate, logger, models.UserRole(cfg.Accounts.DefaultRole))
	c.Auth = service.NewAuthService(userRepo, auditRepo, validate, logger, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	c.Dashboard = service.NewDashboardService(archiveRepo, userRepo, typeRepo, cacheSvc, cfg.Dashboard.CacheTTL, logger)
	c.Reports = service.NewReportService(archiveRepo, export.NewCSVExporter(), export.NewPDFExporter(), export.NewChartRenderer(), c.Metrics, logger, loc)
	c.Access = service.NewAccessService()

	return c, nil
}

// openBlobStore selects the binary storage backend named by STORAGE_BACKEND.
func (c *Container) openBlobStore(ctx context.Context) (storage.BlobStore, error) {
	cfg := c.Config.Storage
	var store storage.BlobStore

	switch cfg.Backend {
	case "", config.StorageBackendLocal:
		local, err := storage.NewLocalStorage(cfg.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("prepare local storage: %w", err)
		}
		store = local
	case config.StorageBackendPostgres:
		dbStore := storage.NewDatabaseStorage(c.DB)
		if err := dbStore.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("prepare postgres storage: %w", err)
		}
		store = dbStore
	case config.StorageBackendSQLite:
		blobDB, err := database.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		c.BlobDB = blobDB
		dbStore := storage.NewDatabaseStorage(blobDB)
		if err := dbStore.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("prepare sqlite storage: %w", err)
		}
		store = dbStore
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	backend := cfg.Backend
	if backend == "" {
		backend = config.StorageBackendLocal
	}
	c.Logger.Info("blob storage ready", zap.String("backend", backend))
	return service.NewMeteredStore(store, backend, c.Metrics), nil
}

// Close releases every connection held by the container.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("close redis", zap.Error(err))
		}
	}
	if c.BlobDB != nil {
		if err := c.BlobDB.Close(); err != nil {
			c.Logger.Warn("close blob database", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("close database", zap.Error(err))
		}
	}
}
