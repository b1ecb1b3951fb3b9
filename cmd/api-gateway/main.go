package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/arsip-desa-api/api/swagger"
	"github.com/noah-isme/arsip-desa-api/internal/app"
	"github.com/noah-isme/arsip-desa-api/internal/handler"
	"github.com/noah-isme/arsip-desa-api/internal/middleware"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	"github.com/noah-isme/arsip-desa-api/internal/router"
	"github.com/noah-isme/arsip-desa-api/pkg/cache"
	"github.com/noah-isme/arsip-desa-api/pkg/config"
	"github.com/noah-isme/arsip-desa-api/pkg/logger"
)

// @title Arsip Desa API
// @version 1.0.0
// @description Village document archive: archives, document types, institution profile, users and reports.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.Build(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to build application", zap.Error(err))
	}
	defer container.Close()

	checks := map[string]handler.Pinger{"database": container.DB}
	if container.BlobDB != nil {
		checks["blob_database"] = container.BlobDB
	}
	if container.Redis != nil {
		checks["redis"] = cache.Probe{Client: container.Redis}
	}

	authenticate := middleware.JWT(container.Auth, container.Users, models.UserRole(cfg.Accounts.DefaultRole))
	engine := router.New(router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        container.Metrics,
		Authenticate:   authenticate,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Downloads: func(next gin.HandlerFunc) gin.HandlerFunc {
			return middleware.SignedDownload(container.Archives, next)
		},
	}, router.Handlers{
		Auth:          handler.NewAuthHandler(container.Auth, container.Users),
		Archives:      handler.NewArchiveHandler(container.Archives),
		DocumentTypes: handler.NewDocumentTypeHandler(container.DocumentTypes),
		Settings:      handler.NewSettingsHandler(container.Profile),
		Users:         handler.NewUserHandler(container.Users),
		Dashboard:     handler.NewDashboardHandler(container.Dashboard),
		Reports:       handler.NewReportHandler(container.Reports),
		Access:        handler.NewAccessHandler(container.Access),
		Metrics:       handler.NewMetricsHandler(container.Metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
