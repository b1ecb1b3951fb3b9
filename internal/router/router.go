package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/arsip-desa-api/internal/handler"
	"github.com/noah-isme/arsip-desa-api/internal/middleware"
	"github.com/noah-isme/arsip-desa-api/internal/service"
	"github.com/noah-isme/arsip-desa-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/arsip-desa-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/arsip-desa-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth          *handler.AuthHandler
	Archives      *handler.ArchiveHandler
	DocumentTypes *handler.DocumentTypeHandler
	Settings      *handler.SettingsHandler
	Users         *handler.UserHandler
	Dashboard     *handler.DashboardHandler
	Reports       *handler.ReportHandler
	Access        *handler.AccessHandler
	Metrics       *handler.MetricsHandler
}

// Options configures the engine.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	// Authenticate validates the bearer token and resolves the caller role.
	Authenticate gin.HandlerFunc
	// Downloads wraps Authenticate so signed archive links work without a session.
	Downloads func(next gin.HandlerFunc) gin.HandlerFunc
	// MaxBodyBytes caps request bodies; zero leaves them uncapped.
	MaxBodyBytes int64
}

// New builds the gin engine with the shared middleware chain and every route.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api"
	}
	if opts.Downloads == nil {
		opts.Downloads = func(next gin.HandlerFunc) gin.HandlerFunc { return next }
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.AuditContext())
	r.Use(middleware.BodyLimit(opts.MaxBodyBytes))

	RegisterProbes(r, h.Metrics)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	RegisterPublic(api, h, opts.Downloads(opts.Authenticate))

	secured := api.Group("", opts.Authenticate)
	RegisterSecured(secured, h)

	return r
}

// RegisterProbes mounts liveness, readiness and metrics outside the API prefix.
func RegisterProbes(r *gin.Engine, h *handler.MetricsHandler) {
	if h == nil {
		return
	}
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
}

// RegisterPublic mounts routes reachable without a session: login, the profile
// shown on the sign-in page, and archive downloads guarded by downloadGate.
func RegisterPublic(g *gin.RouterGroup, h Handlers, downloadGate gin.HandlerFunc) {
	if h.Auth != nil {
		g.POST("/auth/login", h.Auth.Login)
	}
	if h.Settings != nil {
		g.GET("/settings", h.Settings.Get)
		g.GET("/settings/logo", h.Settings.Logo)
		g.GET("/settings/documents/:docId", h.Settings.Document)
	}
	if h.Archives != nil && downloadGate != nil {
		g.GET("/archives/:id/download", downloadGate, h.Archives.Download)
	}
}

// RegisterSecured mounts routes that need an authenticated caller. Write and
// admin routes also check the resolved role.
func RegisterSecured(g *gin.RouterGroup, h Handlers) {
	if h.Auth != nil {
		g.GET("/auth/me", h.Auth.Me)
		g.POST("/auth/change-password", h.Auth.ChangePassword)
	}

	if h.Dashboard != nil {
		g.GET("/dashboard", h.Dashboard.Stats)
	}

	if h.Access != nil {
		g.GET("/access/pages", h.Access.Pages)
		g.GET("/access/check", h.Access.Check)
	}

	if h.Archives != nil {
		archives := g.Group("/archives")
		archiveWriters := middleware.RequireRoles(service.ArchiveWriters...)
		archives.GET("", h.Archives.List)
		archives.GET("/:id", h.Archives.Get)
		archives.GET("/:id/download-url", h.Archives.DownloadURL)
		archives.POST("", archiveWriters, h.Archives.Create)
		archives.PUT("/:id", archiveWriters, h.Archives.Update)
		archives.DELETE("/:id", archiveWriters, h.Archives.Delete)
	}

	if h.DocumentTypes != nil {
		types := g.Group("/document-types")
		typeWriters := middleware.RequireRoles(service.DocumentTypeWriters...)
		types.GET("", h.DocumentTypes.List)
		types.GET("/:id", h.DocumentTypes.Get)
		types.POST("", typeWriters, h.DocumentTypes.Create)
		types.PUT("/:id", typeWriters, h.DocumentTypes.Update)
		types.DELETE("/:id", typeWriters, h.DocumentTypes.Delete)
	}

	if h.Settings != nil {
		g.POST("/settings", middleware.RequireRoles(service.ProfileEditors...), h.Settings.Save)
	}

	if h.Users != nil {
		users := g.Group("/users", middleware.RequireRoles(service.UserManagers...))
		users.GET("", h.Users.List)
		users.POST("", h.Users.Create)
		users.GET("/:uid", h.Users.Get)
		users.POST("/:uid", h.Users.Upsert)
		users.PUT("/:uid/role", h.Users.SetRole)
		users.DELETE("/:uid", h.Users.Delete)
	}

	if h.Reports != nil {
		reports := g.Group("/reports", middleware.RequireRoles(service.ReportViewers...))
		reports.GET("/archives", h.Reports.Archives)
		reports.GET("/archives/export", h.Reports.Export)
		reports.GET("/archives/chart", h.Reports.Chart)
	}
}
