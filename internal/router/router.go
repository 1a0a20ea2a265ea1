package router

import (
	"sync"
	"time"

	"toubkal-lib/internal/catalog"
	"toubkal-lib/internal/config"
	"toubkal-lib/internal/guard"
	"toubkal-lib/internal/handler"
	"toubkal-lib/internal/i18n"
	"toubkal-lib/internal/middleware"
	"toubkal-lib/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the long-lived objects the routes share.
type Deps struct {
	DB     *gorm.DB
	KV     storage.KV
	Store  *catalog.Store
	Logger log.FieldLogger
	// Clock overrides time.Now for the admin guard.
	Clock func() time.Time
	// Templates is the html template glob; empty skips the page routes.
	Templates string
}

// SetupRouter configures the Gin engine, templates and API routes.
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.ClientScope(middleware.ClientOptions{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.ExpireHours) * time.Hour,
			Secure: cfg.Server.Mode == gin.ReleaseMode,
		}, logger),
		middleware.RequestLogger(logger),
		middleware.Language(i18n.Lang(cfg.App.DefaultLanguage)),
	)

	if deps.Templates != "" {
		r.Static("/static", "./web/static")
		r.LoadHTMLGlob(deps.Templates)
		r.GET("/", handler.IndexPage)
		r.GET("/admin", handler.AdminPage)
	}

	// one lock for every scope: guards are built per request
	var guardMu sync.Mutex
	newGuard := func(kv storage.KV) *guard.Guard {
		opts := []guard.Option{guard.WithLock(&guardMu), guard.WithLogger(logger)}
		if deps.Clock != nil {
			opts = append(opts, guard.WithClock(deps.Clock))
		}
		return guard.New(kv, cfg.Admin.Password, opts...)
	}

	// ====== API ======
	api := r.Group("/api")

	catalogHandler := handler.NewCatalogHandler(deps.Store, cfg.Contact, logger)
	api.GET("/catalog", catalogHandler.Catalog)
	api.GET("/booklets/:id/order", catalogHandler.OrderLink)
	api.GET("/contact", catalogHandler.ContactLinks)

	authHandler := handler.NewAuthHandler(deps.KV, newGuard, logger)
	admin := api.Group("/admin")
	admin.GET("/status", authHandler.Status)
	admin.POST("/login", authHandler.Login)
	admin.POST("/logout", authHandler.Logout)

	protected := admin.Group("")
	protected.Use(middleware.RequireAdmin(deps.KV, newGuard, logger))

	protected.GET("/catalog", catalogHandler.AdminCatalog)
	protected.POST("/booklets", catalogHandler.CreateBooklet)
	protected.PUT("/booklets/:id", catalogHandler.UpdateBooklet)
	protected.DELETE("/booklets/:id", catalogHandler.DeleteBooklet)

	protected.POST("/faculties", catalogHandler.AddTaxonomy(catalog.Faculty))
	protected.DELETE("/faculties/:name", catalogHandler.RemoveTaxonomy(catalog.Faculty))
	protected.POST("/years", catalogHandler.AddTaxonomy(catalog.Year))
	protected.DELETE("/years/:name", catalogHandler.RemoveTaxonomy(catalog.Year))

	exportHandler := handler.NewExportHandler(deps.Store, logger)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	backupHandler := handler.NewBackupHandler(deps.DB, deps.Store, cfg.Security.EncryptionKey, cfg.Backup.Dir, logger)
	protected.POST("/backups", backupHandler.CreateBackup)
	protected.GET("/backups", backupHandler.ListBackups)
	protected.GET("/backups/:id/download", backupHandler.DownloadBackup)
	protected.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", backupHandler.DeleteBackup)

	return r
}
