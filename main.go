package main

import (
	"fmt"
	"os"
	"path/filepath"

	"toubkal-lib/internal/catalog"
	"toubkal-lib/internal/config"
	"toubkal-lib/internal/database"
	"toubkal-lib/internal/logging"
	"toubkal-lib/internal/router"
	"toubkal-lib/internal/storage"
	"toubkal-lib/internal/util"

	log "github.com/sirupsen/logrus"
)

func main() {
	// load configuration
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logging: %v", err)
	}

	if cfg.Database.Driver == "sqlite" {
		if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
			logger.Fatalf("create data dir: %v", err)
		}
	}
	if err := ensureDir(cfg.Backup.Dir); err != nil {
		logger.Fatalf("create backup dir: %v", err)
	}

	if cfg.JWT.Secret == "" {
		secret, err := util.RandomString(48)
		if err != nil {
			logger.Fatalf("generate jwt secret: %v", err)
		}
		cfg.JWT.Secret = secret
		logger.Warn("jwt.secret not set, using a random one; browsers get new storage scopes after each restart")
	}
	if cfg.Security.EncryptionKey == "" {
		logger.Warn("security.encryption_key not set, backups are encrypted with an empty passphrase")
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	kv := storage.NewGormKV(db)
	store := catalog.NewStore(kv, catalog.WithLogger(logger.WithField("component", "catalog")))

	r := router.SetupRouter(cfg, router.Deps{
		DB:        db,
		KV:        kv,
		Store:     store,
		Logger:    logger,
		Templates: "web/templates/*",
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	logger.WithField("addr", addr).Info("server listening")
	if err := r.Run(addr); err != nil {
		logger.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
