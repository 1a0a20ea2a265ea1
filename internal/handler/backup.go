package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"toubkal-lib/internal/catalog"
	"toubkal-lib/internal/i18n"
	"toubkal-lib/internal/middleware"
	"toubkal-lib/internal/models"
	"toubkal-lib/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BackupHandler writes encrypted snapshots of the catalog document and
// restores them.
type BackupHandler struct {
	DB         *gorm.DB
	Store      *catalog.Store
	EncryptKey string
	BackupDir  string
	Log        log.FieldLogger
}

func NewBackupHandler(db *gorm.DB, store *catalog.Store, encryptKey, backupDir string, logger log.FieldLogger) *BackupHandler {
	return &BackupHandler{
		DB:         db,
		Store:      store,
		EncryptKey: encryptKey,
		BackupDir:  backupDir,
		Log:        logger,
	}
}

// backupData is the plaintext inside a backup file.
type backupData struct {
	Version int              `json:"version"`
	Created time.Time        `json:"created"`
	Catalog catalog.Settings `json:"catalog"`
}

const backupVersion = 1

func backupItem(b *models.Backup) gin.H {
	return gin.H{
		"id":         b.ID,
		"file_name":  b.FileName,
		"size":       b.Size,
		"booklets":   b.Booklets,
		"created_at": b.CreatedAt,
	}
}

func (h *BackupHandler) fail(c *gin.Context, err error, msg string) {
	h.Log.WithError(err).Error(msg)
	util.Error(c, http.StatusInternalServerError, util.CodeServerErr, middleware.Lang(c).T(i18n.ServerError))
}

// CreateBackup snapshots the current catalog document.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	ctx := c.Request.Context()
	doc, err := h.Store.Load(ctx)
	if err != nil {
		h.fail(c, err, "load catalog")
		return
	}

	data := backupData{
		Version: backupVersion,
		Created: time.Now(),
		Catalog: doc,
	}
	raw, err := json.MarshalIndent(&data, "", "  ")
	if err != nil {
		h.fail(c, err, "encode backup")
		return
	}

	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		h.fail(c, err, "encrypt backup")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		h.fail(c, err, "create backup dir")
		return
	}

	fileName := fmt.Sprintf("catalog-%s-%s.bin", data.Created.Format("20060102-150405"), uuid.NewString())
	filePath := filepath.Join(h.BackupDir, fileName)

	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		h.fail(c, err, "write backup")
		return
	}

	backup := models.Backup{
		FileName: fileName,
		FilePath: filePath,
		Size:     int64(len(enc)),
		Booklets: len(doc.Booklets),
	}
	if err := h.DB.WithContext(ctx).Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		h.fail(c, err, "index backup")
		return
	}

	h.Log.WithField("file", fileName).Info("catalog backup created")
	util.Success(c, util.Response{"backup": backupItem(&backup)})
}

// ListBackups lists snapshots, newest first.
func (h *BackupHandler) ListBackups(c *gin.Context) {
	var list []models.Backup
	if err := h.DB.WithContext(c.Request.Context()).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		h.fail(c, err, "list backups")
		return
	}

	items := make([]gin.H, 0, len(list))
	for i := range list {
		items = append(items, backupItem(&list[i]))
	}
	util.Success(c, util.Response{"items": items})
}

// find loads the backup named by the :id path parameter, answering the
// request itself when it cannot.
func (h *BackupHandler) find(c *gin.Context) (*models.Backup, bool) {
	var backup models.Backup
	err := h.DB.WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).First(&backup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		return nil, false
	}
	if err != nil {
		h.fail(c, err, "find backup")
		return nil, false
	}
	return &backup, true
}

func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", backup.FileName))
	c.File(backup.FilePath)
}

// DeleteBackup removes the file first, then the index row.
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}

	if err := os.Remove(backup.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.Log.WithError(err).WithField("file", backup.FileName).Warn("remove backup file")
	}
	if err := h.DB.WithContext(c.Request.Context()).Delete(backup).Error; err != nil {
		h.fail(c, err, "delete backup")
		return
	}
	util.Success(c, util.Response{"message": middleware.Lang(c).T(i18n.Deleted)})
}

// RestoreBackup replaces the live catalog document with a snapshot.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}

	encData, err := os.ReadFile(backup.FilePath)
	if err != nil {
		h.fail(c, err, "read backup")
		return
	}

	raw, err := util.DecryptAES(h.EncryptKey, encData)
	if err != nil {
		h.Log.WithError(err).WithField("file", backup.FileName).Warn("backup does not decrypt")
		util.Error(c, http.StatusUnprocessableEntity, util.CodeInvalidParam, "backup cannot be decrypted with the configured key")
		return
	}

	var data backupData
	if err := json.Unmarshal(raw, &data); err != nil || data.Version != backupVersion {
		util.Error(c, http.StatusUnprocessableEntity, util.CodeInvalidParam, "backup format not recognized")
		return
	}

	if err := h.Store.Replace(c.Request.Context(), data.Catalog); err != nil {
		h.fail(c, err, "restore catalog")
		return
	}

	h.Log.WithField("file", backup.FileName).Info("catalog restored from backup")
	util.Success(c, util.Response{
		"booklets": len(data.Catalog.Booklets),
		"catalog":  data.Catalog,
	})
}
