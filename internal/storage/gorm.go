package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toubkal-lib/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormKV persists keys in the kv_entries table.
type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

func (g *GormKV) Get(ctx context.Context, key string) (string, bool, error) {
	var row models.KVEntry
	err := g.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return row.Value, true, nil
}

func (g *GormKV) Set(ctx context.Context, key, value string) error {
	row := models.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (g *GormKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := g.db.WithContext(ctx).Where("key IN ?", keys).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}
