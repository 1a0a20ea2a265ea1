package models

import "time"

// KVEntry is one key/value pair. Client scopes are folded into the key as a
// prefix, see storage.Prefixed.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (KVEntry) TableName() string { return "kv_entries" }
