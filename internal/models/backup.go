package models

import "time"

// Backup indexes an encrypted catalog snapshot written to the backup directory.
type Backup struct {
	ID        uint   `gorm:"primaryKey"`
	FileName  string `gorm:"size:128;uniqueIndex;not null"`
	FilePath  string `gorm:"size:512;not null"`
	Size      int64
	Booklets  int // number of booklets in the snapshot
	CreatedAt time.Time
}
