package models

import "time"

// CacheEntry backs the database key-value store used when Redis is disabled.
// Rows past ExpiresAt are ignored on read and purged by maintenance.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     []byte    `gorm:"type:blob"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
