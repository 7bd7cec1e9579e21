package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Guest{},
		&models.EventSettings{},
		&models.Event{},
		&models.SubEvent{},
		&models.TimelineItem{},
		&models.CacheEntry{},
	)
}

// DefaultEventSettings returns the settings row created on first start.
func DefaultEventSettings() models.EventSettings {
	return models.EventSettings{
		ID:                   models.DefaultEventSettingsID,
		Title:                "Birthday Party",
		Date:                 time.Date(time.Now().Year()+1, time.January, 16, 18, 0, 0, 0, time.UTC),
		IsDietEnabled:        true,
		IsSongRequestEnabled: true,
	}
}

// SeedData creates the singleton event settings row when missing. Existing
// values are never overwritten.
func SeedData(db *gorm.DB) error {
	settings := DefaultEventSettings()
	return db.Where(models.EventSettings{ID: settings.ID}).
		Attrs(settings).
		FirstOrCreate(&models.EventSettings{}).Error
}

// EnsureAdmin upserts an ADMIN guest with the given access code. An existing
// guest holding the code is promoted to ADMIN; its other fields are kept.
func EnsureAdmin(ctx context.Context, db *gorm.DB, code, name string, maxInvites int) (*models.Guest, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errors.New("bootstrap admin: code is required")
	}
	if strings.TrimSpace(name) == "" {
		name = "Host"
	}

	var guest models.Guest
	err := db.WithContext(ctx).Where("code = ?", code).Take(&guest).Error
	switch {
	case err == nil:
		if guest.Role == models.RoleAdmin {
			return &guest, nil
		}
		if err := db.WithContext(ctx).Model(&guest).Update("role", models.RoleAdmin).Error; err != nil {
			return nil, fmt.Errorf("bootstrap admin: promote: %w", err)
		}
		return &guest, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		guest = models.Guest{
			Code:       code,
			Name:       name,
			Role:       models.RoleAdmin,
			MaxInvites: maxInvites,
		}
		if err := db.WithContext(ctx).Create(&guest).Error; err != nil {
			return nil, fmt.Errorf("bootstrap admin: create: %w", err)
		}
		return &guest, nil
	default:
		return nil, fmt.Errorf("bootstrap admin: lookup: %w", err)
	}
}
