package monitoring

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/cache"
)

const storeProbeKey = "health:probe"

// DatabaseCheck pings the database handle.
func DatabaseCheck(db *gorm.DB) Check {
	return Check{Name: "database", Run: func(ctx context.Context) error {
		if db == nil {
			return errors.New("database not configured")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// StoreCheck round-trips a short-lived key through the rate-limit store.
func StoreCheck(store cache.Store) Check {
	return Check{Name: "cache", Run: func(ctx context.Context) error {
		if store == nil {
			return errors.New("cache not configured")
		}
		if err := store.Set(ctx, storeProbeKey, []byte("ok"), 10*time.Second); err != nil {
			return err
		}
		if _, found, err := store.Get(ctx, storeProbeKey); err != nil {
			return err
		} else if !found {
			return errors.New("probe key not readable")
		}
		return nil
	}}
}
