package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/database"
	"github.com/charlesng35/soiree/internal/models"
)

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	autoMigrate bool
	seedData    bool
}

// WithAutoMigrate enables automatic schema migration after opening the test database.
func WithAutoMigrate() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
	}
}

// WithSeedData ensures migrations are applied and the default settings row inserted.
func WithSeedData() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
		cfg.seedData = true
	}
}

// MustOpenTestDB opens a private in-memory SQLite database for tests.
// The returned connection is automatically closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := database.Open(database.Config{Driver: "sqlite"})
	require.NoError(t, err)

	if cfg.seedData {
		require.NoError(t, database.AutoMigrateAndSeed(db))
	} else if cfg.autoMigrate {
		require.NoError(t, database.AutoMigrate(db))
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return db
}

var codeSeq atomic.Int64

// MustCreateGuest persists guest, filling in a unique code and a name when empty.
func MustCreateGuest(t *testing.T, db *gorm.DB, guest models.Guest) *models.Guest {
	t.Helper()

	if guest.Code == "" {
		guest.Code = fmt.Sprintf("T%05d", codeSeq.Add(1))
	}
	if guest.Name == "" {
		guest.Name = "Guest " + guest.Code
	}
	if guest.Role == "" {
		guest.Role = models.RoleGuest
	}
	require.NoError(t, db.Create(&guest).Error)
	return &guest
}
