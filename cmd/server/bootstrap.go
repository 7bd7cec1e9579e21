package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/api"
	"github.com/charlesng35/soiree/internal/app"
	"github.com/charlesng35/soiree/internal/app/maintenance"
	iauth "github.com/charlesng35/soiree/internal/auth"
	"github.com/charlesng35/soiree/internal/cache"
	"github.com/charlesng35/soiree/internal/database"
	"github.com/charlesng35/soiree/internal/middleware"
	"github.com/charlesng35/soiree/internal/monitoring"
	"github.com/charlesng35/soiree/internal/notifications"
	"github.com/charlesng35/soiree/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Store      cache.Store
	Redis      *cache.RedisStore
	Access     *iauth.AccessService
	Dispatcher *notifications.Dispatcher
	Cleaner    *maintenance.Cleaner
	Router     *gin.Engine
}

// bootstrapRuntime initialises the database, key-value store, services and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if admin := cfg.Auth.BootstrapAdmin; admin.Enabled {
		guest, err := database.EnsureAdmin(ctx, stack.DB, admin.Code, admin.Name, admin.MaxInvites)
		if err != nil {
			return nil, err
		}
		log.Info("bootstrap admin ready", zap.String("guest_id", guest.ID), zap.String("name", guest.Name))
	}

	stack.Store, stack.Redis = initialiseStore(ctx, cfg, stack.DB, log)

	limiter := iauth.NewLimiter(stack.Store, cfg.Auth.LimiterConfig())
	stack.Access, err = iauth.NewAccessService(stack.DB, limiter)
	if err != nil {
		return nil, fmt.Errorf("initialise access service: %w", err)
	}

	mailer, err := cfg.Email.NewMailer()
	if err != nil {
		return nil, fmt.Errorf("initialise mailer: %w", err)
	}
	sender, err := cfg.SMS.NewSender()
	if err != nil {
		return nil, fmt.Errorf("initialise sms sender: %w", err)
	}
	stack.Dispatcher = notifications.NewDispatcher(mailer, sender,
		notifications.WithBaseURL(cfg.Server.BaseURL),
		notifications.WithInviterFallback(cfg.Invites.InviterFallbackName),
		notifications.WithEventName(cfg.Invites.EventName),
		notifications.WithFromName(cfg.Email.FromName),
	)

	if cfg.Maintenance.Enabled {
		var purgers []cache.Purger
		if p, ok := stack.Store.(cache.Purger); ok {
			purgers = append(purgers, p)
		}
		stack.Cleaner = maintenance.NewCleaner(purgers, maintenance.WithPurgeSchedule(cfg.Maintenance.CachePurgeSchedule))
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.Router, err = api.NewRouter(stack.DB, cfg, stack.Access, stack.Dispatcher, middleware.NewRateStore(stack.Store), monitoring.StoreCheck(stack.Store))
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// initialiseStore picks the key-value backend for rate-limit state. An
// unreachable Redis falls back to the database-backed store.
func initialiseStore(ctx context.Context, cfg *app.Config, db *gorm.DB, log *zap.Logger) (cache.Store, *cache.RedisStore) {
	switch cfg.Cache.CacheDriver() {
	case "redis":
		redisStore, err := cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig())
		if err != nil {
			log.Warn("redis unavailable; falling back to database-backed store", zap.Error(err))
			return cache.NewDatabaseStore(db), nil
		}
		log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		return redisStore, redisStore
	case "database":
		return cache.NewDatabaseStore(db), nil
	case "memory":
		return cache.NewMemoryStore(), nil
	default:
		log.Warn("unknown cache driver; using in-memory store", zap.String("driver", cfg.Cache.Driver))
		return cache.NewMemoryStore(), nil
	}
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			<-stopCtx.Done()
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if err := database.Close(db); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
