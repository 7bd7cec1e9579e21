package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/app"
	iauth "github.com/charlesng35/soiree/internal/auth"
	"github.com/charlesng35/soiree/internal/handlers"
	"github.com/charlesng35/soiree/internal/middleware"
	"github.com/charlesng35/soiree/internal/monitoring"
	"github.com/charlesng35/soiree/internal/notifications"
	"github.com/charlesng35/soiree/internal/services"
)

// authRateLimit bounds login and magic-link requests per client and route,
// on top of the per-client attempt limiter inside the access service.
const (
	authRateLimit  = 30
	authRateWindow = time.Minute
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
// A nil rateStore keeps request counters in process memory. Extra checks are
// probed by /health next to the database.
func NewRouter(db *gorm.DB, cfg *app.Config, access *iauth.AccessService, dispatcher *notifications.Dispatcher, rateStore middleware.RateStore, checks ...monitoring.Check) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if access == nil {
		return nil, fmt.Errorf("access service must be provided")
	}
	if dispatcher == nil {
		dispatcher = notifications.NewDispatcher(nil, nil)
	}

	svc, err := newServiceSet(db, cfg, dispatcher)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(cfg.Server.Production))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins...))
	if cfg.Server.CSRF.Enabled {
		r.Use(middleware.CSRF(cfg.Server.Production))
	}
	r.Use(middleware.Session(access, cfg.Auth.Cookie()))

	health := monitoring.NewHealthManager(cfg.Server.HealthTimeout, append([]monitoring.Check{monitoring.DatabaseCheck(db)}, checks...)...)
	r.GET("/health", handlers.Health(health))
	r.GET("/health/live", handlers.Liveness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerAuthRoutes(r, cfg, access, rateStore)
	registerGuestRoutes(r.Group("/api", middleware.RequireGuest()), svc)
	registerAdminRoutes(r.Group("/api/admin", middleware.RequireAdmin()), svc)

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

type serviceSet struct {
	guests    *services.GuestService
	invites   *services.InviteService
	catalog   *services.CatalogService
	settings  *services.SettingsService
	dashboard *services.DashboardService
	broadcast *services.BroadcastService
}

func newServiceSet(db *gorm.DB, cfg *app.Config, dispatcher *notifications.Dispatcher) (*serviceSet, error) {
	retries := cfg.Auth.Retries()

	guests, err := services.NewGuestService(db, dispatcher, services.WithGuestCodeRetries(retries))
	if err != nil {
		return nil, err
	}
	invites, err := services.NewInviteService(db, dispatcher, services.WithInviteCodeRetries(retries))
	if err != nil {
		return nil, err
	}
	catalog, err := services.NewCatalogService(db)
	if err != nil {
		return nil, err
	}
	settings, err := services.NewSettingsService(db)
	if err != nil {
		return nil, err
	}
	dashboard, err := services.NewDashboardService(db, catalog, settings, invites)
	if err != nil {
		return nil, err
	}
	broadcast, err := services.NewBroadcastService(db, dispatcher, services.WithBroadcastConcurrency(cfg.SMS.MaxConcurrency))
	if err != nil {
		return nil, err
	}

	return &serviceSet{
		guests:    guests,
		invites:   invites,
		catalog:   catalog,
		settings:  settings,
		dashboard: dashboard,
		broadcast: broadcast,
	}, nil
}
