package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/soiree/internal/app"
	iauth "github.com/charlesng35/soiree/internal/auth"
	"github.com/charlesng35/soiree/internal/handlers"
	"github.com/charlesng35/soiree/internal/middleware"
)

func registerAuthRoutes(r *gin.Engine, cfg *app.Config, access *iauth.AccessService, rateStore middleware.RateStore) {
	delay, jitter := cfg.Auth.RedeemTiming()
	handler := handlers.NewAuthHandler(access,
		handlers.SessionCookie{
			Name:   cfg.Auth.Cookie(),
			MaxAge: cfg.Auth.SessionLifetime(),
			Secure: cfg.Server.Production,
		},
		handlers.RedeemTiming{Delay: delay, Jitter: jitter},
	)
	limit := middleware.RateLimit(rateStore, authRateLimit, authRateWindow)

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", limit, handler.Login)
		auth.POST("/logout", handler.Logout)
		auth.GET("/me", middleware.RequireGuest(), handler.Me)
	}

	r.GET("/invite/:code", limit, handler.Redeem)
}
