package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/soiree/internal/models"
	"github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/logger"
	"github.com/charlesng35/soiree/pkg/response"
)

// CtxGuestKey holds the *models.Guest resolved from the session cookie.
const CtxGuestKey = "sessionGuest"

// SessionResolver maps a session token to a guest, returning (nil, nil) when
// nobody matches.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Guest, error)
}

// Session loads the guest named by the session cookie into the context. It
// never rejects a request; use RequireGuest or RequireAdmin for that.
func Session(resolver SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		guest, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.WithModule("http").Warn("session lookup failed", zap.Error(err))
		}
		if guest != nil {
			c.Set(CtxGuestKey, guest)
		}
		c.Next()
	}
}

// GuestFromContext returns the session guest, if any.
func GuestFromContext(c *gin.Context) (*models.Guest, bool) {
	v, ok := c.Get(CtxGuestKey)
	if !ok {
		return nil, false
	}
	guest, ok := v.(*models.Guest)
	return guest, ok && guest != nil
}

// RequireGuest rejects requests without a session.
func RequireGuest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GuestFromContext(c); !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests unless the session guest holds ADMIN. A
// wrong role is reported as Unauthorized, like a missing session.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		guest, ok := GuestFromContext(c)
		if !ok || !guest.IsAdmin() {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}
