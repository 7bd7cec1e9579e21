package handlers

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/soiree/internal/auth"
	"github.com/charlesng35/soiree/internal/middleware"
	appErrors "github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/response"
)

// SessionCookie describes how the session_code cookie is written.
type SessionCookie struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// RedeemTiming slows magic-link redemption down to a fixed delay plus random jitter.
type RedeemTiming struct {
	Delay  time.Duration
	Jitter time.Duration
}

type AuthHandler struct {
	access *iauth.AccessService
	cookie SessionCookie
	timing RedeemTiming
	sleep  func(context.Context, time.Duration) error
}

func NewAuthHandler(access *iauth.AccessService, cookie SessionCookie, timing RedeemTiming) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "session_code"
	}
	return &AuthHandler{
		access: access,
		cookie: cookie,
		timing: timing,
		sleep:  sleepContext,
	}
}

type loginRequest struct {
	Code string `json:"code" form:"code"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	guest, err := h.access.Authenticate(requestContext(c), req.Code, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSession(c, guest.Code)
	response.Success(c, http.StatusOK, guest)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	guest, ok := middleware.GuestFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, guest)
}

// GET /invite/:code
func (h *AuthHandler) Redeem(c *gin.Context) {
	ctx := requestContext(c)
	if err := h.sleep(ctx, h.redeemDelay()); err != nil {
		return
	}

	guest, err := h.access.Lookup(ctx, c.Param("code"))
	switch {
	case err == nil:
		h.setSession(c, guest.Code)
		c.Redirect(http.StatusFound, "/dashboard")
	case errors.Is(err, appErrors.ErrInvalidCode):
		c.Redirect(http.StatusFound, "/?error=invalid_code")
	default:
		c.Redirect(http.StatusFound, "/?error=unknown")
	}
}

func (h *AuthHandler) redeemDelay() time.Duration {
	delay := h.timing.Delay
	if h.timing.Jitter > 0 {
		delay += rand.N(h.timing.Jitter)
	}
	return delay
}

func (h *AuthHandler) setSession(c *gin.Context, code string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, code, int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
