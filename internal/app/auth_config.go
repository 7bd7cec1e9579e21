package app

import (
	"time"

	"github.com/charlesng35/soiree/internal/auth"
)

const (
	defaultCookieName   = "session_code"
	defaultSessionTTL   = 30 * 24 * time.Hour
	defaultCodeRetries  = 5
	defaultRedeemDelay  = time.Second
	defaultRedeemJitter = 500 * time.Millisecond
)

// LimiterConfig converts AuthConfig into login limiter parameters.
func (c AuthConfig) LimiterConfig() auth.LimiterConfig {
	return auth.LimiterConfig{
		MaxAttempts: c.LoginMaxAttempts,
		Window:      c.LoginWindow,
	}
}

// Cookie returns the session cookie name, falling back to session_code.
func (c AuthConfig) Cookie() string {
	if c.CookieName == "" {
		return defaultCookieName
	}
	return c.CookieName
}

// SessionLifetime returns the cookie max-age.
func (c AuthConfig) SessionLifetime() time.Duration {
	if c.SessionTTL <= 0 {
		return defaultSessionTTL
	}
	return c.SessionTTL
}

// Retries bounds regeneration attempts on code collision.
func (c AuthConfig) Retries() int {
	if c.CodeRetries <= 0 {
		return defaultCodeRetries
	}
	return c.CodeRetries
}

// RedeemTiming returns the fixed delay and the random jitter applied to
// magic-link redemption. Negative values are treated as unset.
func (c AuthConfig) RedeemTiming() (time.Duration, time.Duration) {
	delay, jitter := c.RedeemDelay, c.RedeemJitter
	if delay < 0 {
		delay = defaultRedeemDelay
	}
	if jitter < 0 {
		jitter = defaultRedeemJitter
	}
	return delay, jitter
}
