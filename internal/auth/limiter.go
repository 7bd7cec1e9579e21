package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/charlesng35/soiree/internal/cache"
)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// LimiterConfig tunes the login attempt limiter.
type LimiterConfig struct {
	MaxAttempts int
	Window      time.Duration
	KeyPrefix   string
}

// Limiter counts authentication attempts per client identifier in fixed
// windows. State lives in a cache.Store so several instances can share it.
type Limiter struct {
	store  cache.Store
	max    int
	window time.Duration
	prefix string
}

// NewLimiter builds a limiter; zero values fall back to 5 attempts per 15 minutes.
func NewLimiter(store cache.Store, cfg LimiterConfig) *Limiter {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "auth:attempts:"
	}
	return &Limiter{store: store, max: cfg.MaxAttempts, window: cfg.Window, prefix: cfg.KeyPrefix}
}

// Allow records an attempt for clientID and reports whether it is within the
// limit. The window starts at the first attempt and is not extended by later ones.
func (l *Limiter) Allow(ctx context.Context, clientID string) (bool, error) {
	count, _, err := l.store.IncrementWithTTL(ctx, l.key(clientID), l.window)
	if err != nil {
		return false, fmt.Errorf("limiter: increment: %w", err)
	}
	return count <= int64(l.max), nil
}

// Reset clears the record for clientID after a successful authentication.
func (l *Limiter) Reset(ctx context.Context, clientID string) error {
	if err := l.store.Delete(ctx, l.key(clientID)); err != nil {
		return fmt.Errorf("limiter: reset: %w", err)
	}
	return nil
}

func (l *Limiter) key(clientID string) string {
	if clientID == "" {
		clientID = "unknown"
	}
	return l.prefix + clientID
}
