package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/models"
	apperrors "github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/logger"
	"github.com/charlesng35/soiree/pkg/metrics"
)

var errEmptyCode = apperrors.NewBadRequest("Please enter a code")

// AccessService turns access codes into sessions. The session token is the
// guest's code itself; there is no signature or rotation.
type AccessService struct {
	db      *gorm.DB
	limiter *Limiter
	log     *zap.Logger
}

// NewAccessService constructs the service. A nil limiter uses in-process defaults.
func NewAccessService(db *gorm.DB, limiter *Limiter) (*AccessService, error) {
	if db == nil {
		return nil, errors.New("access service: db is required")
	}
	if limiter == nil {
		limiter = NewLimiter(nil, LimiterConfig{})
	}
	return &AccessService{db: db, limiter: limiter, log: logger.WithModule("auth")}, nil
}

// Authenticate checks code for clientID. Throttled clients are rejected before
// the guest store is consulted. Unknown and malformed codes yield the same
// ErrInvalidCode. A success clears the client's attempt record.
func (s *AccessService) Authenticate(ctx context.Context, code, clientID string) (*models.Guest, error) {
	allowed, err := s.limiter.Allow(ctx, clientID)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		s.log.Error("rate limiter unavailable", zap.String("client", clientID), zap.Error(err))
		return nil, apperrors.ErrInternalServer.WithMessage("Something went wrong").WithInternal(err)
	}
	if !allowed {
		metrics.AuthAttempts.WithLabelValues("throttled").Inc()
		return nil, apperrors.ErrTooManyAttempts
	}

	if strings.TrimSpace(code) == "" {
		metrics.AuthAttempts.WithLabelValues("invalid").Inc()
		return nil, errEmptyCode
	}

	guest, err := s.Lookup(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCode) {
			metrics.AuthAttempts.WithLabelValues("invalid").Inc()
		} else {
			metrics.AuthAttempts.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	if err := s.limiter.Reset(ctx, clientID); err != nil {
		s.log.Warn("failed to reset attempt counter", zap.String("client", clientID), zap.Error(err))
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return guest, nil
}

// Lookup finds a guest by a user-entered code after normalisation.
func (s *AccessService) Lookup(ctx context.Context, code string) (*models.Guest, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, apperrors.ErrInvalidCode
	}

	var guest models.Guest
	err := s.db.WithContext(ensureContext(ctx)).Where("code = ?", normalized).Take(&guest).Error
	switch {
	case err == nil:
		return &guest, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.ErrInvalidCode
	default:
		s.log.Error("code lookup failed", zap.Error(err))
		return nil, apperrors.ErrInternalServer.WithMessage("Something went wrong").WithInternal(err)
	}
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
