package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/models"
)

// Resolve maps a session token to its guest. It returns (nil, nil) when the
// token is empty or matches nobody. The token is compared verbatim; it was
// written by Authenticate in normalised form.
func (s *AccessService) Resolve(ctx context.Context, token string) (*models.Guest, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	var guest models.Guest
	err := s.db.WithContext(ensureContext(ctx)).Where("code = ?", token).Take(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &guest, nil
}
