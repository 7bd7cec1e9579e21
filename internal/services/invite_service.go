package services

import (
	"context"
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/soiree/internal/models"
	"github.com/charlesng35/soiree/internal/notifications"
	apperrors "github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/logger"
	"github.com/charlesng35/soiree/pkg/metrics"
)

const defaultQRSize = 256

// InviteInput carries the contact details supplied for a new invitee.
type InviteInput struct {
	Name  string `json:"name" form:"name"`
	Phone string `json:"phone" form:"phone" validate:"omitempty,phone"`
	Email string `json:"email" form:"email" validate:"omitempty,email"`
}

// InviteResult is returned from InviteFriend.
type InviteResult struct {
	Guest    *models.Guest          `json:"guest"`
	Code     string                 `json:"code"`
	Link     string                 `json:"link"`
	Delivery notifications.Delivery `json:"delivery"`
}

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteCodeRetries bounds regeneration attempts on code collision.
func WithInviteCodeRetries(n int) InviteOption {
	return func(s *InviteService) {
		if n > 0 {
			s.codes.retries = n
		}
	}
}

// WithInviteCodeGenerator replaces the access code source, primarily for testing.
func WithInviteCodeGenerator(fn func() (string, error)) InviteOption {
	return func(s *InviteService) {
		if fn != nil {
			s.codes.generate = fn
		}
	}
}

// InviteService lets guests with a quota invite others and manage the guests
// they invited.
type InviteService struct {
	db         *gorm.DB
	dispatcher *notifications.Dispatcher
	codes      codeIssuer
	log        *zap.Logger
}

// NewInviteService constructs an InviteService with the provided dependencies.
func NewInviteService(db *gorm.DB, dispatcher *notifications.Dispatcher, opts ...InviteOption) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}
	if dispatcher == nil {
		dispatcher = notifications.NewDispatcher(nil, nil)
	}

	service := &InviteService{
		db:         db,
		dispatcher: dispatcher,
		codes:      newCodeIssuer(),
		log:        logger.WithModule("invites"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// InviteFriend creates a GUEST invited by caller, then notifies the invitee.
// The caller row is locked while the quota is re-counted so concurrent
// invites from the same caller cannot overrun it.
func (s *InviteService) InviteFriend(ctx context.Context, caller *models.Guest, input InviteInput) (*InviteResult, error) {
	ctx = ensureContext(ctx)
	if err := requireGuest(caller); err != nil {
		return nil, err
	}
	if caller.MaxInvites <= 0 {
		return nil, apperrors.ErrNoInvites
	}

	var (
		invitee models.Guest
		inviter models.Guest
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&inviter, "id = ?", caller.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUnauthorized
			}
			return err
		}
		if inviter.MaxInvites <= 0 {
			return apperrors.ErrNoInvites
		}

		var count int64
		if err := tx.Model(&models.Guest{}).Where("invited_by_id = ?", inviter.ID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(inviter.MaxInvites) {
			return apperrors.ErrQuotaExceeded
		}

		name := strings.TrimSpace(input.Name)
		if name == "" {
			return apperrors.NewBadRequest("Name is required")
		}

		invitee = models.Guest{
			Name:        name,
			Role:        models.RoleGuest,
			Phone:       strings.TrimSpace(input.Phone),
			Email:       strings.TrimSpace(input.Email),
			InvitedByID: &inviter.ID,
		}
		return s.codes.create(ctx, tx, &invitee)
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		s.log.Error("create invite failed", zap.String("inviter_id", caller.ID), zap.Error(err))
		return nil, apperrors.Failed("create invite", err)
	}

	metrics.InvitesCreated.WithLabelValues("invite").Inc()
	delivery := s.dispatcher.SendInvite(ctx, &invitee, &inviter)

	return &InviteResult{
		Guest:    &invitee,
		Code:     invitee.Code,
		Link:     s.dispatcher.MagicLink(invitee.Code),
		Delivery: delivery,
	}, nil
}

// ListInvitees returns the guests invited by caller, oldest first.
func (s *InviteService) ListInvitees(ctx context.Context, caller *models.Guest) ([]models.Guest, error) {
	if err := requireGuest(caller); err != nil {
		return nil, err
	}
	var invitees []models.Guest
	if err := s.db.WithContext(ensureContext(ctx)).
		Where("invited_by_id = ?", caller.ID).
		Order("created_at ASC").
		Find(&invitees).Error; err != nil {
		return nil, apperrors.Failed("load invites", err)
	}
	return invitees, nil
}

// loadOwned fetches guestID and checks that caller invited it.
func (s *InviteService) loadOwned(ctx context.Context, caller *models.Guest, guestID string, ownershipMsg string) (*models.Guest, error) {
	if err := requireGuest(caller); err != nil {
		return nil, err
	}
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return nil, apperrors.NewBadRequest("Missing required fields")
	}

	var target models.Guest
	if err := s.db.WithContext(ctx).Take(&target, "id = ?", guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Guest not found")
		}
		return nil, err
	}
	if !target.InvitedByGuest(caller.ID) {
		return nil, apperrors.ErrOwnership.WithMessage(ownershipMsg)
	}
	return &target, nil
}

// UpdateInvite changes the name, phone and email of a guest caller invited.
func (s *InviteService) UpdateInvite(ctx context.Context, caller *models.Guest, guestID string, input InviteInput) (*models.Guest, error) {
	ctx = ensureContext(ctx)
	if err := requireGuest(caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(guestID) == "" || strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewBadRequest("Missing required fields")
	}

	target, err := s.loadOwned(ctx, caller, guestID, "You can only edit guests you invited")
	if err != nil {
		return nil, failedUnlessApp("update invite", err, s.log)
	}

	updates := map[string]any{
		"name":  strings.TrimSpace(input.Name),
		"phone": strings.TrimSpace(input.Phone),
		"email": strings.TrimSpace(input.Email),
	}
	if err := s.db.WithContext(ctx).Model(target).Updates(updates).Error; err != nil {
		return nil, failedUnlessApp("update invite", err, s.log)
	}
	return target, nil
}

// DeleteInvite removes a guest caller invited. The quota slot becomes free.
func (s *InviteService) DeleteInvite(ctx context.Context, caller *models.Guest, guestID string) error {
	ctx = ensureContext(ctx)
	target, err := s.loadOwned(ctx, caller, guestID, "You can only delete guests you invited")
	if err != nil {
		return failedUnlessApp("delete invite", err, s.log)
	}
	if err := deleteGuestTx(ctx, s.db, target.ID); err != nil {
		return failedUnlessApp("delete invite", err, s.log)
	}
	return nil
}

// InviteQR renders the magic link of guestID as a PNG QR code. Admins may
// render any guest; others only guests they invited.
func (s *InviteService) InviteQR(ctx context.Context, caller *models.Guest, guestID string, size int) ([]byte, error) {
	ctx = ensureContext(ctx)
	if size <= 0 || size > 1024 {
		size = defaultQRSize
	}

	var (
		target *models.Guest
		err    error
	)
	if caller.IsAdmin() {
		var g models.Guest
		if err = s.db.WithContext(ctx).Take(&g, "id = ?", strings.TrimSpace(guestID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrNotFound.WithMessage("Guest not found")
			}
			return nil, failedUnlessApp("render QR code", err, s.log)
		}
		target = &g
	} else {
		target, err = s.loadOwned(ctx, caller, guestID, "You can only manage guests you invited")
		if err != nil {
			return nil, failedUnlessApp("render QR code", err, s.log)
		}
	}

	png, err := qrcode.Encode(s.dispatcher.MagicLink(target.Code), qrcode.Medium, size)
	if err != nil {
		return nil, failedUnlessApp("render QR code", err, s.log)
	}
	return png, nil
}

// deleteGuestTx removes a guest and detaches anyone it invited.
func deleteGuestTx(ctx context.Context, db *gorm.DB, guestID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Guest{}).
			Where("invited_by_id = ?", guestID).
			Update("invited_by_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Guest{}, "id = ?", guestID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound.WithMessage("Guest not found")
		}
		return nil
	})
}

// failedUnlessApp passes AppErrors through and downgrades anything else to a
// generic "Failed to <action>" after logging it.
func failedUnlessApp(action string, err error, log *zap.Logger) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	log.Error(action+" failed", zap.Error(err))
	return apperrors.Failed(action, err)
}
