package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/models"
	"github.com/charlesng35/soiree/internal/notifications"
	"github.com/charlesng35/soiree/internal/permissions"
	apperrors "github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/logger"
	"github.com/charlesng35/soiree/pkg/metrics"
)

// GuestInput is the admin form for creating and editing guests.
type GuestInput struct {
	Name           string `json:"name" form:"name"`
	Role           string `json:"role" form:"role"`
	MaxInvites     int    `json:"max_invites" form:"maxInvites" validate:"gte=0"`
	PlusOneAllowed bool   `json:"plus_one_allowed" form:"plusOneAllowed"`
	Phone          string `json:"phone" form:"phone" validate:"omitempty,phone"`
	Email          string `json:"email" form:"email" validate:"omitempty,email"`
}

// RSVPInput is the guest's own RSVP form. Plus-one fields are applied only
// when the guest may bring one.
type RSVPInput struct {
	RSVPMain       bool   `json:"rsvp_main" form:"rsvpMain"`
	RSVPDinner     bool   `json:"rsvp_dinner" form:"rsvpDinner"`
	RSVPAfterParty bool   `json:"rsvp_after_party" form:"rsvpAfterParty"`
	Diet           string `json:"diet" form:"diet"`
	SongRequest    string `json:"song_request" form:"songRequest"`
	PlusOneName    string `json:"plus_one_name" form:"plusOneName"`
	PlusOneDiet    string `json:"plus_one_diet" form:"plusOneDiet"`
}

// GuestSummary is a guest with its invitee count, for the admin list.
type GuestSummary struct {
	models.Guest
	InviteeCount int64  `json:"invitee_count"`
	InviterName  string `json:"inviter_name,omitempty"`
}

// GuestOption customises GuestService behaviour.
type GuestOption func(*GuestService)

// WithGuestCodeRetries bounds regeneration attempts on code collision.
func WithGuestCodeRetries(n int) GuestOption {
	return func(s *GuestService) {
		if n > 0 {
			s.codes.retries = n
		}
	}
}

// WithGuestCodeGenerator replaces the access code source, primarily for testing.
func WithGuestCodeGenerator(fn func() (string, error)) GuestOption {
	return func(s *GuestService) {
		if fn != nil {
			s.codes.generate = fn
		}
	}
}

// GuestService implements the guest directory: admin management, RSVP,
// statistics and CSV import/export.
type GuestService struct {
	db         *gorm.DB
	dispatcher *notifications.Dispatcher
	codes      codeIssuer
	log        *zap.Logger
}

// NewGuestService constructs a GuestService.
func NewGuestService(db *gorm.DB, dispatcher *notifications.Dispatcher, opts ...GuestOption) (*GuestService, error) {
	if db == nil {
		return nil, errors.New("guest service: db is required")
	}
	if dispatcher == nil {
		dispatcher = notifications.NewDispatcher(nil, nil)
	}

	svc := &GuestService{
		db:         db,
		dispatcher: dispatcher,
		codes:      newCodeIssuer(),
		log:        logger.WithModule("guests"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// GenerateInvite creates a guest on behalf of an admin. The admin becomes
// the inviter. No notification is sent.
func (s *GuestService) GenerateInvite(ctx context.Context, admin *models.Guest, input GuestInput) (*models.Guest, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("Name required")
	}
	if input.MaxInvites < 0 {
		return nil, apperrors.NewBadRequest("Max invites cannot be negative")
	}

	guest := models.Guest{
		Name:           name,
		Role:           normaliseRole(input.Role),
		MaxInvites:     input.MaxInvites,
		PlusOneAllowed: input.PlusOneAllowed,
		Phone:          strings.TrimSpace(input.Phone),
		Email:          strings.TrimSpace(input.Email),
		InvitedByID:    &admin.ID,
	}
	if err := s.codes.create(ctx, s.db, &guest); err != nil {
		s.log.Error("admin create guest failed", zap.Error(err))
		return nil, apperrors.Failed("create invite", err)
	}
	metrics.InvitesCreated.WithLabelValues("admin").Inc()
	return &guest, nil
}

// UpdateGuest lets an admin overwrite any guest's profile fields.
func (s *GuestService) UpdateGuest(ctx context.Context, admin *models.Guest, guestID string, input GuestInput) (*models.Guest, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	guestID = strings.TrimSpace(guestID)
	name := strings.TrimSpace(input.Name)
	if guestID == "" || name == "" {
		return nil, apperrors.NewBadRequest("Name and ID required")
	}
	if input.MaxInvites < 0 {
		return nil, apperrors.NewBadRequest("Max invites cannot be negative")
	}

	var guest models.Guest
	if err := s.db.WithContext(ctx).Take(&guest, "id = ?", guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Guest not found")
		}
		return nil, failedUnlessApp("update guest", err, s.log)
	}

	updates := map[string]any{
		"name":             name,
		"role":             normaliseRole(input.Role),
		"max_invites":      input.MaxInvites,
		"plus_one_allowed": input.PlusOneAllowed,
		"phone":            strings.TrimSpace(input.Phone),
		"email":            strings.TrimSpace(input.Email),
	}
	if err := s.db.WithContext(ctx).Model(&guest).Updates(updates).Error; err != nil {
		return nil, failedUnlessApp("update guest", err, s.log)
	}
	return &guest, nil
}

// DeleteGuest removes any guest. Guests it invited are kept with no inviter.
func (s *GuestService) DeleteGuest(ctx context.Context, admin *models.Guest, guestID string) error {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return err
	}
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return apperrors.NewBadRequest("Guest ID required")
	}
	if err := deleteGuestTx(ctx, s.db, guestID); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		s.log.Error("delete guest failed", zap.String("guest_id", guestID), zap.Error(err))
		return apperrors.Failed("delete guest", err)
	}
	return nil
}

// ListGuests returns every guest with its invitee count, newest first.
func (s *GuestService) ListGuests(ctx context.Context, admin *models.Guest) ([]GuestSummary, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	var guests []models.Guest
	if err := s.db.WithContext(ctx).Preload("InvitedBy").Order("created_at DESC").Find(&guests).Error; err != nil {
		return nil, failedUnlessApp("load guests", err, s.log)
	}

	type countRow struct {
		InvitedByID string
		Total       int64
	}
	var rows []countRow
	if err := s.db.WithContext(ctx).Model(&models.Guest{}).
		Select("invited_by_id, COUNT(*) AS total").
		Where("invited_by_id IS NOT NULL").
		Group("invited_by_id").
		Scan(&rows).Error; err != nil {
		return nil, failedUnlessApp("load guests", err, s.log)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.InvitedByID] = row.Total
	}

	out := make([]GuestSummary, 0, len(guests))
	for _, g := range guests {
		summary := GuestSummary{Guest: g, InviteeCount: counts[g.ID]}
		if g.InvitedBy != nil {
			summary.InviterName = g.InvitedBy.Name
		}
		summary.Guest.InvitedBy = nil
		out = append(out, summary)
	}
	return out, nil
}

// UpdateRSVP records the caller's own RSVP. It is rejected while RSVP is
// locked. Diet and song request are only written when visible to the
// guest's role; plus-one fields only when a plus-one is allowed.
func (s *GuestService) UpdateRSVP(ctx context.Context, caller *models.Guest, input RSVPInput) (*models.Guest, error) {
	ctx = ensureContext(ctx)
	if err := requireGuest(caller); err != nil {
		return nil, err
	}

	var settings models.EventSettings
	err := s.db.WithContext(ctx).Take(&settings, "id = ?", models.DefaultEventSettingsID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, failedUnlessApp("update RSVP", err, s.log)
	}
	if settings.IsRSVPLocked {
		return nil, apperrors.ErrRSVPLocked
	}

	var guest models.Guest
	if err := s.db.WithContext(ctx).Take(&guest, "id = ?", caller.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, failedUnlessApp("update RSVP", err, s.log)
	}

	updates := map[string]any{
		"rsvp_main":        input.RSVPMain,
		"rsvp_dinner":      input.RSVPDinner,
		"rsvp_after_party": input.RSVPAfterParty,
	}
	if permissions.DietFeature(&settings).Visible(guest.Role) {
		updates["diet"] = strings.TrimSpace(input.Diet)
	}
	if permissions.SongFeature(&settings).Visible(guest.Role) {
		updates["song_request"] = strings.TrimSpace(input.SongRequest)
	}
	if guest.PlusOneAllowed {
		updates["plus_one_name"] = strings.TrimSpace(input.PlusOneName)
		updates["plus_one_diet"] = strings.TrimSpace(input.PlusOneDiet)
	}

	if err := s.db.WithContext(ctx).Model(&guest).Updates(updates).Error; err != nil {
		return nil, failedUnlessApp("update RSVP", err, s.log)
	}

	s.dispatcher.SendRSVPConfirmation(ctx, &guest)
	return &guest, nil
}
