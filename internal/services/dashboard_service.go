package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/models"
	"github.com/charlesng35/soiree/internal/permissions"
	apperrors "github.com/charlesng35/soiree/pkg/errors"
)

// Dashboard is everything a guest sees after signing in.
type Dashboard struct {
	Guest            *models.Guest         `json:"guest"`
	Settings         *models.EventSettings `json:"settings"`
	Events           []models.Event        `json:"events"`
	Timeline         []models.TimelineItem `json:"timeline"`
	Invitees         []models.Guest        `json:"invitees"`
	InvitesRemaining int                   `json:"invites_remaining"`
	ShowDiet         bool                  `json:"show_diet"`
	ShowSongRequest  bool                  `json:"show_song_request"`
}

// DashboardService assembles the role-filtered guest view.
type DashboardService struct {
	db       *gorm.DB
	catalog  *CatalogService
	settings *SettingsService
	invites  *InviteService
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(db *gorm.DB, catalog *CatalogService, settings *SettingsService, invites *InviteService) (*DashboardService, error) {
	if db == nil || catalog == nil || settings == nil || invites == nil {
		return nil, errors.New("dashboard service: dependencies are required")
	}
	return &DashboardService{db: db, catalog: catalog, settings: settings, invites: invites}, nil
}

// Load builds the dashboard for caller from fresh store reads.
func (s *DashboardService) Load(ctx context.Context, caller *models.Guest) (*Dashboard, error) {
	ctx = ensureContext(ctx)
	if err := requireGuest(caller); err != nil {
		return nil, err
	}

	var guest models.Guest
	if err := s.db.WithContext(ctx).Take(&guest, "id = ?", caller.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, apperrors.Failed("load dashboard", err)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.catalog.VisibleEvents(ctx, guest.Role)
	if err != nil {
		return nil, err
	}
	timeline, err := s.catalog.VisibleTimeline(ctx, guest.Role)
	if err != nil {
		return nil, err
	}
	invitees, err := s.invites.ListInvitees(ctx, &guest)
	if err != nil {
		return nil, err
	}

	remaining := guest.MaxInvites - len(invitees)
	if remaining < 0 {
		remaining = 0
	}

	return &Dashboard{
		Guest:            &guest,
		Settings:         settings,
		Events:           events,
		Timeline:         timeline,
		Invitees:         invitees,
		InvitesRemaining: remaining,
		ShowDiet:         permissions.DietFeature(settings).Visible(guest.Role),
		ShowSongRequest:  permissions.SongFeature(settings).Visible(guest.Role),
	}, nil
}
