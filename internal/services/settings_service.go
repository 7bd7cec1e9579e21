package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/soiree/internal/models"
	apperrors "github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/logger"
)

// SettingsInput is the admin form for the event settings singleton. Date and
// Time are combined into the event start; an empty Date keeps the stored one.
type SettingsInput struct {
	Title                 string   `json:"title" form:"title"`
	Date                  string   `json:"date" form:"date"`
	Time                  string   `json:"time" form:"time"`
	LocationName          string   `json:"location_name" form:"locationName"`
	LocationAddress       string   `json:"location_address" form:"locationAddress"`
	Vibe                  string   `json:"vibe" form:"vibe"`
	IsRSVPLocked          bool     `json:"is_rsvp_locked" form:"isRsvpLocked"`
	DinnerTitle           string   `json:"dinner_title" form:"dinnerTitle"`
	DinnerDescription     string   `json:"dinner_description" form:"dinnerDescription"`
	AfterPartyTitle       string   `json:"after_party_title" form:"afterPartyTitle"`
	AfterPartyDescription string   `json:"after_party_description" form:"afterPartyDescription"`
	IsDietEnabled         bool     `json:"is_diet_enabled" form:"isDietEnabled"`
	DietTargetRoles       []string `json:"diet_target_roles" form:"dietTargetRoles"`
	IsSongRequestEnabled  bool     `json:"is_song_request_enabled" form:"isSongRequestEnabled"`
	SongTargetRoles       []string `json:"song_target_roles" form:"songTargetRoles"`
}

// SettingsService reads and writes the event settings singleton.
type SettingsService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(db *gorm.DB) (*SettingsService, error) {
	if db == nil {
		return nil, errors.New("settings service: db is required")
	}
	return &SettingsService{db: db, log: logger.WithModule("settings")}, nil
}

// Get returns the settings row. A missing row yields defaults without
// writing anything.
func (s *SettingsService) Get(ctx context.Context) (*models.EventSettings, error) {
	var settings models.EventSettings
	err := s.db.WithContext(ensureContext(ctx)).Take(&settings, "id = ?", models.DefaultEventSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.EventSettings{ID: models.DefaultEventSettingsID}, nil
	}
	if err != nil {
		return nil, failedUnlessApp("load settings", err, s.log)
	}
	return &settings, nil
}

func combineDateTime(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.NewBadRequest("Invalid date")
	}
	return t, nil
}

// Update upserts the settings row.
func (s *SettingsService) Update(ctx context.Context, admin *models.Guest, input SettingsInput) (*models.EventSettings, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	date := current.Date
	if strings.TrimSpace(input.Date) != "" {
		if date, err = combineDateTime(input.Date, input.Time); err != nil {
			return nil, err
		}
	}

	settings := models.EventSettings{
		ID:                    models.DefaultEventSettingsID,
		Title:                 strings.TrimSpace(input.Title),
		Date:                  date,
		LocationName:          strings.TrimSpace(input.LocationName),
		LocationAddress:       strings.TrimSpace(input.LocationAddress),
		Vibe:                  strings.TrimSpace(input.Vibe),
		IsRSVPLocked:          input.IsRSVPLocked,
		DinnerTitle:           strings.TrimSpace(input.DinnerTitle),
		DinnerDescription:     strings.TrimSpace(input.DinnerDescription),
		AfterPartyTitle:       strings.TrimSpace(input.AfterPartyTitle),
		AfterPartyDescription: strings.TrimSpace(input.AfterPartyDescription),
		IsDietEnabled:         input.IsDietEnabled,
		DietTargetRoles:       joinRoles(input.DietTargetRoles),
		IsSongRequestEnabled:  input.IsSongRequestEnabled,
		SongTargetRoles:       joinRoles(input.SongTargetRoles),
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&settings).Error; err != nil {
		return nil, failedUnlessApp("update settings", err, s.log)
	}
	return &settings, nil
}
