package models

import "time"

// DefaultEventSettingsID identifies the singleton settings row.
const DefaultEventSettingsID = "default"

// EventSettings holds the primary event details and global toggles. There is
// exactly one row, keyed by DefaultEventSettingsID.
type EventSettings struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Title           string    `gorm:"size:255" json:"title"`
	Date            time.Time `json:"date"`
	LocationName    string    `gorm:"size:255" json:"location_name"`
	LocationAddress string    `gorm:"size:255" json:"location_address"`
	Vibe            string    `gorm:"size:255" json:"vibe"`
	IsRSVPLocked    bool      `gorm:"column:is_rsvp_locked;not null;default:false" json:"is_rsvp_locked"`

	DinnerTitle           string `gorm:"size:255" json:"dinner_title"`
	DinnerDescription     string `gorm:"type:text" json:"dinner_description"`
	AfterPartyTitle       string `gorm:"size:255" json:"after_party_title"`
	AfterPartyDescription string `gorm:"type:text" json:"after_party_description"`

	IsDietEnabled        bool   `gorm:"not null" json:"is_diet_enabled"`
	DietTargetRoles      string `gorm:"size:255" json:"diet_target_roles"`
	IsSongRequestEnabled bool   `gorm:"not null" json:"is_song_request_enabled"`
	SongTargetRoles      string `gorm:"size:255" json:"song_target_roles"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the singleton in a stable table.
func (EventSettings) TableName() string {
	return "event_settings"
}
