package models

import "gorm.io/datatypes"

// Event is a catalog entry shown on the dashboard to roles in VisibleToRoles.
type Event struct {
	BaseModel

	Title           string         `gorm:"size:255;not null" json:"title"`
	Date            datatypes.Date `gorm:"not null" json:"date"`
	Time            string         `gorm:"size:16" json:"time,omitempty"`
	LocationName    string         `gorm:"size:255" json:"location_name,omitempty"`
	LocationAddress string         `gorm:"size:255" json:"location_address,omitempty"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	Order           int            `gorm:"column:sort_order;not null;default:0;index" json:"order"`
	VisibleToRoles  string         `gorm:"size:255;not null;default:ALL" json:"visible_to_roles"`

	SubEvents []SubEvent `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"sub_events"`
}

// SubEvent belongs to exactly one Event and is deleted with it.
type SubEvent struct {
	BaseModel

	EventID        string          `gorm:"size:36;not null;index" json:"event_id"`
	Title          string          `gorm:"size:255;not null" json:"title"`
	Date           *datatypes.Date `json:"date,omitempty"`
	Time           string          `gorm:"size:16" json:"time,omitempty"`
	Description    string          `gorm:"type:text" json:"description,omitempty"`
	Order          int             `gorm:"column:sort_order;not null;default:0" json:"order"`
	VisibleToRoles string          `gorm:"size:255;not null;default:ALL" json:"visible_to_roles"`
}
