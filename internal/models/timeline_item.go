package models

// TimelineItem is a flat schedule entry, independent of the event catalog.
type TimelineItem struct {
	BaseModel

	Time        string `gorm:"size:16" json:"time"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Order       int    `gorm:"column:sort_order;not null;default:99" json:"order"`
	VisibleTo   string `gorm:"size:255;not null;default:ALL" json:"visible_to"`
}
