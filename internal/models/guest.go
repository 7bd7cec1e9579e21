package models

import "strings"

// Recognised guest roles. Role is stored as an open string.
const (
	RoleAdmin  = "ADMIN"
	RoleFamily = "FAMILY"
	RoleVIP    = "VIP"
	RoleFriend = "FRIEND"
	RoleGuest  = "GUEST"
)

// KnownRoles lists the recognised roles in display order.
var KnownRoles = []string{RoleAdmin, RoleFamily, RoleVIP, RoleFriend, RoleGuest}

// Guest is any person with access to the event: hosts, family, friends and
// invitees alike. Invitees are not stored on the inviter; they are queried by
// InvitedByID.
type Guest struct {
	BaseModel

	Code           string `gorm:"uniqueIndex;size:16;not null" json:"code"`
	Name           string `gorm:"size:255;not null" json:"name"`
	Role           string `gorm:"size:32;not null;default:GUEST;index" json:"role"`
	MaxInvites     int    `gorm:"not null;default:0" json:"max_invites"`
	PlusOneAllowed bool   `gorm:"not null;default:false" json:"plus_one_allowed"`
	Phone          string `gorm:"size:32" json:"phone,omitempty"`
	Email          string `gorm:"size:255" json:"email,omitempty"`

	RSVPMain       bool   `gorm:"column:rsvp_main;not null;default:false" json:"rsvp_main"`
	RSVPDinner     bool   `gorm:"column:rsvp_dinner;not null;default:false" json:"rsvp_dinner"`
	RSVPAfterParty bool   `gorm:"column:rsvp_after_party;not null;default:false" json:"rsvp_after_party"`
	Diet           string `gorm:"type:text" json:"diet,omitempty"`
	SongRequest    string `gorm:"type:text" json:"song_request,omitempty"`
	PlusOneName    string `gorm:"size:255" json:"plus_one_name,omitempty"`
	PlusOneDiet    string `gorm:"type:text" json:"plus_one_diet,omitempty"`

	InvitedByID *string `gorm:"size:36;index" json:"invited_by_id,omitempty"`
	InvitedBy   *Guest  `gorm:"foreignKey:InvitedByID;constraint:OnDelete:SET NULL" json:"invited_by,omitempty"`
}

// IsAdmin reports whether the guest holds the ADMIN role.
func (g *Guest) IsAdmin() bool {
	return g != nil && g.Role == RoleAdmin
}

// FirstName returns the first whitespace separated word of the name.
func (g *Guest) FirstName() string {
	fields := strings.Fields(g.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// InvitedByGuest reports whether the guest was invited by inviterID.
func (g *Guest) InvitedByGuest(inviterID string) bool {
	return g.InvitedByID != nil && *g.InvitedByID == inviterID
}
