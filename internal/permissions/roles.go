// Package permissions decides which guests may see catalog entries and
// optional RSVP fields.
package permissions

import (
	"sort"
	"strings"

	"github.com/charlesng35/soiree/internal/models"
)

// All is the visibility token matching every role.
const All = "ALL"

// RoleSet is a set of role names parsed from a comma-joined visibility mask.
type RoleSet map[string]struct{}

// ParseRoleSet splits a comma-joined mask into exact-match tokens. Blank
// tokens are dropped; matching is case-sensitive.
func ParseRoleSet(mask string) RoleSet {
	set := RoleSet{}
	for _, token := range strings.Split(mask, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			set[token] = struct{}{}
		}
	}
	return set
}

// NewRoleSet builds a set from role names; an empty input yields {ALL}.
func NewRoleSet(roles ...string) RoleSet {
	set := ParseRoleSet(strings.Join(roles, ","))
	if len(set) == 0 {
		set[All] = struct{}{}
	}
	return set
}

// Contains reports exact membership.
func (s RoleSet) Contains(role string) bool {
	_, ok := s[role]
	return ok
}

// String renders the mask in storage form. ALL leads; other roles are sorted.
func (s RoleSet) String() string {
	if len(s) == 0 {
		return All
	}
	roles := make([]string, 0, len(s))
	for role := range s {
		if role != All {
			roles = append(roles, role)
		}
	}
	sort.Strings(roles)
	if s.Contains(All) {
		roles = append([]string{All}, roles...)
	}
	return strings.Join(roles, ",")
}

// Visible reports whether a guest with role may see an entry masked by mask.
// ADMIN sees everything.
func Visible(mask, role string) bool {
	if role == models.RoleAdmin {
		return true
	}
	set := ParseRoleSet(mask)
	return set.Contains(All) || set.Contains(role)
}

// Feature describes an optional RSVP field toggle.
type Feature struct {
	Enabled     bool
	TargetRoles string
}

// Visible reports whether the feature is shown to role. Disabled features are
// hidden from everyone; an empty target list or ALL means every role.
func (f Feature) Visible(role string) bool {
	if !f.Enabled {
		return false
	}
	targets := ParseRoleSet(f.TargetRoles)
	if len(targets) == 0 {
		return true
	}
	return targets.Contains(All) || targets.Contains(role)
}

// DietFeature extracts the diet toggle from the settings row.
func DietFeature(s *models.EventSettings) Feature {
	if s == nil {
		return Feature{}
	}
	return Feature{Enabled: s.IsDietEnabled, TargetRoles: s.DietTargetRoles}
}

// SongFeature extracts the song request toggle from the settings row.
func SongFeature(s *models.EventSettings) Feature {
	if s == nil {
		return Feature{}
	}
	return Feature{Enabled: s.IsSongRequestEnabled, TargetRoles: s.SongTargetRoles}
}
