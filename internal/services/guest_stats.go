package services

import (
	"context"
	"strings"

	"github.com/charlesng35/soiree/internal/models"
)

// DietEntry pairs a guest with a dietary note.
type DietEntry struct {
	Name string `json:"name"`
	Diet string `json:"diet"`
}

// GuestStats summarises attendance for the admin dashboard.
type GuestStats struct {
	TotalGuests         int            `json:"total_guests"`
	ConfirmedGuests     int            `json:"confirmed_guests"`
	ConfirmedDinner     int            `json:"confirmed_dinner"`
	ConfirmedAfterParty int            `json:"confirmed_after_party"`
	RoleBreakdown       map[string]int `json:"role_breakdown"`
	DietaryRestrictions []DietEntry    `json:"dietary_restrictions"`
}

// Stats aggregates RSVP counts, roles and dietary notes over every guest.
func (s *GuestService) Stats(ctx context.Context, admin *models.Guest) (*GuestStats, error) {
	ctx = ensureContext(ctx)
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	var guests []models.Guest
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&guests).Error; err != nil {
		return nil, failedUnlessApp("load statistics", err, s.log)
	}

	stats := &GuestStats{
		TotalGuests:         len(guests),
		RoleBreakdown:       map[string]int{},
		DietaryRestrictions: []DietEntry{},
	}
	for _, g := range guests {
		if g.RSVPMain {
			stats.ConfirmedGuests++
		}
		if g.RSVPDinner {
			stats.ConfirmedDinner++
		}
		if g.RSVPAfterParty {
			stats.ConfirmedAfterParty++
		}
		role := g.Role
		if role == "" {
			role = models.RoleGuest
		}
		stats.RoleBreakdown[role]++
		if diet := strings.TrimSpace(g.Diet); diet != "" {
			stats.DietaryRestrictions = append(stats.DietaryRestrictions, DietEntry{Name: g.Name, Diet: diet})
		}
	}
	return stats, nil
}
