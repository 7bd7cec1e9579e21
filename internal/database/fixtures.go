package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/models"
)

// Fixture describes guests and timeline entries loaded by `guestctl seed`.
type Fixture struct {
	Guests   []FixtureGuest    `yaml:"guests"`
	Timeline []FixtureTimeline `yaml:"timeline"`
}

// FixtureGuest is keyed by Code; InvitedBy refers to another guest's code.
type FixtureGuest struct {
	Code           string `yaml:"code"`
	Name           string `yaml:"name"`
	Role           string `yaml:"role"`
	MaxInvites     int    `yaml:"max_invites"`
	PlusOneAllowed bool   `yaml:"plus_one_allowed"`
	Phone          string `yaml:"phone"`
	Email          string `yaml:"email"`
	InvitedBy      string `yaml:"invited_by"`
}

// FixtureTimeline is keyed by Title.
type FixtureTimeline struct {
	Time        string `yaml:"time"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"`
	VisibleTo   string `yaml:"visible_to"`
}

// FixtureReport summarises what ApplyFixture changed.
type FixtureReport struct {
	GuestsCreated   int
	GuestsExisting  int
	TimelineCreated int
	TimelineSkipped int
}

// LoadFixture decodes a YAML fixture document.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	for i, g := range fx.Guests {
		if strings.TrimSpace(g.Code) == "" || strings.TrimSpace(g.Name) == "" {
			return nil, fmt.Errorf("fixture guest %d: code and name are required", i+1)
		}
	}
	return &fx, nil
}

// ApplyFixture inserts guests missing by code and timeline entries missing by
// title. Existing rows are left untouched, so the fixture can be re-applied.
func ApplyFixture(ctx context.Context, db *gorm.DB, fx *Fixture) (FixtureReport, error) {
	var report FixtureReport
	if fx == nil {
		return report, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byCode := make(map[string]string, len(fx.Guests))

		for _, g := range fx.Guests {
			code := strings.ToUpper(strings.TrimSpace(g.Code))
			role := strings.ToUpper(strings.TrimSpace(g.Role))
			if role == "" {
				role = models.RoleGuest
			}

			guest := models.Guest{
				Code:           code,
				Name:           strings.TrimSpace(g.Name),
				Role:           role,
				MaxInvites:     g.MaxInvites,
				PlusOneAllowed: g.PlusOneAllowed,
				Phone:          strings.TrimSpace(g.Phone),
				Email:          strings.TrimSpace(g.Email),
			}
			res := tx.Where(models.Guest{Code: code}).Attrs(guest).FirstOrCreate(&guest)
			if res.Error != nil {
				return fmt.Errorf("seed guest %s: %w", code, res.Error)
			}
			if res.RowsAffected > 0 {
				report.GuestsCreated++
			} else {
				report.GuestsExisting++
			}
			byCode[code] = guest.ID
		}

		for _, g := range fx.Guests {
			inviter := strings.ToUpper(strings.TrimSpace(g.InvitedBy))
			if inviter == "" {
				continue
			}
			inviterID, ok := byCode[inviter]
			if !ok {
				var found models.Guest
				if err := tx.Where("code = ?", inviter).Take(&found).Error; err != nil {
					return fmt.Errorf("seed guest %s: inviter %s: %w", g.Code, inviter, err)
				}
				inviterID = found.ID
			}
			code := strings.ToUpper(strings.TrimSpace(g.Code))
			if err := tx.Model(&models.Guest{}).
				Where("code = ? AND invited_by_id IS NULL", code).
				Update("invited_by_id", inviterID).Error; err != nil {
				return fmt.Errorf("seed guest %s: link inviter: %w", code, err)
			}
		}

		for _, item := range fx.Timeline {
			title := strings.TrimSpace(item.Title)
			var count int64
			if err := tx.Model(&models.TimelineItem{}).Where("title = ?", title).Count(&count).Error; err != nil {
				return fmt.Errorf("seed timeline %q: %w", title, err)
			}
			if count > 0 {
				report.TimelineSkipped++
				continue
			}

			visible := strings.TrimSpace(item.VisibleTo)
			if visible == "" {
				visible = "ALL"
			}
			row := models.TimelineItem{
				Time:        item.Time,
				Title:       title,
				Description: item.Description,
				Order:       item.Order,
				VisibleTo:   visible,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("seed timeline %q: %w", title, err)
			}
			report.TimelineCreated++
		}
		return nil
	})

	return report, err
}
