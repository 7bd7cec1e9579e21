package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/soiree/internal/models"
)

const partyFixture = `
guests:
  - code: adminx
    name: Pysiek (Host)
    role: ADMIN
    max_invites: 100
  - code: MOMDAD
    name: Mom & Dad
    role: FAMILY
    max_invites: 2
  - code: KLAUD1
    name: Klaudia
    invited_by: ADMINX
timeline:
  - time: "18:00"
    title: Welcome
    description: Cocktails & Jazz
    order: 1
  - time: "19:00"
    title: Family Dinner
    order: 2
    visible_to: FAMILY
`

func TestLoadAndApplyFixture(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	fx, err := LoadFixture(strings.NewReader(partyFixture))
	require.NoError(t, err)
	require.Len(t, fx.Guests, 3)

	report, err := ApplyFixture(context.Background(), db, fx)
	require.NoError(t, err)
	require.Equal(t, FixtureReport{GuestsCreated: 3, TimelineCreated: 2}, report)

	var admin, invitee models.Guest
	require.NoError(t, db.First(&admin, "code = ?", "ADMINX").Error)
	require.NoError(t, db.First(&invitee, "code = ?", "KLAUD1").Error)
	require.Equal(t, models.RoleGuest, invitee.Role)
	require.True(t, invitee.InvitedByGuest(admin.ID))

	var dinner models.TimelineItem
	require.NoError(t, db.First(&dinner, "title = ?", "Family Dinner").Error)
	require.Equal(t, "FAMILY", dinner.VisibleTo)

	again, err := ApplyFixture(context.Background(), db, fx)
	require.NoError(t, err)
	require.Equal(t, FixtureReport{GuestsExisting: 3, TimelineSkipped: 2}, again)
}

func TestLoadFixtureRejectsIncompleteGuests(t *testing.T) {
	_, err := LoadFixture(strings.NewReader("guests:\n  - name: Nobody\n"))
	require.ErrorContains(t, err, "code and name are required")

	_, err = LoadFixture(strings.NewReader("guests:\n  - code: X\n    name: Y\n    colour: red\n"))
	require.Error(t, err)
}
