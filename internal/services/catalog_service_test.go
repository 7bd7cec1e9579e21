package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	testutil "github.com/charlesng35/soiree/internal/database/testutil"
	"github.com/charlesng35/soiree/internal/models"
	apperrors "github.com/charlesng35/soiree/pkg/errors"
)

func intPtr(v int) *int { return &v }

func TestCatalogEventLifecycle(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewCatalogService(db)
	require.NoError(t, err)
	admin := mustAdmin(t, db)
	ctx := context.Background()

	second, err := svc.CreateEvent(ctx, admin, EventInput{Title: "Party", Date: "2026-01-16", Time: "21:00", Order: intPtr(2)})
	require.NoError(t, err)
	require.Equal(t, "ALL", second.VisibleToRoles)

	first, err := svc.CreateEvent(ctx, admin, EventInput{Title: "Dinner", Date: "2026-01-16", VisibleToRoles: []string{"VIP", "FAMILY"}})
	require.NoError(t, err)
	require.Equal(t, "FAMILY,VIP", first.VisibleToRoles)
	require.Zero(t, first.Order)

	_, err = svc.CreateSubEvent(ctx, admin, SubEventInput{EventID: second.ID, Title: "Cake", Order: intPtr(2)})
	require.NoError(t, err)
	_, err = svc.CreateSubEvent(ctx, admin, SubEventInput{EventID: second.ID, Title: "Toast", Date: "2026-01-17", Order: intPtr(1)})
	require.NoError(t, err)

	events, err := svc.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "Dinner", events[0].Title)
	require.Equal(t, "Party", events[1].Title)
	require.Equal(t, "Toast", events[1].SubEvents[0].Title)
	require.NotNil(t, events[1].SubEvents[0].Date)
	require.Nil(t, events[1].SubEvents[1].Date)

	updated, err := svc.UpdateEvent(ctx, admin, first.ID, EventInput{Title: "Family Dinner", Date: "2026-01-16", VisibleToRoles: []string{"FAMILY"}})
	require.NoError(t, err)
	require.Equal(t, "Family Dinner", updated.Title)

	require.NoError(t, svc.DeleteEvent(ctx, admin, second.ID))
	var subCount int64
	require.NoError(t, db.Model(&models.SubEvent{}).Count(&subCount).Error)
	require.Zero(t, subCount)

	require.ErrorIs(t, svc.DeleteEvent(ctx, admin, second.ID), apperrors.ErrNotFound)
}

func TestCatalogValidation(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewCatalogService(db)
	require.NoError(t, err)
	admin := mustAdmin(t, db)
	ctx := context.Background()
	var appErr *apperrors.AppError

	_, err = svc.CreateEvent(ctx, admin, EventInput{Title: "No date"})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Title and date are required", appErr.Message)

	_, err = svc.CreateEvent(ctx, admin, EventInput{Title: "Bad", Date: "16.01.2026"})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Invalid date", appErr.Message)

	_, err = svc.UpdateEvent(ctx, admin, "", EventInput{Title: "T", Date: "2026-01-16"})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "ID, title and date are required", appErr.Message)

	_, err = svc.CreateSubEvent(ctx, admin, SubEventInput{Title: "Orphan"})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Event ID and title are required", appErr.Message)

	_, err = svc.CreateSubEvent(ctx, admin, SubEventInput{EventID: "missing", Title: "Orphan"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.UpdateSubEvent(ctx, admin, "x", SubEventInput{})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "ID and title are required", appErr.Message)

	guest := testutil.MustCreateGuest(t, db, models.Guest{})
	_, err = svc.CreateEvent(ctx, guest, EventInput{Title: "T", Date: "2026-01-16"})
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVisibleEventsFiltersByRole(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewCatalogService(db)
	require.NoError(t, err)
	admin := mustAdmin(t, db)
	ctx := context.Background()

	open, err := svc.CreateEvent(ctx, admin, EventInput{Title: "Open", Date: "2026-01-16", Order: intPtr(1)})
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, admin, EventInput{Title: "Private", Date: "2026-01-16", Order: intPtr(2), VisibleToRoles: []string{"FAMILY", "VIP"}})
	require.NoError(t, err)
	_, err = svc.CreateSubEvent(ctx, admin, SubEventInput{EventID: open.ID, Title: "VIP lounge", VisibleToRoles: []string{"VIP"}})
	require.NoError(t, err)

	titles := func(role string) []string {
		events, err := svc.VisibleEvents(ctx, role)
		require.NoError(t, err)
		var out []string
		for _, e := range events {
			out = append(out, e.Title)
			for _, s := range e.SubEvents {
				out = append(out, e.Title+"/"+s.Title)
			}
		}
		return out
	}

	require.Equal(t, []string{"Open", "Open/VIP lounge", "Private"}, titles(models.RoleVIP))
	require.Equal(t, []string{"Open", "Private"}, titles(models.RoleFamily))
	require.Equal(t, []string{"Open", "Open/VIP lounge", "Private"}, titles(models.RoleAdmin))
	require.Equal(t, []string{"Open"}, titles(models.RoleFriend))
	require.Equal(t, []string{"Open"}, titles(models.RoleGuest))
}

func TestTimelineLifecycle(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewCatalogService(db)
	require.NoError(t, err)
	admin := mustAdmin(t, db)
	ctx := context.Background()

	late, err := svc.CreateTimelineItem(ctx, admin, TimelineInput{Time: "02:00", Title: "After Party"})
	require.NoError(t, err)
	require.Equal(t, 99, late.Order)

	_, err = svc.CreateTimelineItem(ctx, admin, TimelineInput{Time: "19:00", Title: "Family Dinner", Order: intPtr(2), VisibleTo: []string{"FAMILY"}})
	require.NoError(t, err)

	friendView, err := svc.VisibleTimeline(ctx, models.RoleFriend)
	require.NoError(t, err)
	require.Len(t, friendView, 1)
	require.Equal(t, "After Party", friendView[0].Title)

	familyView, err := svc.VisibleTimeline(ctx, models.RoleFamily)
	require.NoError(t, err)
	require.Len(t, familyView, 2)
	require.Equal(t, "Family Dinner", familyView[0].Title)

	_, err = svc.UpdateTimelineItem(ctx, admin, late.ID, TimelineInput{Title: "Late Party", Order: intPtr(4)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTimelineItem(ctx, admin, late.ID))
	require.ErrorIs(t, svc.DeleteTimelineItem(ctx, admin, late.ID), apperrors.ErrNotFound)
}

func TestTimelineStoreFailuresNameTheAction(t *testing.T) {
	db := openServiceDB(t)
	svc, err := NewCatalogService(db)
	require.NoError(t, err)
	admin := mustAdmin(t, db)
	ctx := context.Background()
	require.NoError(t, db.Migrator().DropTable(&models.TimelineItem{}))

	var appErr *apperrors.AppError
	_, err = svc.CreateTimelineItem(ctx, admin, TimelineInput{Title: "Toast"})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Failed to create timeline item", appErr.Message)

	_, err = svc.UpdateTimelineItem(ctx, admin, "missing", TimelineInput{Title: "Toast"})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Failed to update timeline item", appErr.Message)

	err = svc.DeleteTimelineItem(ctx, admin, "missing")
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Failed to delete timeline item", appErr.Message)
}
