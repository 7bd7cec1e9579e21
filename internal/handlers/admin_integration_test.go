package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/soiree/internal/handlers/testutil"
	"github.com/charlesng35/soiree/internal/models"
	"github.com/charlesng35/soiree/internal/services"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := testutil.NewEnv(t)
	vip := env.CreateGuest(models.Guest{Role: models.RoleVIP})

	for _, path := range []string{"/api/admin/guests", "/api/admin/stats", "/api/admin/settings", "/api/admin/events"} {
		w := env.Request(http.MethodGet, path, nil, vip.Code)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = env.Request(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAdminGuestLifecycle(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateAdmin()

	w := env.Request(http.MethodPost, "/api/admin/guests", map[string]any{
		"name":             "Ciocia Basia",
		"role":             "family",
		"max_invites":      2,
		"plus_one_allowed": true,
	}, admin.Code)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Guest
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &created)
	require.Equal(t, models.RoleFamily, created.Role)
	require.Len(t, created.Code, 6)
	require.NotNil(t, created.InvitedByID)
	require.Equal(t, admin.ID, *created.InvitedByID)

	w = env.Request(http.MethodPost, "/api/admin/guests", map[string]any{"name": "  "}, admin.Code)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Name required", testutil.DecodeResponse(t, w).Error.Message)

	w = env.Request(http.MethodPut, "/api/admin/guests/"+created.ID, map[string]any{
		"name":        "Ciocia Basia",
		"role":        "VIP",
		"max_invites": 5,
	}, admin.Code)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/api/admin/guests", nil, admin.Code)
	require.Equal(t, http.StatusOK, w.Code)
	var guests []services.GuestSummary
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &guests)
	require.Len(t, guests, 2)

	var adminRow services.GuestSummary
	for _, g := range guests {
		if g.ID == admin.ID {
			adminRow = g
		}
	}
	require.EqualValues(t, 1, adminRow.InviteeCount)

	w = env.Request(http.MethodDelete, "/api/admin/guests/"+created.ID, nil, admin.Code)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Request(http.MethodDelete, "/api/admin/guests/"+created.ID, nil, admin.Code)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminImportAndExportCSV(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateAdmin()

	body := "name,phone\nJan Kowalski,600100200\n,600300400\nAnna Nowak,\n"
	req, err := http.NewRequest(http.MethodPost, "/api/admin/guests/import", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")

	w := env.Do(req, admin.Code)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.ImportResult
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &result)
	require.Equal(t, 2, result.Created)
	require.Equal(t, 1, result.Skipped)
	require.Equal(t, []string{"Row 3: Missing name"}, result.Errors)

	w = env.Request(http.MethodGet, "/api/admin/guests/export", nil, admin.Code)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "guests.csv")

	lines := strings.Split(w.Body.String(), "\n")
	require.Equal(t, services.ExportHeader, lines[0])
	require.Len(t, lines, 4)
	require.Contains(t, w.Body.String(), `"Jan Kowalski"`)
}

func TestAdminStats(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateAdmin()
	env.CreateGuest(models.Guest{Name: "Zosia", Role: models.RoleVIP, RSVPMain: true, RSVPDinner: true, Diet: "vegan"})
	env.CreateGuest(models.Guest{Name: "Adam", RSVPMain: true, RSVPAfterParty: true})

	w := env.Request(http.MethodGet, "/api/admin/stats", nil, admin.Code)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats services.GuestStats
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &stats)
	require.Equal(t, 3, stats.TotalGuests)
	require.Equal(t, 2, stats.ConfirmedGuests)
	require.Equal(t, 1, stats.ConfirmedDinner)
	require.Equal(t, 1, stats.ConfirmedAfterParty)
	require.Equal(t, 1, stats.RoleBreakdown[models.RoleVIP])
	require.Equal(t, []services.DietEntry{{Name: "Zosia", Diet: "vegan"}}, stats.DietaryRestrictions)
}

func TestAdminCatalogRoutes(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateAdmin()
	vip := env.CreateGuest(models.Guest{Role: models.RoleVIP})
	friend := env.CreateGuest(models.Guest{Role: models.RoleFriend})

	w := env.Request(http.MethodPost, "/api/admin/events", map[string]any{
		"title":            "Kolacja",
		"date":             "2026-06-20",
		"time":             "19:00",
		"visible_to_roles": []string{"VIP", "FAMILY"},
	}, admin.Code)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var event models.Event
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &event)

	w = env.Request(http.MethodPost, "/api/admin/subevents", map[string]any{
		"event_id": event.ID,
		"title":    "Toast",
	}, admin.Code)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.Request(http.MethodPost, "/api/admin/timeline", map[string]any{
		"time":  "20:00",
		"title": "Tort",
	}, admin.Code)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var item models.TimelineItem
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &item)
	require.Equal(t, 99, item.Order)

	w = env.Request(http.MethodPost, "/api/admin/events", map[string]any{"title": "No date"}, admin.Code)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Title and date are required", testutil.DecodeResponse(t, w).Error.Message)

	var vipView, friendView services.Dashboard
	w = env.Request(http.MethodGet, "/api/dashboard", nil, vip.Code)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &vipView)
	require.Len(t, vipView.Events, 1)
	require.Len(t, vipView.Events[0].SubEvents, 1)
	require.Len(t, vipView.Timeline, 1)

	w = env.Request(http.MethodGet, "/api/dashboard", nil, friend.Code)
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &friendView)
	require.Empty(t, friendView.Events)

	w = env.Request(http.MethodDelete, "/api/admin/events/"+event.ID, nil, admin.Code)
	require.Equal(t, http.StatusOK, w.Code)

	var subs int64
	require.NoError(t, env.DB.Model(&models.SubEvent{}).Count(&subs).Error)
	require.Zero(t, subs)
}

func TestAdminBroadcast(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateAdmin()
	env.CreateGuest(models.Guest{Role: models.RoleVIP, Phone: "600000001"})
	env.CreateGuest(models.Guest{Role: models.RoleVIP, Phone: "600000002"})
	env.CreateGuest(models.Guest{Role: models.RoleGuest, Phone: "600000003"})

	w := env.Request(http.MethodPost, "/api/admin/broadcast", map[string]any{
		"message": "Hej {name}, do zobaczenia!",
		"target":  "GROUP",
		"filter":  []string{"VIP"},
	}, admin.Code)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.BulkSMSResult
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &result)
	require.Equal(t, services.BulkSMSResult{Sent: 2, Failed: 0}, result)
	require.Equal(t, 2, env.SMS.Count())

	w = env.Request(http.MethodPost, "/api/admin/broadcast", map[string]any{
		"message": "Hej {name}",
		"target":  "GROUP",
		"filter":  "VIP",
	}, admin.Code)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &result)
	require.Equal(t, services.BulkSMSResult{Sent: 2, Failed: 0}, result)
	require.Equal(t, 2, env.SMS.Count())
	for _, msg := range env.SMS.Messages {
		require.NotContains(t, msg, "do zobaczenia")
		require.True(t, strings.HasPrefix(msg, "Hej "), msg)
	}

	w = env.Request(http.MethodPost, "/api/admin/broadcast", map[string]any{"message": "x", "target": "ALL"}, admin.Code)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Message too short", testutil.DecodeResponse(t, w).Error.Message)
}
