package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	testutil "github.com/charlesng35/soiree/internal/database/testutil"
	"github.com/charlesng35/soiree/internal/models"
	apperrors "github.com/charlesng35/soiree/pkg/errors"
)

func TestSendBulkSMSGroupCountsPhonelessAsFailed(t *testing.T) {
	db := openServiceDB(t)
	sms := newFakeSMS()
	svc, err := NewBroadcastService(db, newTestDispatcher(sms, nil))
	require.NoError(t, err)
	admin := mustAdmin(t, db)

	testutil.MustCreateGuest(t, db, models.Guest{Name: "Vip One", Role: models.RoleVIP, Phone: "500000001"})
	testutil.MustCreateGuest(t, db, models.Guest{Name: "Vip Two", Role: models.RoleVIP, Phone: "500000002"})
	testutil.MustCreateGuest(t, db, models.Guest{Name: "Vip Three", Role: models.RoleVIP})
	testutil.MustCreateGuest(t, db, models.Guest{Name: "Friend", Role: models.RoleFriend, Phone: "500000003"})

	res, err := svc.SendBulkSMS(context.Background(), admin, BulkSMSRequest{
		Message: "Hej {name}!",
		Target:  TargetGroup,
		Filter:  []string{"VIP"},
	})
	require.NoError(t, err)
	require.Equal(t, &BulkSMSResult{Sent: 2, Failed: 1}, res)
	require.Equal(t, "Hej Vip!", sms.messages["500000001"])
	require.NotContains(t, sms.messages, "500000003")
}

func TestSendBulkSMSAllOnlyTargetsGuestsWithPhone(t *testing.T) {
	db := openServiceDB(t)
	sms := newFakeSMS()
	sms.failFor["500000002"] = true
	svc, err := NewBroadcastService(db, newTestDispatcher(sms, nil), WithBroadcastConcurrency(1))
	require.NoError(t, err)
	admin := mustAdmin(t, db)

	testutil.MustCreateGuest(t, db, models.Guest{Name: "A", Phone: "500000001"})
	testutil.MustCreateGuest(t, db, models.Guest{Name: "B", Phone: "500000002"})
	testutil.MustCreateGuest(t, db, models.Guest{Name: "C"})

	res, err := svc.SendBulkSMS(context.Background(), admin, BulkSMSRequest{Message: "Hello", Target: TargetAll})
	require.NoError(t, err)
	require.Equal(t, &BulkSMSResult{Sent: 1, Failed: 1}, res)
}

func TestSendBulkSMSSelectedAndTemplating(t *testing.T) {
	db := openServiceDB(t)
	sms := newFakeSMS()
	svc, err := NewBroadcastService(db, newTestDispatcher(sms, nil))
	require.NoError(t, err)
	admin := mustAdmin(t, db)

	inviter := testutil.MustCreateGuest(t, db, models.Guest{Name: "Best Friend", Role: models.RoleVIP})
	invited := testutil.MustCreateGuest(t, db, models.Guest{Name: "Anna Nowak", Code: "ANNA23", Phone: "500000001", InvitedByID: &inviter.ID})
	orphan := testutil.MustCreateGuest(t, db, models.Guest{Name: "Solo", Code: "SOLO23", Phone: "500000002"})
	testutil.MustCreateGuest(t, db, models.Guest{Name: "Skipped", Phone: "500000003"})

	msg := "{name}|{fullname}|{code}|{inviter_name}|{link}"
	res, err := svc.SendBulkSMS(context.Background(), admin, BulkSMSRequest{
		Message: msg,
		Target:  TargetSelected,
		Filter:  []string{invited.ID, orphan.ID, invited.ID},
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Sent)
	require.Equal(t, 0, res.Failed)

	require.Equal(t, "Anna|Anna Nowak|ANNA23|Best Friend|[%goto:https://party.example.com/invite/ANNA23%]", sms.messages["500000001"])
	require.Equal(t, "Solo|Solo|SOLO23|Gospodarza|[%goto:https://party.example.com/invite/SOLO23%]", sms.messages["500000002"])
	require.NotContains(t, sms.messages, "500000003")
}

func TestSendBulkSMSGuestsOfRole(t *testing.T) {
	db := openServiceDB(t)
	sms := newFakeSMS()
	svc, err := NewBroadcastService(db, newTestDispatcher(sms, nil))
	require.NoError(t, err)
	admin := mustAdmin(t, db)

	family := testutil.MustCreateGuest(t, db, models.Guest{Role: models.RoleFamily})
	friend := testutil.MustCreateGuest(t, db, models.Guest{Role: models.RoleFriend})
	testutil.MustCreateGuest(t, db, models.Guest{Name: "Cousin", Phone: "500000001", InvitedByID: &family.ID})
	testutil.MustCreateGuest(t, db, models.Guest{Name: "Pal", Phone: "500000002", InvitedByID: &friend.ID})

	res, err := svc.SendBulkSMS(context.Background(), admin, BulkSMSRequest{Message: "Hi", Target: TargetGuestsOfRole, Filter: []string{"FAMILY"}})
	require.NoError(t, err)
	require.Equal(t, &BulkSMSResult{Sent: 1}, res)
	require.Contains(t, sms.messages, "500000001")
}

func TestSendBulkSMSValidation(t *testing.T) {
	db := openServiceDB(t)
	sms := newFakeSMS()
	svc, err := NewBroadcastService(db, newTestDispatcher(sms, nil))
	require.NoError(t, err)
	admin := mustAdmin(t, db)
	ctx := context.Background()

	guest := testutil.MustCreateGuest(t, db, models.Guest{Phone: "500000001"})
	_, err = svc.SendBulkSMS(ctx, guest, BulkSMSRequest{Message: "Hello", Target: TargetAll})
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.SendBulkSMS(ctx, admin, BulkSMSRequest{Message: " x ", Target: TargetAll})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Message too short", appErr.Message)

	_, err = svc.SendBulkSMS(ctx, admin, BulkSMSRequest{Message: "Hello", Target: TargetGroup, Filter: []string{"NOBODY"}})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "No recipients found", appErr.Message)

	_, err = svc.SendBulkSMS(ctx, admin, BulkSMSRequest{Message: "Hello", Target: "EVERYONE"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	require.Zero(t, sms.count())
}

func TestBulkSMSRequestFilterShapes(t *testing.T) {
	cases := map[string]AudienceFilter{
		`{"target":"GROUP","filter":"VIP"}`:        {"VIP"},
		`{"target":"SELECTED","filter":["a","b"]}`: {"a", "b"},
		`{"target":"ALL","filter":null}`:           nil,
		`{"target":"ALL","filter":""}`:             nil,
		`{"target":"ALL"}`:                         nil,
	}
	for body, want := range cases {
		var req BulkSMSRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		require.Equal(t, want, req.Filter, body)
	}

	var req BulkSMSRequest
	require.Error(t, json.Unmarshal([]byte(`{"filter":42}`), &req))
}
