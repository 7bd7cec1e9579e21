package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	testutil "github.com/charlesng35/soiree/internal/database/testutil"
	"github.com/charlesng35/soiree/internal/models"
	"github.com/charlesng35/soiree/internal/notifications"
	"github.com/charlesng35/soiree/pkg/mail"
)

type fakeSMS struct {
	mu       sync.Mutex
	messages map[string]string
	failFor  map[string]bool
}

func newFakeSMS() *fakeSMS {
	return &fakeSMS{messages: map[string]string{}, failFor: map[string]bool{}}
}

func (f *fakeSMS) Send(_ context.Context, to, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return errors.New("gateway error")
	}
	f.messages[to] = message
	return nil
}

func (f *fakeSMS) WrapLink(url string) string { return "[%goto:" + url + "%]" }

func (f *fakeSMS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type fakeMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func newTestDispatcher(sms *fakeSMS, mailer *fakeMailer) *notifications.Dispatcher {
	var m mail.Mailer
	if mailer != nil {
		m = mailer
	}
	return notifications.NewDispatcher(m, sms, notifications.WithBaseURL("https://party.example.com"))
}

func openServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithSeedData())
}

func mustAdmin(t *testing.T, db *gorm.DB) *models.Guest {
	t.Helper()
	return testutil.MustCreateGuest(t, db, models.Guest{Name: "Pysiek (Host)", Role: models.RoleAdmin, MaxInvites: 100})
}

func countGuests(t *testing.T, db *gorm.DB, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(&models.Guest{})
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count guests: %v", err)
	}
	return n
}
