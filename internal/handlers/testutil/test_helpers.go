package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/api"
	"github.com/charlesng35/soiree/internal/app"
	iauth "github.com/charlesng35/soiree/internal/auth"
	sharedtestutil "github.com/charlesng35/soiree/internal/database/testutil"
	"github.com/charlesng35/soiree/internal/middleware"
	"github.com/charlesng35/soiree/internal/models"
	"github.com/charlesng35/soiree/internal/notifications"
	"github.com/charlesng35/soiree/pkg/mail"
	"github.com/charlesng35/soiree/pkg/response"
)

// BaseURL is the public address magic links are built from in tests.
const BaseURL = "https://party.example.com"

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	Config *app.Config
	SMS    *RecordingSMS
	Mail   *RecordingMailer

	csrfToken  string
	csrfCookie *http.Cookie
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	cfg := &app.Config{
		Server: app.ServerConfig{
			BaseURL: BaseURL,
			CSRF:    app.CSRFConfig{Enabled: true},
		},
		Auth: app.AuthConfig{
			LoginMaxAttempts: 3,
		},
	}

	access, err := iauth.NewAccessService(db, iauth.NewLimiter(nil, cfg.Auth.LimiterConfig()))
	require.NoError(t, err)

	smsSender := NewRecordingSMS()
	mailer := &RecordingMailer{}
	dispatcher := notifications.NewDispatcher(mailer, smsSender, notifications.WithBaseURL(BaseURL))

	router, err := api.NewRouter(db, cfg, access, dispatcher, middleware.NewMemoryRateStore())
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		Config: cfg,
		SMS:    smsSender,
		Mail:   mailer,
	}
}

// CreateGuest persists a guest, filling in code, name and role when empty.
func (e *Env) CreateGuest(guest models.Guest) *models.Guest {
	e.T.Helper()
	return sharedtestutil.MustCreateGuest(e.T, e.DB, guest)
}

// CreateAdmin persists an ADMIN guest.
func (e *Env) CreateAdmin() *models.Guest {
	e.T.Helper()
	return e.CreateGuest(models.Guest{Name: "Host", Role: models.RoleAdmin, MaxInvites: 100})
}

// RecordingSMS captures outbound text messages keyed by recipient.
type RecordingSMS struct {
	mu       sync.Mutex
	Messages map[string]string
}

func NewRecordingSMS() *RecordingSMS {
	return &RecordingSMS{Messages: map[string]string{}}
}

func (r *RecordingSMS) Send(_ context.Context, to, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages[to] = message
	return nil
}

func (r *RecordingSMS) WrapLink(url string) string { return "[%goto:" + url + "%]" }

// Count returns the number of distinct recipients messaged.
func (r *RecordingSMS) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Messages)
}

// RecordingMailer captures outbound email.
type RecordingMailer struct {
	mu       sync.Mutex
	Messages []mail.Message
}

func (r *RecordingMailer) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, msg)
	return nil
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router. Body is JSON
// encoded; code, when set, is sent as the session cookie.
func (e *Env) Request(method, path string, body any, code string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.Do(req, code)
}

// Do sends a prepared request with the session cookie and CSRF attestation applied.
func (e *Env) Do(req *http.Request, code string) *httptest.ResponseRecorder {
	e.T.Helper()
	return e.do(req, code, false)
}

func (e *Env) do(req *http.Request, code string, skipCSRF bool) *httptest.ResponseRecorder {
	e.T.Helper()

	if code != "" {
		req.AddCookie(&http.Cookie{Name: e.Config.Auth.Cookie(), Value: code})
	}

	if !skipCSRF && requiresCSRFAttestation(req.Method) {
		e.ensureCSRFToken()
		if e.csrfCookie != nil {
			req.AddCookie(e.csrfCookie)
		}
		if e.csrfToken != "" {
			req.Header.Set(middleware.CSRFHeaderName, e.csrfToken)
		}
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	e.captureCSRF(w.Result())
	return w
}

func (e *Env) ensureCSRFToken() {
	if e.csrfToken != "" && e.csrfCookie != nil {
		return
	}
	req, err := http.NewRequest(http.MethodGet, "/health", nil)
	require.NoError(e.T, err)
	resp := e.do(req, "", true)
	require.Equal(e.T, http.StatusOK, resp.Code, resp.Body.String())
}

func (e *Env) captureCSRF(resp *http.Response) {
	if resp == nil {
		return
	}
	defer resp.Body.Close()

	if token := resp.Header.Get(middleware.CSRFHeaderName); token != "" {
		e.csrfToken = token
	}
	for _, c := range resp.Cookies() {
		if c.Name == middleware.CSRFCookieName {
			e.csrfCookie = &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path}
			break
		}
	}
}

func requiresCSRFAttestation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
