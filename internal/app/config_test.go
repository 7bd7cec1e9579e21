package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "memory", cfg.Cache.Driver)
	require.Equal(t, "session_code", cfg.Auth.CookieName)
	require.Equal(t, 30*24*time.Hour, cfg.Auth.SessionTTL)
	require.Equal(t, 5, cfg.Auth.LoginMaxAttempts)
	require.Equal(t, 15*time.Minute, cfg.Auth.LoginWindow)
	require.Equal(t, time.Second, cfg.Auth.RedeemDelay)
	require.Equal(t, 500*time.Millisecond, cfg.Auth.RedeemJitter)
	require.Equal(t, "smsapi", cfg.SMS.Provider)
	require.Equal(t, "48", cfg.SMS.DefaultCountryCode)
	require.Equal(t, "Gospodarza", cfg.Invites.InviterFallbackName)
	require.Equal(t, "@every 15m", cfg.Maintenance.CachePurgeSchedule)
}

func TestLoadConfigFromFile(t *testing.T) {
	src, err := filepath.Abs("testdata")
	require.NoError(t, err)
	chdirTemp(t)

	cfg, err := LoadConfig(src)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.True(t, cfg.Server.Production)
	require.Equal(t, []string{"https://party.example.com"}, cfg.Server.CORSOrigins)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	require.Equal(t, "redis", cfg.Cache.CacheDriver())
	require.Equal(t, "party:", cfg.Cache.RedisClientConfig().Prefix)
	require.Equal(t, 3, cfg.Auth.LimiterConfig().MaxAttempts)
	require.Equal(t, 10*time.Minute, cfg.Auth.LimiterConfig().Window)
	require.Equal(t, "ADMINX", cfg.Auth.BootstrapAdmin.Code)
	require.Equal(t, 4, cfg.SMS.MaxConcurrency)
	require.Equal(t, "AC123", cfg.SMS.TwilioSettings().AccountSID)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SOIREE_SERVER_PORT", "7000")
	t.Setenv("SOIREE_AUTH_LOGIN_MAX_ATTEMPTS", "9")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 7000, cfg.Server.Port)
	require.Equal(t, 9, cfg.Auth.LoginMaxAttempts)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile(".env", []byte("SOIREE_INVITES_EVENT_NAME=wesele\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SOIREE_INVITES_EVENT_NAME") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "wesele", cfg.Invites.EventName)
}

func TestAuthConfigFallbacks(t *testing.T) {
	var cfg AuthConfig
	require.Equal(t, "session_code", cfg.Cookie())
	require.Equal(t, 30*24*time.Hour, cfg.SessionLifetime())
	require.Equal(t, 5, cfg.Retries())

	cfg.RedeemDelay = -1
	delay, jitter := cfg.RedeemTiming()
	require.Equal(t, time.Second, delay)
	require.Zero(t, jitter)
}

func TestEmailConfigNewMailer(t *testing.T) {
	var cfg EmailConfig
	mailer, err := cfg.NewMailer()
	require.NoError(t, err)
	require.NotNil(t, mailer)

	cfg.Provider = "smtp"
	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.Port = 587
	cfg.SMTP.Username = "host@example.com"
	mailer, err = cfg.NewMailer()
	require.NoError(t, err)
	require.Equal(t, "host@example.com", cfg.SMTPSettings().Username)
	require.NotNil(t, mailer)
}

func TestSMSConfigNewSenderWithoutCredentials(t *testing.T) {
	cfg := SMSConfig{Provider: "smsapi", Endpoint: "https://api.smsapi.pl/sms.do"}
	sender, err := cfg.NewSender()
	require.NoError(t, err)
	require.NotNil(t, sender)
}
