package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the Soiree backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Email       EmailConfig       `mapstructure:"email"`
	SMS         SMSConfig         `mapstructure:"sms"`
	Invites     InvitesConfig     `mapstructure:"invites"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int        `mapstructure:"port"`
	LogLevel    string     `mapstructure:"log_level"`
	LogFormat   string     `mapstructure:"log_format"`
	BaseURL     string     `mapstructure:"base_url"`
	Production  bool       `mapstructure:"production"`
	CORSOrigins []string   `mapstructure:"cors_origins"`
	CSRF        CSRFConfig `mapstructure:"csrf"`

	// HealthTimeout bounds each readiness probe of /health.
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
}

// CSRFConfig controls CSRF protection middleware.
type CSRFConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver     string       `mapstructure:"driver"`
	Path       string       `mapstructure:"path"`
	DSN        string       `mapstructure:"dsn"`
	LogQueries bool         `mapstructure:"log_queries"`
	Postgres   DBAuthConfig `mapstructure:"postgres"`
	MySQL      DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig selects the key-value backend for rate-limit state.
type CacheConfig struct {
	// Driver is memory, database or redis.
	Driver string           `mapstructure:"driver"`
	Redis  RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Prefix   string        `mapstructure:"prefix"`
}

// AuthConfig captures access code and session settings.
type AuthConfig struct {
	CookieName       string               `mapstructure:"cookie_name"`
	SessionTTL       time.Duration        `mapstructure:"session_ttl"`
	LoginMaxAttempts int                  `mapstructure:"login_max_attempts"`
	LoginWindow      time.Duration        `mapstructure:"login_window"`
	RedeemDelay      time.Duration        `mapstructure:"redeem_delay"`
	RedeemJitter     time.Duration        `mapstructure:"redeem_jitter"`
	CodeRetries      int                  `mapstructure:"code_retries"`
	BootstrapAdmin   BootstrapAdminConfig `mapstructure:"bootstrap_admin"`
}

// BootstrapAdminConfig upserts a host account on start-up.
type BootstrapAdminConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Code       string `mapstructure:"code"`
	Name       string `mapstructure:"name"`
	MaxInvites int    `mapstructure:"max_invites"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	// Provider is smtp, sendgrid or none.
	Provider string         `mapstructure:"provider"`
	FromName string         `mapstructure:"from_name"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SendGrid SendGridConfig `mapstructure:"sendgrid"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SendGridConfig configures the SendGrid API mailer.
type SendGridConfig struct {
	APIKey string `mapstructure:"api_key"`
	From   string `mapstructure:"from"`
}

// SMSConfig configures the outbound SMS gateway.
type SMSConfig struct {
	// Provider is smsapi, twilio or none.
	Provider           string        `mapstructure:"provider"`
	Endpoint           string        `mapstructure:"endpoint"`
	Token              string        `mapstructure:"token"`
	Sender             string        `mapstructure:"sender"`
	DefaultCountryCode string        `mapstructure:"default_country_code"`
	Timeout            time.Duration `mapstructure:"timeout"`
	// MaxConcurrency bounds bulk fan-out; zero means unbounded.
	MaxConcurrency int          `mapstructure:"max_concurrency"`
	Twilio         TwilioConfig `mapstructure:"twilio"`
}

// TwilioConfig holds Twilio credentials.
type TwilioConfig struct {
	AccountSID     string `mapstructure:"account_sid"`
	AuthToken      string `mapstructure:"auth_token"`
	From           string `mapstructure:"from"`
	StatusCallback string `mapstructure:"status_callback"`
}

// InvitesConfig tunes the invitation flow and message templates.
type InvitesConfig struct {
	InviterFallbackName string `mapstructure:"inviter_fallback_name"`
	EventName           string `mapstructure:"event_name"`
}

// MaintenanceConfig schedules background jobs.
type MaintenanceConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	CachePurgeSchedule string `mapstructure:"cache_purge_schedule"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
// A .env file in the working directory is loaded first when present.
func LoadConfig(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("SOIREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.production", false)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.csrf.enabled", false)
	v.SetDefault("server.health_timeout", "2s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/soiree.sqlite")
	v.SetDefault("database.log_queries", false)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")
	v.SetDefault("cache.redis.prefix", "soiree:")

	v.SetDefault("auth.cookie_name", "session_code")
	v.SetDefault("auth.session_ttl", "720h") // 30 days
	v.SetDefault("auth.login_max_attempts", 5)
	v.SetDefault("auth.login_window", "15m")
	v.SetDefault("auth.redeem_delay", "1s")
	v.SetDefault("auth.redeem_jitter", "500ms")
	v.SetDefault("auth.code_retries", 5)
	v.SetDefault("auth.bootstrap_admin.enabled", false)
	v.SetDefault("auth.bootstrap_admin.code", "")
	v.SetDefault("auth.bootstrap_admin.name", "Host")
	v.SetDefault("auth.bootstrap_admin.max_invites", 100)

	v.SetDefault("email.provider", "smtp")
	v.SetDefault("email.from_name", "Urodziny Gemini")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.from", "")
	v.SetDefault("email.smtp.use_tls", false)
	v.SetDefault("email.smtp.timeout", "10s")
	v.SetDefault("email.sendgrid.api_key", "")
	v.SetDefault("email.sendgrid.from", "")

	v.SetDefault("sms.provider", "smsapi")
	v.SetDefault("sms.endpoint", "https://api.smsapi.pl/sms.do")
	v.SetDefault("sms.token", "")
	v.SetDefault("sms.sender", "")
	v.SetDefault("sms.default_country_code", "48")
	v.SetDefault("sms.timeout", "10s")
	v.SetDefault("sms.max_concurrency", 0)
	v.SetDefault("sms.twilio.account_sid", "")
	v.SetDefault("sms.twilio.auth_token", "")
	v.SetDefault("sms.twilio.from", "")
	v.SetDefault("sms.twilio.status_callback", "")

	v.SetDefault("invites.inviter_fallback_name", "Gospodarza")
	v.SetDefault("invites.event_name", "urodziny")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.cache_purge_schedule", "@every 15m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
