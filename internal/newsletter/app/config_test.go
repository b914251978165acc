package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "PORT", "NEWSLETTER_DATABASE_DRIVER", "NEWSLETTER_BASE_URL",
		"NEWSLETTER_SESSION_TTL", "NEWSLETTER_EMAIL_DRIVER", "NEWSLETTER_PENDING_RETENTION",
		"NEWSLETTER_SECURE_COOKIES",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "http://127.0.0.1:8000", cfg.BaseURL)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, EmailDriverLog, cfg.EmailDriver)
	require.Equal(t, 30*24*time.Hour, cfg.PendingRetention)
	require.False(t, cfg.SecureCookies)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("NEWSLETTER_DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/newsletter")
	t.Setenv("NEWSLETTER_BASE_URL", "https://news.example.com/")
	t.Setenv("NEWSLETTER_SESSION_TTL", "90")
	t.Setenv("NEWSLETTER_HASH_TIMEOUT", "250ms")
	t.Setenv("NEWSLETTER_PENDING_RETENTION", "0s")

	cfg := LoadConfig()
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, "https://news.example.com", cfg.BaseURL)
	require.Equal(t, 90*time.Minute, cfg.SessionTTL)
	require.Equal(t, 250*time.Millisecond, cfg.HashTimeout)
	require.Zero(t, cfg.PendingRetention)
	require.True(t, cfg.SecureCookies)
}

func TestLoadConfigIgnoresUnparseableValues(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("HOUSEKEEPING_INTERVAL", "soon")
	t.Setenv("NEWSLETTER_SECURE_COOKIES", "maybe")
	t.Setenv("ENV", "dev")

	cfg := LoadConfig()
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
	require.False(t, cfg.SecureCookies)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:            "prod",
			DatabaseDriver: DriverSQLite,
			DatabaseFile:   "newsletter.db",
			BaseURL:        "https://news.example.com",
			SessionTTL:     time.Hour,
			HMACSecret:     "0123456789abcdef0123456789abcdef",
			EmailDriver:    EmailDriverLog,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = DriverPostgres }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "NEWSLETTER_DATABASE_DRIVER"},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, "NEWSLETTER_BASE_URL"},
		{"short secret outside dev", func(c *Config) { c.HMACSecret = "short" }, "NEWSLETTER_HMAC_SECRET"},
		{"short secret in dev", func(c *Config) { c.Env = "dev"; c.HMACSecret = "" }, ""},
		{"ses without sender", func(c *Config) { c.EmailDriver = EmailDriverSES }, "NEWSLETTER_EMAIL_SENDER"},
		{"unknown email driver", func(c *Config) { c.EmailDriver = "smtp" }, "NEWSLETTER_EMAIL_DRIVER"},
		{"non positive session ttl", func(c *Config) { c.SessionTTL = 0 }, "NEWSLETTER_SESSION_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
