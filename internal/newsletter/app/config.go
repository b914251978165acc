package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	EmailDriverSES = "ses"
	EmailDriverLog = "log"
)

// minHMACSecretLength matches the flash cookie signing key requirement.
const minHMACSecretLength = 32

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8000)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: newsletter.db)
	DatabaseURL    string // Postgres DSN, required with the postgres driver

	BaseURL       string        // Public origin used in confirmation links
	RedisURL      string        // Session store (default: redis://127.0.0.1:6379/0)
	SessionTTL    time.Duration // Idle session lifetime (default: 24h)
	HMACSecret    string        // Flash cookie signing key
	SecureCookies bool          // Mark cookies Secure (default: true outside dev)

	EmailDriver  string        // ses or log (default: log)
	EmailSender  string        // From address for outgoing mail
	EmailTimeout time.Duration // Per-send timeout (default: 10s)
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
	SESEndpoint  string // Optional SES endpoint override

	HashWorkers int           // Password hashing pool size (default: GOMAXPROCS)
	HashTimeout time.Duration // Wait for a free hashing worker (default: 5s)

	PendingRetention     time.Duration // Age after which unconfirmed subscribers are purged (default: 30 days, 0 disables)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	return Config{
		Env:       env,
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8000),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("NEWSLETTER_DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("NEWSLETTER_DATABASE_FILE", "newsletter.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		BaseURL:       strings.TrimRight(getEnvOrDefault("NEWSLETTER_BASE_URL", "http://127.0.0.1:8000"), "/"),
		RedisURL:      getEnvOrDefault("REDIS_URL", "redis://127.0.0.1:6379/0"),
		SessionTTL:    getEnvDurationOrDefault("NEWSLETTER_SESSION_TTL", 24*time.Hour),
		HMACSecret:    os.Getenv("NEWSLETTER_HMAC_SECRET"),
		SecureCookies: getEnvBoolOrDefault("NEWSLETTER_SECURE_COOKIES", env != "dev"),

		EmailDriver:  strings.ToLower(getEnvOrDefault("NEWSLETTER_EMAIL_DRIVER", EmailDriverLog)),
		EmailSender:  os.Getenv("NEWSLETTER_EMAIL_SENDER"),
		EmailTimeout: getEnvDurationOrDefault("NEWSLETTER_EMAIL_TIMEOUT", 10*time.Second),
		AWSRegion:    os.Getenv("AWS_REGION"),
		AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SESEndpoint:  os.Getenv("NEWSLETTER_SES_ENDPOINT"),

		HashWorkers: getEnvIntOrDefault("NEWSLETTER_HASH_WORKERS", 0),
		HashTimeout: getEnvDurationOrDefault("NEWSLETTER_HASH_TIMEOUT", 5*time.Second),

		PendingRetention:     getEnvDurationOrDefault("NEWSLETTER_PENDING_RETENTION", 30*24*time.Hour),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("NEWSLETTER_DATABASE_FILE must not be empty"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required with the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NEWSLETTER_DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	if c.BaseURL == "" {
		errs = append(errs, errors.New("NEWSLETTER_BASE_URL must not be empty"))
	}

	switch c.EmailDriver {
	case EmailDriverLog:
	case EmailDriverSES:
		if c.EmailSender == "" {
			errs = append(errs, errors.New("NEWSLETTER_EMAIL_SENDER is required with the ses email driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NEWSLETTER_EMAIL_DRIVER %q", c.EmailDriver))
	}

	if c.Env != "dev" && len(c.HMACSecret) < minHMACSecretLength {
		errs = append(errs, fmt.Errorf("NEWSLETTER_HMAC_SECRET must be at least %d bytes outside dev", minHMACSecretLength))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("NEWSLETTER_SESSION_TTL must be positive"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
