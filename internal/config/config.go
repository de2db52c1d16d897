package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logging  LoggingConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Payments PaymentsConfig
	Uploads  UploadsConfig
	Orders   OrdersConfig
	SeedFile string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr           string   // Listen address (host:port)
	AllowedOrigins []string // CORS origins for the public site and admin SPA
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	URL    string // file path for sqlite, DSN for postgres
}

// RedisConfig holds Redis configuration (task queue + content cache)
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// AuthConfig holds session/token configuration
type AuthConfig struct {
	TokenTTLHours int    // Session token lifetime
	CookieDomain  string // Optional cookie domain override
	CookieSecure  bool   // Set Secure on the session cookie
}

// SMTPConfig holds outbound email configuration.
// When Host is empty, emails are logged instead of sent.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// PaymentsConfig holds payment provider configuration.
// When Endpoint is empty, checkout runs without a payment intent.
type PaymentsConfig struct {
	Endpoint string // Provider API base URL
	APIKey   string
}

// UploadsConfig holds gallery upload configuration
type UploadsConfig struct {
	Dir       string // Directory uploaded files are written to
	MaxSizeMB int    // Per-file size limit
}

// OrdersConfig holds order maintenance configuration
type OrdersConfig struct {
	PendingMaxAgeHours int // Pending orders older than this are cancelled by the worker
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			AllowedOrigins: []string{getEnv("SITE_ORIGIN", "http://localhost:5173")},
		},
		Database: DatabaseConfig{
			Driver: getEnv("DATABASE_DRIVER", "sqlite"),
			URL:    getEnv("DATABASE_URL", "graylock.sqlite"),
		},
		Redis: RedisConfig{
			Address: getEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			TokenTTLHours: getEnvInt("AUTH_TOKEN_TTL_HOURS", 24),
			CookieDomain:  getEnv("AUTH_COOKIE_DOMAIN", ""),
			CookieSecure:  getEnvBool("AUTH_COOKIE_SECURE", false),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@graylock.example"),
		},
		Payments: PaymentsConfig{
			Endpoint: getEnv("PAYMENT_ENDPOINT", ""),
			APIKey:   getEnv("PAYMENT_API_KEY", ""),
		},
		Uploads: UploadsConfig{
			Dir:       getEnv("UPLOAD_DIR", "uploads"),
			MaxSizeMB: getEnvInt("UPLOAD_MAX_SIZE_MB", 10),
		},
		Orders: OrdersConfig{
			PendingMaxAgeHours: getEnvInt("ORDER_PENDING_MAX_AGE_HOURS", 48),
		},
		SeedFile: getEnv("SEED_FILE", ""),
	}

	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (expected sqlite or postgres)", cfg.Database.Driver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
