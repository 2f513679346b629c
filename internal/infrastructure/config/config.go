// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Reference data sources
const (
	ReferenceSourceFile     = "file"
	ReferenceSourcePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxInputBytes int

	// HTTP API
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Parsing defaults, "24h" or "12h"
	SegmentTimeFormat string
	TransitTimeFormat string

	// Reference data
	ReferenceSource  string
	ReferenceDataDir string
	PostgresDSN      string

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// Gmail
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailRedirectURL  string
	GmailPollInterval time.Duration

	// Alerting
	AlertWebhookURL string
	AlertToken      string
	AlertChatID     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:    getEnv("APP_VERSION", "1.0.0"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Port:          getEnv("PORT", "8080"),
		ReadTimeout:   time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout:  time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,
		MaxInputBytes: getEnvAsInt("MAX_INPUT_BYTES", 64*1024),

		CORSOrigins:       getEnvAsList("CORS_ORIGINS"),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 200),
		RateLimitWindow:   time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW", 15*60)) * time.Second,

		SegmentTimeFormat: strings.ToLower(getEnv("SEGMENT_TIME_FORMAT", "24h")),
		TransitTimeFormat: strings.ToLower(getEnv("TRANSIT_TIME_FORMAT", "24h")),

		ReferenceSource:  strings.ToLower(getEnv("REFERENCE_SOURCE", ReferenceSourceFile)),
		ReferenceDataDir: getEnv("REFERENCE_DATA_DIR", "data"),
		PostgresDSN:      getEnv("POSTGRES_DSN", ""),

		MongoURI:      getEnv("MONGODB_DSN", ""),
		MongoDB:       getEnv("MONGO_DB", "pnr"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailRedirectURL:  getEnv("GMAIL_REDIRECT_URL", "urn:ietf:wg:oauth:2.0:oob"),
		GmailPollInterval: time.Duration(getEnvAsInt("GMAIL_POLL_INTERVAL", 60)) * time.Second,

		AlertWebhookURL: getEnv("ALERT_WEBHOOK_URL", "https://api.telegram.org"),
		AlertToken:      getEnv("ALERT_TOKEN", ""),
		AlertChatID:     getEnv("ALERT_CHAT_ID", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks combinations the service cannot start with
func (c *Config) Validate() error {
	switch c.ReferenceSource {
	case ReferenceSourceFile:
		if c.ReferenceDataDir == "" {
			return fmt.Errorf("REFERENCE_DATA_DIR is required for the file reference source")
		}
	case ReferenceSourcePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres reference source")
		}
	default:
		return fmt.Errorf("unknown REFERENCE_SOURCE %q", c.ReferenceSource)
	}

	for key, v := range map[string]string{
		"SEGMENT_TIME_FORMAT": c.SegmentTimeFormat,
		"TRANSIT_TIME_FORMAT": c.TransitTimeFormat,
	} {
		if v != "24h" && v != "12h" {
			return fmt.Errorf("%s must be 24h or 12h, got %q", key, v)
		}
	}

	if c.MaxInputBytes <= 0 {
		return fmt.Errorf("MAX_INPUT_BYTES must be positive, got %d", c.MaxInputBytes)
	}
	if c.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative, got %d", c.RateLimitRequests)
	}
	return nil
}

// GmailEnabled reports whether mailbox intake has credentials
func (c *Config) GmailEnabled() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != ""
}

// AlertsEnabled reports whether suspicious conversions can be reported
func (c *Config) AlertsEnabled() bool {
	return c.AlertToken != "" && c.AlertChatID != ""
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty items
func getEnvAsList(key string) []string {
	var items []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
