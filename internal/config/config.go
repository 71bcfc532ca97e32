package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	defaultPort               = "8080"
	defaultMaxSessionDuration = 12 * time.Hour
	defaultWeekdayLocale      = "da"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	return cfg
}

// Parse builds a Config from a variable lookup such as os.LookupEnv.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	// A helper function to get an optional env var with a default.
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	dbName := getEnv("DB_NAME", "")
	if dbName == "" {
		return Config{}, fmt.Errorf("required environment variable DB_NAME is not set")
	}

	maxDuration := defaultMaxSessionDuration
	if raw := getEnv("MAX_SESSION_DURATION", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MAX_SESSION_DURATION %q: %w", raw, err)
		}
		maxDuration = d
	}

	locale := getEnv("WEEKDAY_LOCALE", defaultWeekdayLocale)
	if locale != "en" && locale != "da" {
		return Config{}, fmt.Errorf("invalid WEEKDAY_LOCALE %q: must be en or da", locale)
	}

	cfg := Config{
		DBName:   dbName,
		Port:     getEnv("PORT", defaultPort),
		TenantID: getEnv("TENANT_ID", ""),
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN", ""),
		},
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnv("SLACK_CHANNEL_ID", ""),
		},
		ProjectID:          getEnv("GCP_PROJECT", ""),
		MaxSessionDuration: maxDuration,
		WeekdayLocale:      locale,
	}
	return cfg, nil
}
