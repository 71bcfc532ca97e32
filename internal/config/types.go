package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName   string
	Port     string
	TenantID string
	Turso    TursoConfig
	Slack    SlackConfig
	// ProjectID is the GCP project events are published to. Empty disables events.
	ProjectID string
	// MaxSessionDuration is how long a session may stay active before it is ended on read.
	MaxSessionDuration time.Duration
	WeekdayLocale      string
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

// Enabled reports whether session summaries can be posted.
func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
