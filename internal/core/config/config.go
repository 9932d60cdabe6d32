package config

import (
	"time"

	redisclient "github.com/vietddude/statusrelay/internal/infra/redis"
	"github.com/vietddude/statusrelay/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig       `yaml:"server"`
	Logging    LoggingConfig      `yaml:"logging"`
	Redis      redisclient.Config `yaml:"redis"`
	Database   postgres.Config    `yaml:"database"`
	Webhooks   WebhookConfig      `yaml:"webhooks"`
	Auth       AuthConfig         `yaml:"auth"`
	StatusPage StatusPageConfig   `yaml:"statuspage"`
	Monitor    MonitorConfig      `yaml:"monitor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// WebhookConfig holds the outbound chat webhooks. An empty URL disables the platform.
type WebhookConfig struct {
	DiscordURL string        `yaml:"discord_url"`
	SlackURL   string        `yaml:"slack_url"`
	Timeout    time.Duration `yaml:"timeout"`
	Timezone   string        `yaml:"timezone"` // IANA name used when rendering times; empty = UTC
}

// AuthConfig holds the single operator account and token settings.
type AuthConfig struct {
	Username     string        `yaml:"username"`
	PasswordHash string        `yaml:"password_hash"` // bcrypt
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	LoginPerMin  int           `yaml:"login_per_min"`
}

// StatusPageConfig points at the upstream status page API.
type StatusPageConfig struct {
	BaseURL  string        `yaml:"base_url"`
	BlockURL string        `yaml:"block_url"`
	PageURL  string        `yaml:"page_url"` // public page used for incident links
	Timeout  time.Duration `yaml:"timeout"`
}

// MonitorConfig holds block monitor settings.
type MonitorConfig struct {
	Network     string        `yaml:"network"`
	ExplorerURL string        `yaml:"explorer_url"` // block height is appended
	Interval    time.Duration `yaml:"interval"`     // 0 = rely on the cron endpoint
	CronSecret  string        `yaml:"cron_secret"`
}
