package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	defaultStatusBaseURL = "https://status.zetachain.com/api/v2"
	defaultPageURL       = "https://status.zetachain.com"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Webhooks.Timeout == 0 {
		cfg.Webhooks.Timeout = 10 * time.Second
	}

	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Auth.LoginPerMin == 0 {
		cfg.Auth.LoginPerMin = 5
	}

	if cfg.StatusPage.BaseURL == "" {
		cfg.StatusPage.BaseURL = defaultStatusBaseURL
	}
	if cfg.StatusPage.BlockURL == "" {
		cfg.StatusPage.BlockURL = cfg.StatusPage.BaseURL + "/blocks/latest"
	}
	if cfg.StatusPage.PageURL == "" {
		cfg.StatusPage.PageURL = defaultPageURL
	}
	if cfg.StatusPage.Timeout == 0 {
		cfg.StatusPage.Timeout = 15 * time.Second
	}

	if cfg.Monitor.Network == "" {
		cfg.Monitor.Network = "Athens Testnet"
	}
	if cfg.Monitor.ExplorerURL == "" {
		cfg.Monitor.ExplorerURL = "https://explorer.zetachain.com/athens/block/"
	}

	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "zetalert"
	}
}
