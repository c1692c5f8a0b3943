// Package app assembles the aid-finder bot on top of the reusable core.
package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/sanad-aid/sanadbot/core/config"
	coredatabase "github.com/sanad-aid/sanadbot/core/database"
	"github.com/sanad-aid/sanadbot/internal/dataset"
	"github.com/sanad-aid/sanadbot/internal/match"
)

// CatalogConfig lists the menu values offered during the dialogue.
// Empty lists fall back to the stock catalog.
type CatalogConfig struct {
	Services     []string `yaml:"services" envconfig:"CATALOG_SERVICES"`
	Governorates []string `yaml:"governorates" envconfig:"CATALOG_GOVERNORATES"`
}

// DatasetConfig locates the remote CSV export.
type DatasetConfig struct {
	CSVURL         string `yaml:"csv_url" envconfig:"DATASET_CSV_URL"`
	FetchTimeoutMS int    `yaml:"fetch_timeout_ms" envconfig:"DATASET_FETCH_TIMEOUT_MS"`
	// CacheTTLMS > 0 enables the snapshot cache; 0 keeps fetch-per-query.
	CacheTTLMS int             `yaml:"cache_ttl_ms" envconfig:"DATASET_CACHE_TTL_MS"`
	Columns    dataset.Columns `yaml:"columns"`
}

// MatchConfig tunes result derivation.
type MatchConfig struct {
	CountryCode string `yaml:"country_code" envconfig:"MATCH_COUNTRY_CODE"`
}

// HistoryConfig enables the optional search log.
type HistoryConfig struct {
	Enabled  bool                `yaml:"enabled" envconfig:"HISTORY_ENABLED"`
	Database coredatabase.Config `yaml:"database"`
}

// Config aggregates core and bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Catalog CatalogConfig `yaml:"catalog"`
	Dataset DatasetConfig `yaml:"dataset"`
	Match   MatchConfig   `yaml:"match"`
	History HistoryConfig `yaml:"history"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// FetchTimeout converts the configured fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Dataset.FetchTimeoutMS) * time.Millisecond
}

// CacheTTL converts the configured snapshot cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Dataset.CacheTTLMS) * time.Millisecond
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Dataset.CSVURL) == "" {
		return fmt.Errorf("dataset.csv_url is required")
	}
	if c.Dataset.FetchTimeoutMS < 0 {
		return fmt.Errorf("dataset.fetch_timeout_ms must be >= 0")
	}
	if c.Dataset.CacheTTLMS < 0 {
		return fmt.Errorf("dataset.cache_ttl_ms must be >= 0")
	}
	if strings.TrimSpace(c.Match.CountryCode) == "" {
		c.Match.CountryCode = match.DefaultCountryCode
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Database.Host) == "" {
		return fmt.Errorf("history.database.host is required when history.enabled is true")
	}
	return nil
}
