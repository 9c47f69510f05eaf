package config

import (
	"time"

	scannerconfig "golang-stock-scanner/internal/scanner/config"
	"golang-stock-scanner/pkg/config"
	"golang-stock-scanner/pkg/ratelimit"
)

// Scheduler holds the refresh scheduler configuration.
type Scheduler struct {
	Enabled         bool          `mapstructure:"enabled"`
	PollingInterval time.Duration `mapstructure:"polling_interval"`
	RefreshCron     string        `mapstructure:"refresh_cron"`
	StaleAfter      time.Duration `mapstructure:"stale_after"`
	BatchSize       int           `mapstructure:"batch_size"`
	TimeZone        string        `mapstructure:"time_zone"`
}

// Config holds the full configuration for the API service.
type Config struct {
	App           config.App                  `mapstructure:"app"`
	Logger        config.Logger               `mapstructure:"logger"`
	Database      config.Database             `mapstructure:"database"`
	Redis         config.Redis                `mapstructure:"redis"`
	API           config.API                  `mapstructure:"api"`
	GoogleFinance scannerconfig.GoogleFinance `mapstructure:"google_finance"`
	Scan          scannerconfig.Scan          `mapstructure:"scan"`
	Seed          scannerconfig.Seed          `mapstructure:"seed"`
	RateLimit     ratelimit.Config            `mapstructure:"rate_limit"`
	Scheduler     Scheduler                   `mapstructure:"scheduler"`
}

// Load loads the API configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
