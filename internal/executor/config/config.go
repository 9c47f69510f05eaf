package config

import (
	"time"

	scannerconfig "golang-stock-scanner/internal/scanner/config"
	"golang-stock-scanner/pkg/config"
)

// Executor holds executor-specific configuration.
type Executor struct {
	MaxConcurrentTasks int           `mapstructure:"max_concurrent_tasks"`
	BatchSize          int64         `mapstructure:"batch_size"`
	ReadBlock          time.Duration `mapstructure:"read_block"`
	ProcessTimeout     time.Duration `mapstructure:"process_timeout"`

	// Pending message recovery
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
	MaxIdleDuration time.Duration `mapstructure:"max_idle_duration"`
	MaxRetry        int64         `mapstructure:"max_retry"`
}

// WithDefaults fills zero values.
func (e Executor) WithDefaults() Executor {
	if e.MaxConcurrentTasks <= 0 {
		e.MaxConcurrentTasks = 4
	}
	if e.BatchSize <= 0 {
		e.BatchSize = 10
	}
	if e.ReadBlock <= 0 {
		e.ReadBlock = 2 * time.Second
	}
	if e.ProcessTimeout <= 0 {
		e.ProcessTimeout = 5 * time.Minute
	}
	if e.RetryInterval <= 0 {
		e.RetryInterval = time.Minute
	}
	if e.MaxIdleDuration <= 0 {
		e.MaxIdleDuration = 5 * time.Minute
	}
	if e.MaxRetry <= 0 {
		e.MaxRetry = 3
	}
	return e
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the executor service.
type Config struct {
	App           config.App                  `mapstructure:"app"`
	Logger        config.Logger               `mapstructure:"logger"`
	Database      config.Database             `mapstructure:"database"`
	Redis         config.Redis                `mapstructure:"redis"`
	Executor      Executor                    `mapstructure:"executor"`
	Telegram      Telegram                    `mapstructure:"telegram"`
	GoogleFinance scannerconfig.GoogleFinance `mapstructure:"google_finance"`
	Scan          scannerconfig.Scan          `mapstructure:"scan"`
}

// Load loads the executor configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.Executor = cfg.Executor.WithDefaults()
	return &cfg, nil
}
