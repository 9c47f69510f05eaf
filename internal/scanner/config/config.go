package config

import (
	"time"

	"golang-stock-scanner/internal/indicator"
	"golang-stock-scanner/internal/scoring"
)

// GoogleFinance holds the quote page source settings.
type GoogleFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	UserAgent           string        `mapstructure:"user_agent"`
	AcceptLanguage      string        `mapstructure:"accept_language"`
}

// Scan holds extraction and scoring settings.
type Scan struct {
	Profile               string                    `mapstructure:"profile"`
	MinSharesOutstanding  float64                   `mapstructure:"min_shares_outstanding"`
	CacheTTL              time.Duration             `mapstructure:"cache_ttl"`
	SearchLimit           int                       `mapstructure:"search_limit"`
	DefaultTickers        []string                  `mapstructure:"default_tickers"`
	TickerTapeTTL         time.Duration             `mapstructure:"ticker_tape_ttl"`
	TickerTapeConcurrency int                       `mapstructure:"ticker_tape_concurrency"`
	Extractor             indicator.ExtractorConfig `mapstructure:"extractor"`
	Profiles              []scoring.Profile         `mapstructure:"profiles"`
}

// Seed holds the startup ticker seeding settings.
type Seed struct {
	Enabled  bool   `mapstructure:"enabled"`
	File     string `mapstructure:"file"`
	Exchange string `mapstructure:"exchange"`
}

const (
	DefaultGoogleFinanceBaseURL = "https://www.google.com/finance/quote"
	DefaultUserAgent            = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0 Safari/537.36"
)

// DefaultTickers is the ticker tape shown when none is configured.
var DefaultTickers = []string{"PETR4", "VALE3", "ITUB4", "BBAS3", "ABEV3", "MGLU3", "KLBN11", "WEGE3", "BBDC4"}

// WithDefaults fills unset Google Finance fields.
func (g GoogleFinance) WithDefaults() GoogleFinance {
	if g.BaseURL == "" {
		g.BaseURL = DefaultGoogleFinanceBaseURL
	}
	if g.Timeout <= 0 {
		g.Timeout = 20 * time.Second
	}
	if g.MaxRequestPerMinute <= 0 {
		g.MaxRequestPerMinute = 30
	}
	if g.UserAgent == "" {
		g.UserAgent = DefaultUserAgent
	}
	if g.AcceptLanguage == "" {
		g.AcceptLanguage = "en-US,en;q=0.9,pt-BR;q=0.8"
	}
	return g
}

// WithDefaults fills unset scan fields.
func (s Scan) WithDefaults() Scan {
	if s.Profile == "" {
		s.Profile = scoring.ProfileFundamentalsV1
	}
	if s.MinSharesOutstanding <= 0 {
		s.MinSharesOutstanding = indicator.DefaultMinSharesOutstanding
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = 15 * time.Minute
	}
	if s.SearchLimit <= 0 {
		s.SearchLimit = 20
	}
	if len(s.DefaultTickers) == 0 {
		s.DefaultTickers = DefaultTickers
	}
	if s.TickerTapeTTL <= 0 {
		s.TickerTapeTTL = 5 * time.Minute
	}
	if s.TickerTapeConcurrency <= 0 {
		s.TickerTapeConcurrency = 4
	}
	return s
}
