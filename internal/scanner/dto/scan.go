package dto

import (
	"time"

	"golang-stock-scanner/internal/indicator"
	"golang-stock-scanner/internal/scoring"
)

// ScanResult is the response of a single ticker scan.
type ScanResult struct {
	Indicators indicator.Record `json:"indicators"`
	Score      scoring.Result   `json:"score"`
	ScannedAt  time.Time        `json:"scanned_at"`
	Cached     bool             `json:"cached"`
}

// Suggestion is one search hit.
type Suggestion struct {
	Ticker string   `json:"ticker"`
	Name   string   `json:"name"`
	Score  *float64 `json:"score"`
}

// TickerQuote is one entry of the ticker tape.
type TickerQuote struct {
	Symbol        string   `json:"symbol"`
	Price         float64  `json:"price"`
	ChangePercent *float64 `json:"change_percent"`
}

// ProfilesResponse lists the scoring profiles.
type ProfilesResponse struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

// RefreshTask is the payload published on the scan refresh stream.
type RefreshTask struct {
	Ticker      string    `json:"ticker"`
	Exchange    string    `json:"exchange"`
	RequestedAt time.Time `json:"requested_at"`
}
