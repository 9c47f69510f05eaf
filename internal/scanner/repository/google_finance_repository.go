package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-scanner/internal/indicator"
	"golang-stock-scanner/internal/scanner/config"
	"golang-stock-scanner/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// GoogleFinanceRepository fetches Google Finance quote pages.
type GoogleFinanceRepository interface {
	indicator.Fetcher
	QuoteURL(ticker, exchange string) string
}

type googleFinanceRepository struct {
	cfg            config.GoogleFinance
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewGoogleFinanceRepository creates a GoogleFinanceRepository.
func NewGoogleFinanceRepository(cfg config.GoogleFinance, log *logger.Logger) GoogleFinanceRepository {
	cfg = cfg.WithDefaults()
	secondsPerRequest := time.Minute / time.Duration(cfg.MaxRequestPerMinute)
	return &googleFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *googleFinanceRepository) QuoteURL(ticker, exchange string) string {
	return fmt.Sprintf("%s/%s:%s", strings.TrimRight(r.cfg.BaseURL, "/"), url.PathEscape(ticker), url.PathEscape(exchange))
}

// Fetch downloads and parses the quote page. Non-200 responses and transport
// failures are returned as *indicator.FetchError.
func (r *googleFinanceRepository) Fetch(ctx context.Context, ticker, exchange string) (indicator.Document, error) {
	quoteURL := r.QuoteURL(ticker, exchange)
	fields := []zap.Field{
		zap.String("url", quoteURL),
		zap.String("ticker", ticker),
		zap.String("exchange", exchange),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for request limit", append(fields, zap.Error(err))...)
		return nil, &indicator.FetchError{URL: quoteURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, quoteURL, nil)
	if err != nil {
		return nil, &indicator.FetchError{URL: quoteURL, Err: err}
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", r.cfg.AcceptLanguage)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to Google Finance", append(fields, zap.Error(err))...)
		return nil, &indicator.FetchError{URL: quoteURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.WarnContext(ctx, "Received non-OK response from Google Finance", append(fields, zap.Int("status_code", resp.StatusCode))...)
		return nil, &indicator.FetchError{
			StatusCode: resp.StatusCode,
			URL:        quoteURL,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to parse Google Finance page", append(fields, zap.Error(err))...)
		return nil, &indicator.FetchError{URL: quoteURL, Err: err}
	}

	r.log.DebugContext(ctx, "Fetched Google Finance page", fields...)
	return indicator.NewHTMLDocument(doc), nil
}
