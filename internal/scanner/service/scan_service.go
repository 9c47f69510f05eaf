package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang-stock-scanner/internal/entity"
	"golang-stock-scanner/internal/indicator"
	"golang-stock-scanner/internal/scanner/config"
	"golang-stock-scanner/internal/scanner/dto"
	"golang-stock-scanner/internal/scanner/repository"
	"golang-stock-scanner/internal/scoring"
	"golang-stock-scanner/pkg/logger"
	"golang-stock-scanner/pkg/utils"

	"gorm.io/datatypes"
)

// ErrInvalidTicker is returned for tickers that cannot be part of a quote URL.
var ErrInvalidTicker = errors.New("invalid ticker")

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,14}$`)

// ScanService runs the fetch, extract, derive and score pipeline for one ticker.
type ScanService interface {
	Scan(ctx context.Context, ticker, exchange string, refresh bool) (*dto.ScanResult, error)
	Profiles() dto.ProfilesResponse
}

type scanService struct {
	cfg          config.Scan
	log          *logger.Logger
	fetcher      indicator.Fetcher
	snapshotRepo repository.StockSnapshotRepository
	cacheRepo    repository.ScanCacheRepository
	extractor    *indicator.Extractor
	deriver      *indicator.Deriver
	engine       scoring.Engine
	catalog      scoring.Catalog
	profile      scoring.Profile
	now          func() time.Time
}

// NewScanService builds the pipeline from cfg. It fails when the configured
// profile or one of the custom profiles is invalid. snapshotRepo and cacheRepo
// may be nil, which skips persistence and caching.
func NewScanService(
	cfg config.Scan,
	log *logger.Logger,
	fetcher indicator.Fetcher,
	snapshotRepo repository.StockSnapshotRepository,
	cacheRepo repository.ScanCacheRepository,
) (ScanService, error) {
	cfg = cfg.WithDefaults()

	catalog := scoring.DefaultCatalog()
	if err := catalog.Merge(cfg.Profiles); err != nil {
		return nil, err
	}
	profile, err := catalog.Get(cfg.Profile)
	if err != nil {
		return nil, err
	}
	set, err := indicator.LookupMetricSet(profile.MetricSet)
	if err != nil {
		return nil, err
	}

	return &scanService{
		cfg:          cfg,
		log:          log,
		fetcher:      fetcher,
		snapshotRepo: snapshotRepo,
		cacheRepo:    cacheRepo,
		extractor:    indicator.NewExtractor(cfg.Extractor, set),
		deriver:      indicator.NewDeriver(cfg.MinSharesOutstanding),
		engine:       scoring.NewEngine(),
		catalog:      catalog,
		profile:      profile,
		now:          time.Now,
	}, nil
}

// NormalizeTicker uppercases and validates a ticker symbol.
func NormalizeTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !tickerPattern.MatchString(ticker) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}
	return ticker, nil
}

func (s *scanService) Scan(ctx context.Context, ticker, exchange string, refresh bool) (*dto.ScanResult, error) {
	ticker, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	exchange = s.extractor.ResolveExchange(exchange)

	if !refresh && s.cacheRepo != nil {
		cached, err := s.cacheRepo.Get(ctx, ticker, exchange, s.profile.Name)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to read cached scan result", logger.ErrorField(err), logger.StringField("ticker", ticker))
		} else if cached != nil {
			cached.Cached = true
			return cached, nil
		}
	}

	rec, err := indicator.Collect(ctx, s.fetcher, s.extractor, s.deriver, ticker, exchange)
	if err != nil {
		return nil, err
	}

	result := &dto.ScanResult{
		Indicators: rec,
		Score:      s.engine.Score(rec, s.profile),
		ScannedAt:  s.now(),
	}

	s.log.InfoContext(ctx, "Scanned ticker",
		logger.StringField("ticker", ticker),
		logger.StringField("exchange", exchange),
		logger.Float64Field("score", result.Score.Score),
		logger.StringField("verdict", string(result.Score.Verdict)),
	)

	if s.snapshotRepo != nil {
		s.persist(ctx, rec, result.Score)
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.Set(ctx, result, s.cfg.CacheTTL); err != nil {
			s.log.WarnContext(ctx, "Failed to cache scan result", logger.ErrorField(err), logger.StringField("ticker", ticker))
		}
	}

	return result, nil
}

func (s *scanService) Profiles() dto.ProfilesResponse {
	return dto.ProfilesResponse{
		Active:    s.profile.Name,
		Available: s.catalog.Names(),
	}
}

func (s *scanService) persist(ctx context.Context, rec indicator.Record, res scoring.Result) {
	snapshot, err := NewSnapshot(rec, res, s.extractor.MetricSet())
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to build stock snapshot", logger.ErrorField(err), logger.StringField("ticker", rec.Ticker))
		return
	}
	if err := s.snapshotRepo.Upsert(ctx, snapshot); err != nil {
		s.log.ErrorContext(ctx, "Failed to upsert stock snapshot", logger.ErrorField(err), logger.StringField("ticker", rec.Ticker))
	}
}

// NewSnapshot maps a scored record to its persisted form.
func NewSnapshot(rec indicator.Record, res scoring.Result, set indicator.MetricSet) (*entity.StockSnapshot, error) {
	metrics, err := json.Marshal(rec.Metrics)
	if err != nil {
		return nil, fmt.Errorf("encode metrics: %w", err)
	}
	breakdown, err := json.Marshal(res.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("encode breakdown: %w", err)
	}

	missing := rec.Missing(set)
	missingNames := make([]string, 0, len(missing))
	for _, key := range missing {
		missingNames = append(missingNames, string(key))
	}

	snapshot := &entity.StockSnapshot{
		Ticker:         rec.Ticker,
		CompanyName:    rec.CompanyName,
		Exchange:       rec.Exchange,
		Sector:         rec.Sector,
		Currency:       rec.Currency,
		Price:          utils.ToPointer(rec.Price),
		MetricSet:      rec.MetricSet,
		Metrics:        datatypes.JSON(metrics),
		MissingMetrics: missingNames,
		Score:          utils.ToPointer(res.Score),
		Verdict:        string(res.Verdict),
		Breakdown:      datatypes.JSON(breakdown),
	}
	if change, ok := rec.Value(indicator.MetricChangePercent); ok {
		snapshot.ChangePercent = utils.ToPointer(change)
	}
	return snapshot, nil
}
