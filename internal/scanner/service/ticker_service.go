package service

import (
	"context"
	"time"

	"golang-stock-scanner/internal/indicator"
	"golang-stock-scanner/internal/scanner/dto"
	"golang-stock-scanner/pkg/common"
	"golang-stock-scanner/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// TickerService builds the ticker tape for the default tickers.
type TickerService interface {
	Tape(ctx context.Context) ([]dto.TickerQuote, error)
}

type tickerService struct {
	scanService ScanService
	log         *logger.Logger
	tickers     []string
	concurrency int
	cache       *cache.Cache
}

// NewTickerService creates a TickerService that memoizes the tape for ttl.
func NewTickerService(scanService ScanService, log *logger.Logger, tickers []string, concurrency int, ttl time.Duration) TickerService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &tickerService{
		scanService: scanService,
		log:         log,
		tickers:     tickers,
		concurrency: concurrency,
		cache:       cache.New(ttl, 2*ttl),
	}
}

// Tape scans the tickers concurrently, keeping their configured order.
// Tickers that fail are logged and left out.
func (s *tickerService) Tape(ctx context.Context) ([]dto.TickerQuote, error) {
	if cached, ok := s.cache.Get(common.CacheKeyTickerTape); ok {
		return cached.([]dto.TickerQuote), nil
	}

	quotes := make([]*dto.TickerQuote, len(s.tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, ticker := range s.tickers {
		g.Go(func() error {
			result, err := s.scanService.Scan(gctx, ticker, "", false)
			if err != nil {
				s.log.WarnContext(ctx, "Skipping ticker on tape", logger.ErrorField(err), logger.StringField("ticker", ticker))
				return nil
			}
			quote := &dto.TickerQuote{
				Symbol: result.Indicators.Ticker,
				Price:  result.Indicators.Price,
			}
			if change, ok := result.Indicators.Value(indicator.MetricChangePercent); ok {
				quote.ChangePercent = &change
			}
			quotes[i] = quote
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tape := make([]dto.TickerQuote, 0, len(quotes))
	for _, quote := range quotes {
		if quote != nil {
			tape = append(tape, *quote)
		}
	}
	if len(tape) > 0 {
		s.cache.SetDefault(common.CacheKeyTickerTape, tape)
	}
	return tape, nil
}
