package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang-stock-scanner/internal/entity"
	"golang-stock-scanner/internal/scanner/repository"
	"golang-stock-scanner/pkg/common"
	"golang-stock-scanner/pkg/logger"
)

// SeedService loads the known ticker universe into the snapshot table.
type SeedService interface {
	SeedFromFile(ctx context.Context, path string) (int64, error)
	Seed(ctx context.Context, r io.Reader) (int64, error)
}

type seedService struct {
	snapshotRepo repository.StockSnapshotRepository
	log          *logger.Logger
	exchange     string
}

// NewSeedService creates a SeedService; placeholders get the given exchange.
func NewSeedService(snapshotRepo repository.StockSnapshotRepository, log *logger.Logger, exchange string) SeedService {
	if exchange == "" {
		exchange = common.DefaultExchange
	}
	return &seedService{snapshotRepo: snapshotRepo, log: log, exchange: strings.ToUpper(exchange)}
}

func (s *seedService) SeedFromFile(ctx context.Context, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return s.Seed(ctx, f)
}

// Seed reads one ticker per line. Blank lines and lines starting with '#' are skipped.
// Tickers that already have a snapshot are left untouched.
func (s *seedService) Seed(ctx context.Context, r io.Reader) (int64, error) {
	tickers, err := ParseTickerList(r)
	if err != nil {
		return 0, err
	}

	snapshots := make([]entity.StockSnapshot, 0, len(tickers))
	for _, ticker := range tickers {
		snapshots = append(snapshots, entity.StockSnapshot{
			Ticker:      ticker,
			CompanyName: ticker,
			Exchange:    s.exchange,
		})
	}

	inserted, err := s.snapshotRepo.SeedTickers(ctx, snapshots)
	if err != nil {
		return 0, fmt.Errorf("seed tickers: %w", err)
	}
	s.log.InfoContext(ctx, "Seeded tickers",
		logger.IntField("read", len(tickers)),
		logger.Field("inserted", inserted),
	)
	return inserted, nil
}

// ParseTickerList returns the distinct, uppercased, valid tickers of r in order.
func ParseTickerList(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var tickers []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ticker, err := NormalizeTicker(line)
		if err != nil {
			continue
		}
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}
		tickers = append(tickers, ticker)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ticker list: %w", err)
	}
	return tickers, nil
}
