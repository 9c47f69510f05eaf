package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang-stock-scanner/internal/entity"
	"golang-stock-scanner/internal/indicator"
	"golang-stock-scanner/internal/scanner/dto"

	"github.com/stretchr/testify/mock"
)

type mockSnapshotRepository struct {
	mock.Mock
}

func (m *mockSnapshotRepository) Upsert(ctx context.Context, snapshot *entity.StockSnapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

func (m *mockSnapshotRepository) FindByTicker(ctx context.Context, ticker string) (*entity.StockSnapshot, error) {
	args := m.Called(ctx, ticker)
	snapshot, _ := args.Get(0).(*entity.StockSnapshot)
	return snapshot, args.Error(1)
}

func (m *mockSnapshotRepository) Search(ctx context.Context, term string, limit int) ([]entity.StockSnapshot, error) {
	args := m.Called(ctx, term, limit)
	snapshots, _ := args.Get(0).([]entity.StockSnapshot)
	return snapshots, args.Error(1)
}

func (m *mockSnapshotRepository) SeedTickers(ctx context.Context, snapshots []entity.StockSnapshot) (int64, error) {
	args := m.Called(ctx, snapshots)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSnapshotRepository) FindStale(ctx context.Context, olderThan time.Time, limit int) ([]entity.StockSnapshot, error) {
	args := m.Called(ctx, olderThan, limit)
	snapshots, _ := args.Get(0).([]entity.StockSnapshot)
	return snapshots, args.Error(1)
}

type mockScanCache struct {
	mock.Mock
}

func (m *mockScanCache) Get(ctx context.Context, ticker, exchange, profile string) (*dto.ScanResult, error) {
	args := m.Called(ctx, ticker, exchange, profile)
	result, _ := args.Get(0).(*dto.ScanResult)
	return result, args.Error(1)
}

func (m *mockScanCache) Set(ctx context.Context, result *dto.ScanResult, ttl time.Duration) error {
	return m.Called(ctx, result, ttl).Error(0)
}

// pageFetcher serves fixed pages keyed by ticker.
type pageFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (f *pageFetcher) Fetch(_ context.Context, ticker, _ string) (indicator.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ticker)
	f.mu.Unlock()

	if err := f.errs[ticker]; err != nil {
		return nil, err
	}
	return indicator.ParseHTML(strings.NewReader(f.pages[ticker]))
}

func (f *pageFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

const petr4Page = `
<div class="zzDege">Petrobras</div>
<div class="YMlKec fxKbKc">R$38,45</div>
<span class="JwB6zf">1,25%</span>
<div class="P6K39c"><div class="mfs7Fc">Market cap</div><div jsname="U8sYAd">500,2 bi</div></div>
<div class="P6K39c"><div class="mfs7Fc">P/E ratio</div><div jsname="U8sYAd">6,0</div></div>
<div class="P6K39c"><div class="mfs7Fc">Price to book</div><div jsname="U8sYAd">1,0</div></div>
<div class="P6K39c"><div class="mfs7Fc">ROE</div><div jsname="U8sYAd">25%</div></div>
<div class="P6K39c"><div class="mfs7Fc">EPS</div><div jsname="U8sYAd">4,10</div></div>
<div class="P6K39c"><div class="mfs7Fc">Dividend yield</div><div jsname="U8sYAd">14,5%</div></div>`
