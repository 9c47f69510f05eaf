package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang-stock-scanner/internal/indicator"
	"golang-stock-scanner/internal/scanner/dto"
	"golang-stock-scanner/internal/scanner/service"
	"golang-stock-scanner/internal/scoring"
	"golang-stock-scanner/pkg/logger"
	"golang-stock-scanner/pkg/ratelimit"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanService struct {
	result  *dto.ScanResult
	err     error
	refresh bool
	exch    string
}

func (f *fakeScanService) Scan(_ context.Context, ticker, exchange string, refresh bool) (*dto.ScanResult, error) {
	f.refresh = refresh
	f.exch = exchange
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeScanService) Profiles() dto.ProfilesResponse {
	return dto.ProfilesResponse{Active: "fundamentals-v1", Available: []string{"balance-sheet-v2", "fundamentals-v1"}}
}

type fakeSearchService struct{}

func (fakeSearchService) Search(_ context.Context, term string) ([]dto.Suggestion, error) {
	if term == "" {
		return []dto.Suggestion{}, nil
	}
	return []dto.Suggestion{{Ticker: "PETR4", Name: "Petrobras"}}, nil
}

type fakeTickerService struct {
	err error
}

func (f fakeTickerService) Tape(context.Context) ([]dto.TickerQuote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []dto.TickerQuote{{Symbol: "PETR4", Price: 38.45}}, nil
}

func newTestServer(scan service.ScanService, tickers service.TickerService, limiter *ratelimit.IPLimiter) *echo.Echo {
	e := echo.New()
	if limiter != nil {
		e.Use(RateLimit(limiter))
	}
	e.GET("/health", HealthCheck)
	api := e.Group("/api/v1")
	NewScanHandler(scan, logger.NewNop()).RegisterRoutes(api)
	NewSearchHandler(fakeSearchService{}, logger.NewNop()).RegisterRoutes(api)
	NewTickerHandler(tickers, logger.NewNop()).RegisterRoutes(api)
	return e
}

func do(e *echo.Echo, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestScanHandler(t *testing.T) {
	result := &dto.ScanResult{
		Indicators: indicator.Record{Ticker: "PETR4", Exchange: "BVMF", Price: 38.45},
		Score:      scoring.Result{Score: 72.5, Verdict: scoring.VerdictPotentialBuy},
	}

	t.Run("ok", func(t *testing.T) {
		scan := &fakeScanService{result: result}
		rec := do(newTestServer(scan, fakeTickerService{}, nil), "/api/v1/scan/PETR4?exchange=BVMF&refresh=true", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body dto.ScanResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "PETR4", body.Indicators.Ticker)
		assert.Equal(t, scoring.VerdictPotentialBuy, body.Score.Verdict)
		assert.True(t, scan.refresh)
		assert.Equal(t, "BVMF", scan.exch)
	})

	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{name: "bad exchange", target: "/api/v1/scan/PETR4?exchange=B%20VMF", status: http.StatusBadRequest},
		{name: "bad refresh", target: "/api/v1/scan/PETR4?refresh=maybe", status: http.StatusBadRequest},
		{name: "invalid ticker", target: "/api/v1/scan/PETR4", err: service.ErrInvalidTicker, status: http.StatusBadRequest},
		{
			name:   "unknown upstream ticker",
			target: "/api/v1/scan/XXXX3",
			err:    &indicator.ExtractionError{Ticker: "XXXX3", StatusCode: http.StatusNotFound, Err: errors.New("status 404")},
			status: http.StatusNotFound,
		},
		{
			name:   "no price",
			target: "/api/v1/scan/PETR4",
			err:    &indicator.ExtractionError{Ticker: "PETR4", Err: indicator.ErrPriceNotFound},
			status: http.StatusBadGateway,
		},
		{name: "unexpected", target: "/api/v1/scan/PETR4", err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan := &fakeScanService{result: result, err: tt.err}
			rec := do(newTestServer(scan, fakeTickerService{}, nil), tt.target, nil)

			assert.Equal(t, tt.status, rec.Code)
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestSearchTickersAndProfiles(t *testing.T) {
	e := newTestServer(&fakeScanService{}, fakeTickerService{}, nil)

	rec := do(e, "/api/v1/search?q=petr", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"ticker":"PETR4","name":"Petrobras","score":null}]`, rec.Body.String())

	rec = do(e, "/api/v1/search", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(e, "/api/v1/tickers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"symbol":"PETR4","price":38.45,"change_percent":null}]`, rec.Body.String())

	rec = do(e, "/api/v1/profiles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active":"fundamentals-v1","available":["balance-sheet-v2","fundamentals-v1"]}`, rec.Body.String())

	failing := newTestServer(&fakeScanService{}, fakeTickerService{err: errors.New("boom")}, nil)
	rec = do(failing, "/api/v1/tickers", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewIPLimiter(ratelimit.Config{RequestsPerWindow: 2, Window: time.Minute})
	e := newTestServer(&fakeScanService{}, fakeTickerService{}, limiter)
	client := map[string]string{echo.HeaderXForwardedFor: "203.0.113.7, 10.0.0.1"}

	for i := 0; i < 2; i++ {
		rec := do(e, "/api/v1/profiles", client)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(e, "/api/v1/profiles", client)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests. Please slow down."}`, rec.Body.String())

	rec = do(e, "/api/v1/profiles", map[string]string{echo.HeaderXForwardedFor: "198.51.100.1"})
	assert.Equal(t, http.StatusOK, rec.Code, "another client is unaffected")

	rec = do(e, "/health", client)
	assert.Equal(t, http.StatusOK, rec.Code, "non-API paths are not limited")
}
