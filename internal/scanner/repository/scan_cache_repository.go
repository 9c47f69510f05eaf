package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-stock-scanner/internal/scanner/dto"
	"golang-stock-scanner/pkg/common"

	"github.com/redis/go-redis/v9"
)

// ScanCacheRepository keeps recent scan results in Redis.
type ScanCacheRepository interface {
	// Get returns nil without error on a cache miss.
	Get(ctx context.Context, ticker, exchange, profile string) (*dto.ScanResult, error)
	Set(ctx context.Context, result *dto.ScanResult, ttl time.Duration) error
}

type scanCacheRepository struct {
	redisClient *redis.Client
}

// NewScanCacheRepository creates a ScanCacheRepository.
func NewScanCacheRepository(redisClient *redis.Client) ScanCacheRepository {
	return &scanCacheRepository{redisClient: redisClient}
}

func scanResultKey(ticker, exchange, profile string) string {
	return fmt.Sprintf(common.RedisKeyScanResult, strings.ToUpper(ticker), strings.ToUpper(exchange), profile)
}

func (r *scanCacheRepository) Get(ctx context.Context, ticker, exchange, profile string) (*dto.ScanResult, error) {
	raw, err := r.redisClient.Get(ctx, scanResultKey(ticker, exchange, profile)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result dto.ScanResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode cached scan result: %w", err)
	}
	return &result, nil
}

func (r *scanCacheRepository) Set(ctx context.Context, result *dto.ScanResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode scan result: %w", err)
	}
	key := scanResultKey(result.Indicators.Ticker, result.Indicators.Exchange, result.Score.Profile)
	return r.redisClient.Set(ctx, key, payload, ttl).Err()
}
