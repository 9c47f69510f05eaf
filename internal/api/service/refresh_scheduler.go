package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-scanner/internal/api/config"
	"golang-stock-scanner/internal/scanner/dto"
	"golang-stock-scanner/internal/scanner/repository"
	"golang-stock-scanner/pkg/common"
	"golang-stock-scanner/pkg/logger"
	"golang-stock-scanner/pkg/utils"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// TaskPublisher appends refresh tasks to a stream.
type TaskPublisher interface {
	Publish(ctx context.Context, task dto.RefreshTask) error
}

type streamPublisher struct {
	redisClient *redis.Client
	maxLen      int64
}

// NewStreamPublisher publishes tasks to the scan refresh Redis stream.
func NewStreamPublisher(redisClient *redis.Client, maxLen int64) TaskPublisher {
	return &streamPublisher{redisClient: redisClient, maxLen: maxLen}
}

func (p *streamPublisher) Publish(ctx context.Context, task dto.RefreshTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamScanRefresh,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: p.maxLen,
		Approx: true,
	}).Err()
}

// RefreshScheduler periodically queues stale snapshots for a rescan.
type RefreshScheduler interface {
	Start(ctx context.Context)
	// Tick publishes the stale batch when the cron schedule is due at now.
	Tick(ctx context.Context, now time.Time) int
}

type refreshScheduler struct {
	cfg          config.Scheduler
	snapshotRepo repository.StockSnapshotRepository
	publisher    TaskPublisher
	logger       *logger.Logger
	schedule     cron.Schedule
	location     *time.Location
	nextRun      time.Time
}

// NewRefreshScheduler creates a RefreshScheduler. The cron expression uses the
// standard five fields or a descriptor such as "@hourly", evaluated in
// cfg.TimeZone (the B3 market zone when blank).
func NewRefreshScheduler(cfg config.Scheduler, snapshotRepo repository.StockSnapshotRepository, publisher TaskPublisher, log *logger.Logger) (RefreshScheduler, error) {
	if cfg.RefreshCron == "" {
		cfg.RefreshCron = "*/30 10-18 * * 1-5"
	}
	if cfg.PollingInterval <= 0 {
		cfg.PollingInterval = time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(cfg.RefreshCron)
	if err != nil {
		return nil, fmt.Errorf("parse refresh cron %q: %w", cfg.RefreshCron, err)
	}

	return &refreshScheduler{
		cfg:          cfg,
		snapshotRepo: snapshotRepo,
		publisher:    publisher,
		logger:       log,
		schedule:     schedule,
		location:     utils.LoadLocationOrDefault(cfg.TimeZone),
	}, nil
}

// Start polls until ctx is done.
func (s *refreshScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollingInterval)
	defer ticker.Stop()

	s.logger.Info("Refresh scheduler started",
		logger.StringField("cron", s.cfg.RefreshCron),
		logger.Field("polling_interval", s.cfg.PollingInterval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Refresh scheduler stopping")
			return
		case now := <-ticker.C:
			s.Tick(ctx, now.In(s.location))
		}
	}
}

func (s *refreshScheduler) Tick(ctx context.Context, now time.Time) int {
	if s.nextRun.IsZero() {
		s.nextRun = s.schedule.Next(now.Add(-s.cfg.PollingInterval))
	}
	if now.Before(s.nextRun) {
		return 0
	}
	s.nextRun = s.schedule.Next(now)

	stale, err := s.snapshotRepo.FindStale(ctx, now.Add(-s.cfg.StaleAfter), s.cfg.BatchSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to find stale snapshots", logger.ErrorField(err))
		return 0
	}

	published := 0
	for _, snapshot := range stale {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		task := dto.RefreshTask{
			Ticker:      snapshot.Ticker,
			Exchange:    snapshot.Exchange,
			RequestedAt: now,
		}
		if err := s.publisher.Publish(ctx, task); err != nil {
			s.logger.ErrorContext(ctx, "Failed to enqueue refresh task", logger.ErrorField(err), logger.StringField("ticker", snapshot.Ticker))
			continue
		}
		published++
	}

	s.logger.InfoContext(ctx, "Refresh tasks published",
		logger.IntField("published", published),
		logger.IntField("stale", len(stale)),
		logger.Field("next_run", s.nextRun))
	return published
}
