package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang-stock-scanner/internal/executor/config"
	"golang-stock-scanner/internal/executor/repository"
	"golang-stock-scanner/internal/indicator"
	"golang-stock-scanner/internal/scanner/dto"
	scannerrepo "golang-stock-scanner/internal/scanner/repository"
	scannerservice "golang-stock-scanner/internal/scanner/service"
	"golang-stock-scanner/internal/scoring"
	"golang-stock-scanner/pkg/common"
	"golang-stock-scanner/pkg/logger"
	"golang-stock-scanner/pkg/telegram"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// ExecutorService rescans the tickers queued on the refresh stream.
type ExecutorService interface {
	ProcessTask(ctx context.Context)
	ProcessRetries(ctx context.Context)
	Execute(ctx context.Context, task dto.RefreshTask) error
}

type executorService struct {
	cfg          config.Executor
	logger       *logger.Logger
	streamRepo   repository.RefreshStreamRepository
	snapshotRepo scannerrepo.StockSnapshotRepository
	scanService  scannerservice.ScanService
	notifier     telegram.Notifier
	now          func() time.Time
}

// NewExecutorService creates a new ExecutorService. notifier may be nil, which disables alerts.
func NewExecutorService(
	cfg config.Executor,
	log *logger.Logger,
	streamRepo repository.RefreshStreamRepository,
	snapshotRepo scannerrepo.StockSnapshotRepository,
	scanService scannerservice.ScanService,
	notifier telegram.Notifier,
) ExecutorService {
	return &executorService{
		cfg:          cfg.WithDefaults(),
		logger:       log,
		streamRepo:   streamRepo,
		snapshotRepo: snapshotRepo,
		scanService:  scanService,
		notifier:     notifier,
		now:          time.Now,
	}
}

// ProcessTask reads one batch of new tasks and scans them concurrently.
func (s *executorService) ProcessTask(ctx context.Context) {
	msgs, err := s.streamRepo.Read(ctx, s.cfg.BatchSize, s.cfg.ReadBlock)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		s.logger.Error("Failed to read from stream", logger.ErrorField(err), logger.StringField("stream", common.RedisStreamScanRefresh))
		return
	}
	if len(msgs) == 0 {
		return
	}

	s.logger.Debug("Processing refresh batch", logger.IntField("size", len(msgs)))
	s.processBatch(ctx, msgs, func(msg redis.XMessage, done bool) {
		if !done {
			return
		}
		s.ack(ctx, msg.ID)
	})
}

// ProcessRetries reclaims tasks left pending by failed or crashed runs. A task
// that keeps failing is dropped after MaxRetry deliveries.
func (s *executorService) ProcessRetries(ctx context.Context) {
	msgs, err := s.streamRepo.ClaimIdle(ctx, s.cfg.MaxIdleDuration, s.cfg.BatchSize)
	if err != nil {
		s.logger.Error("Failed to claim pending refresh tasks", logger.ErrorField(err))
		return
	}
	if len(msgs) == 0 {
		s.logger.Debug("Retry No pending messages found", logger.StringField("stream", common.RedisStreamScanRefresh))
		return
	}

	s.logger.Info("Found pending messages", logger.IntField("count", len(msgs)))
	s.processBatch(ctx, msgs, func(msg redis.XMessage, done bool) {
		if done {
			s.ack(ctx, msg.ID)
			return
		}

		deliveries, err := s.streamRepo.DeliveryCount(ctx, msg.ID)
		if err != nil {
			s.logger.Error("Failed to get pending info", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
			return
		}
		if deliveries < s.cfg.MaxRetry {
			return
		}

		s.logger.Error("pending msg retry count exceeded",
			logger.StringField("message_id", msg.ID),
			logger.IntField("retry_count", int(deliveries)),
			logger.IntField("max_retry", int(s.cfg.MaxRetry)),
		)
		s.alertDropped(msg)
		s.ack(ctx, msg.ID)
	})
}

// processBatch runs up to MaxConcurrentTasks messages at once and reports whether
// each one is finished (succeeded, malformed or permanently failed).
func (s *executorService) processBatch(ctx context.Context, msgs []redis.XMessage, settle func(msg redis.XMessage, done bool)) {
	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrentTasks)

	for _, msg := range msgs {
		g.Go(func() error {
			settle(msg, s.handle(ctx, msg))
			return nil
		})
	}
	_ = g.Wait()
}

func (s *executorService) handle(ctx context.Context, msg redis.XMessage) bool {
	task, err := decodeTask(msg)
	if err != nil {
		s.logger.Error("Failed to decode refresh task", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
		return true
	}

	if err := s.Execute(ctx, task); err != nil {
		s.logger.Error("Refresh scan failed",
			logger.ErrorField(err),
			logger.StringField("message_id", msg.ID),
			logger.StringField("ticker", task.Ticker),
		)
		return isPermanent(err)
	}
	return true
}

// Execute rescans one ticker, bypassing the cache, and alerts when its verdict
// becomes potential buy.
func (s *executorService) Execute(ctx context.Context, task dto.RefreshTask) error {
	previous, known := s.previousVerdict(ctx, task.Ticker)

	result, err := s.scanService.Scan(ctx, task.Ticker, task.Exchange, true)
	if err != nil {
		return fmt.Errorf("scan %s: %w", task.Ticker, err)
	}

	s.logger.Info("Ticker refreshed",
		logger.StringField("ticker", result.Indicators.Ticker),
		logger.Float64Field("score", result.Score.Score),
		logger.StringField("verdict", string(result.Score.Verdict)),
	)

	if known && result.Score.Verdict == scoring.VerdictPotentialBuy && previous != string(scoring.VerdictPotentialBuy) {
		s.notify(result, previous)
	}
	return nil
}

// previousVerdict reports the stored verdict; known is false when the lookup failed.
func (s *executorService) previousVerdict(ctx context.Context, ticker string) (string, bool) {
	snapshot, err := s.snapshotRepo.FindByTicker(ctx, ticker)
	if err != nil {
		if errors.Is(err, scannerrepo.ErrSnapshotNotFound) {
			return "", true
		}
		s.logger.Warn("Failed to load previous snapshot", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return "", false
	}
	return snapshot.Verdict, true
}

func (s *executorService) notify(result *dto.ScanResult, previous string) {
	ticker := result.Indicators.Ticker
	if s.notifier == nil {
		s.logger.Debug("Telegram not configured, skipping alert", logger.StringField("ticker", ticker))
		return
	}
	msg := telegram.FormatScanAlert(result.Indicators, result.Score, previous, s.now())
	if err := s.notifier.SendMessage(msg); err != nil {
		s.logger.Error("Failed to send telegram alert", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return
	}
	s.logger.Info("Verdict alert sent", logger.StringField("ticker", ticker))
}

func (s *executorService) alertDropped(msg redis.XMessage) {
	if s.notifier == nil {
		return
	}
	payload, _ := msg.Values["payload"].(string)
	errType := fmt.Sprintf("Retry count exceeded for event %s", common.RedisStreamScanRefresh)
	text := telegram.FormatErrorAlert(s.now(), errType, "refresh task dropped", payload)
	if err := s.notifier.SendMessage(text); err != nil {
		s.logger.Error("Failed to send telegram message retry exceeded", logger.ErrorField(err), logger.StringField("message_id", msg.ID))
	}
}

func (s *executorService) ack(ctx context.Context, id string) {
	if err := s.streamRepo.Ack(ctx, id); err != nil {
		s.logger.Error("Failed to acknowledge refresh task", logger.ErrorField(err), logger.StringField("message_id", id))
	}
}

func decodeTask(msg redis.XMessage) (dto.RefreshTask, error) {
	var task dto.RefreshTask
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		return task, errors.New("field 'payload' not found or not a string in stream message")
	}
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return task, fmt.Errorf("failed to unmarshal task data: %w", err)
	}
	if strings.TrimSpace(task.Ticker) == "" {
		return task, errors.New("refresh task without ticker")
	}
	return task, nil
}

// isPermanent reports failures a retry cannot fix.
func isPermanent(err error) bool {
	if errors.Is(err, scannerservice.ErrInvalidTicker) {
		return true
	}
	var extErr *indicator.ExtractionError
	if errors.As(err, &extErr) {
		return extErr.StatusCode == http.StatusNotFound || errors.Is(err, indicator.ErrPriceNotFound)
	}
	return false
}
