package consumer

import (
	"context"
	"sync"
	"time"

	"golang-stock-scanner/internal/executor/config"
	"golang-stock-scanner/internal/executor/service"
	"golang-stock-scanner/pkg/common"
	"golang-stock-scanner/pkg/logger"
	"golang-stock-scanner/pkg/utils"
)

// RedisConsumer drives the executor service from the refresh stream.
type RedisConsumer struct {
	cfg             config.Executor
	executorService service.ExecutorService
	logger          *logger.Logger
	stopChan        chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(cfg config.Executor, executorService service.ExecutorService, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		cfg:             cfg.WithDefaults(),
		executorService: executorService,
		logger:          log,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the consumer's task processing loops.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.executorService.ProcessTask, common.RedisStreamScanRefresh, c.cfg.ProcessTimeout)
	c.RegisterTickerHandler(ctx, c.executorService.ProcessRetries, c.cfg.RetryInterval, c.cfg.ProcessTimeout, common.RedisStreamScanRefresh+"-retry")
}

// RegisterStreamHandler calls fn in a loop until ctx is cancelled or Stop is called.
func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.StringField("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Stream handler stopping due to context cancellation", logger.StringField("stream", streamName))
				return
			case <-c.stopChan:
				c.logger.Info("Stream handler stopping", logger.StringField("stream", streamName))
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// RegisterTickerHandler calls fn every interval.
func (c *RedisConsumer) RegisterTickerHandler(ctx context.Context, fn func(ctx context.Context), interval time.Duration, timeout time.Duration, name string) {
	c.logger.Info("Registering ticker handler",
		logger.StringField("name", name),
		logger.Field("interval", interval),
		logger.Field("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				c.logger.Info("Ticker handler stopping due to context cancellation", logger.StringField("name", name))
				return
			case <-c.stopChan:
				c.logger.Info("Ticker handler stopping", logger.StringField("name", name))
				return
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
