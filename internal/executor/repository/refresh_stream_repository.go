package repository

import (
	"context"
	"errors"
	"time"

	"golang-stock-scanner/pkg/common"

	"github.com/redis/go-redis/v9"
)

// RefreshStreamRepository reads and acknowledges scan refresh tasks.
type RefreshStreamRepository interface {
	// Read returns up to count new messages for this consumer, blocking at most block.
	Read(ctx context.Context, count int64, block time.Duration) ([]redis.XMessage, error)
	// ClaimIdle takes over messages left pending longer than minIdle.
	ClaimIdle(ctx context.Context, minIdle time.Duration, count int64) ([]redis.XMessage, error)
	// DeliveryCount is how many times the message was handed out.
	DeliveryCount(ctx context.Context, id string) (int64, error)
	Ack(ctx context.Context, ids ...string) error
}

type refreshStreamRepository struct {
	redisClient *redis.Client
	stream      string
	group       string
	consumer    string
}

// NewRefreshStreamRepository creates a repository over the scan refresh stream.
func NewRefreshStreamRepository(redisClient *redis.Client) RefreshStreamRepository {
	return &refreshStreamRepository{
		redisClient: redisClient,
		stream:      common.RedisStreamScanRefresh,
		group:       common.RedisStreamGroup,
		consumer:    common.RedisStreamConsumer,
	}
}

func (r *refreshStreamRepository) Read(ctx context.Context, count int64, block time.Duration) ([]redis.XMessage, error) {
	streams, err := r.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    r.group,
		Consumer: r.consumer,
		Streams:  []string{r.stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(streams) == 0 {
		return nil, nil
	}
	return streams[0].Messages, nil
}

func (r *refreshStreamRepository) ClaimIdle(ctx context.Context, minIdle time.Duration, count int64) ([]redis.XMessage, error) {
	msgs, _, err := r.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   r.stream,
		Group:    r.group,
		Consumer: r.consumer + "-retry",
		MinIdle:  minIdle,
		Start:    "0",
		Count:    count,
	}).Result()
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *refreshStreamRepository) DeliveryCount(ctx context.Context, id string) (int64, error) {
	pending, err := r.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: r.stream,
		Group:  r.group,
		Start:  id,
		End:    id,
		Count:  1,
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	return pending[0].RetryCount, nil
}

func (r *refreshStreamRepository) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	pipe := r.redisClient.TxPipeline()
	pipe.XAck(ctx, r.stream, r.group, ids...)
	pipe.XDel(ctx, r.stream, ids...)
	_, err := pipe.Exec(ctx)
	return err
}
