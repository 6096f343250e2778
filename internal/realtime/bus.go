package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/types"
)

// RewardMessage is the wire shape fanned out over redis when a reward is
// produced. Delivery is best-effort; the durable record is the database row.
type RewardMessage struct {
	UserID uuid.UUID          `json:"user_id"`
	Event  *types.RewardEvent `json:"event"`
}

type RewardBus interface {
	PublishReward(ctx context.Context, userID uuid.UUID, event *types.RewardEvent) error
	StartForwarder(ctx context.Context, onMsg func(m RewardMessage)) error
	Close() error
}

type redisRewardBus struct {
	log     *logger.Logger
	rdb     *redis.Client
	channel string
}

// NewRedisRewardBus connects to REDIS_ADDR. Callers that run without redis
// should treat a missing address as "no realtime fan-out", not a fatal error.
func NewRedisRewardBus(log *logger.Logger) (RewardBus, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_REWARD_CHANNEL"))
	if ch == "" {
		ch = "rewards"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisRewardBus{
		log:     log.With("service", "RedisRewardBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *redisRewardBus) PublishReward(ctx context.Context, userID uuid.UUID, event *types.RewardEvent) error {
	raw, err := json.Marshal(RewardMessage{UserID: userID, Event: event})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisRewardBus) StartForwarder(ctx context.Context, onMsg func(m RewardMessage)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var msg RewardMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad redis reward payload", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *redisRewardBus) Close() error {
	return b.rdb.Close()
}
