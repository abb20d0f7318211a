package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/poscore/backend/internal/application/notification"
)

// channelPrefix scopes the pub/sub channels so unrelated consumers on
// the same Redis instance never collide with ours.
const channelPrefix = "poscore:notifications:"

// RedisConfig holds the connection parameters for the Redis sink
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisNotifier publishes notifications to Redis pub/sub, one channel
// per topic. Subscribers (dashboards, alerting relays) attach to the
// channels they care about. Delivery is fire-and-forget.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier creates a RedisNotifier and verifies the connection
func NewRedisNotifier(cfg RedisConfig, logger *zap.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisNotifier{client: client, logger: logger}, nil
}

// Notify implements notification.Notifier
func (n *RedisNotifier) Notify(ctx context.Context, msg notification.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := ChannelFor(msg.Topic)
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		n.logger.Warn("notification publish failed",
			zap.String("channel", channel),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Close releases the Redis connection
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// ChannelFor maps a notification topic to its pub/sub channel
func ChannelFor(topic string) string {
	return channelPrefix + topic
}

var _ notification.Notifier = (*RedisNotifier)(nil)
