package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
)

// RedisFeed is the multi-node ChangeFeed over Redis pub/sub.
type RedisFeed struct {
	client *redis.Client
	logger *logging.Logger
}

func NewRedisFeed(client *redis.Client, logger *logging.Logger) *RedisFeed {
	if logger == nil {
		logger = logging.Default()
	}

	return &RedisFeed{client: client, logger: logger}
}

func (f *RedisFeed) Publish(ctx context.Context, channel string, payload []byte) error {
	return f.client.Publish(ctx, channel, payload).Err()
}

func (f *RedisFeed) Subscribe(ctx context.Context, channel string, handler func(payload []byte)) {
	sub := f.client.Subscribe(ctx, channel)
	ch := sub.Channel()

	go func() {
		for {
			select {
			case <-ctx.Done():
				if err := sub.Close(); err != nil {
					f.logger.Warn("close redis subscription failed", "channel", channel, "error", err)
				}
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				handler([]byte(msg.Payload))
			}
		}
	}()
}
