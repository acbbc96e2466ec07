package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"edu_social_client/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisTransport redis pub/sub, channel name is the destination
type RedisTransport struct {
	client *redis.Client
}

// NewRedisTransport create RedisTransport
func NewRedisTransport(client *redis.Client) *RedisTransport {
	return &RedisTransport{client: client}
}

// Publish 將 message 序列化後，發布到 destination
func (r *RedisTransport) Publish(ctx context.Context, destination string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, destination, data).Err()
}

// Run 訂閱 destinations, 收到訊息後放入 sink
func (r *RedisTransport) Run(ctx context.Context, destinations []string, sink Sink) error {
	sub := r.client.Subscribe(ctx, destinations...)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	logger.Log.Info("redis subscribed", zap.Strings("destinations", destinations))

	ch := sub.Channel()
	for {
		select {
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			if err := sink.Enqueue(ctx, Envelope{Destination: m.Channel, Body: []byte(m.Payload)}); err != nil {
				return err
			}
		case <-ctx.Done():
			logger.Log.Info("redis subscription closed", zap.Strings("destinations", destinations))
			return ctx.Err()
		}
	}
}
