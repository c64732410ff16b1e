package publisher

import (
	"context"
	"encoding/base64"

	"github.com/redis/go-redis/v9"
)

// Field name of the stream entry value
const messageField = "b64_product"

// RedisPublisher implements Publisher using Redis streams
type RedisPublisher struct {
	client          *redis.Client
	streamPrefix    string
	streamMaxLength int
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, streamPrefix string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		streamPrefix:    streamPrefix,
		streamMaxLength: streamMaxLength,
	}
}

// StreamName returns the stream a key publishes to, e.g. productscraper:amazon
func (p *RedisPublisher) StreamName(key string) string {
	return p.streamPrefix + ":" + key
}

// Publish publishes a message to a Redis stream
// The message is base64 encoded before publishing
func (p *RedisPublisher) Publish(ctx context.Context, key string, message []byte) error {
	encodedMessage := base64.StdEncoding.EncodeToString(message)

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.StreamName(key),
		Values: map[string]interface{}{
			messageField: encodedMessage,
		},
	}).Err()
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	streams, err := p.client.Keys(ctx, p.streamPrefix+":*").Result()
	if err != nil {
		return err
	}

	for _, stream := range streams {
		if err := p.client.XTrimMaxLen(ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return err
		}
	}

	return nil
}

// Ping checks the Redis connection
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
