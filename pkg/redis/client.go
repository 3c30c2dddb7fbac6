package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/pkg/retry"
	"github.com/canopy-network/flightsurety/pkg/utils"
)

// DefaultStreamMaxLen caps the notification stream unless REDIS_STREAM_MAXLEN says otherwise.
const DefaultStreamMaxLen = 10000

// Config is the connection configuration for NewClient.
type Config struct {
	Addr     string
	Password string
	DB       int
	// StreamMaxLen caps streams on every XAdd (0 = unlimited).
	StreamMaxLen int64
}

// ConfigFromEnv reads REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB and
// REDIS_STREAM_MAXLEN.
func ConfigFromEnv() Config {
	return Config{
		Addr:         fmt.Sprintf("%s:%s", utils.Env("REDIS_HOST", "localhost"), utils.Env("REDIS_PORT", "6379")),
		Password:     utils.Env("REDIS_PASSWORD", ""),
		DB:           utils.EnvInt("REDIS_DB", 0),
		StreamMaxLen: utils.EnvInt64("REDIS_STREAM_MAXLEN", DefaultStreamMaxLen),
	}
}

// Client carries protocol notifications to other processes over Pub/Sub
// channels and a capped stream.
type Client struct {
	client       redis.UniversalClient
	logger       *zap.Logger
	streamMaxLen int64
}

// NewClient connects with ConfigFromEnv. The first ping is retried with
// backoff so the service can start before Redis does.
func NewClient(ctx context.Context, logger *zap.Logger) (*Client, error) {
	return Dial(ctx, ConfigFromEnv(), logger)
}

// Dial connects to the Redis server described by cfg.
func Dial(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	err := retry.WithBackoff(ctx, retry.ConfigFromEnv(), logger, "redis_ping", func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return rdb.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Connected to Redis",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.Int64("streamMaxLen", cfg.StreamMaxLen))

	return &Client{client: rdb, logger: logger, streamMaxLen: cfg.StreamMaxLen}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Publish sends message on a Pub/Sub channel. Failures are logged and
// swallowed; a Redis outage never fails a protocol operation.
func (c *Client) Publish(ctx context.Context, channel string, message interface{}) {
	if err := c.client.Publish(ctx, channel, message).Err(); err != nil {
		c.logger.Warn("Failed to publish Redis message",
			zap.String("channel", channel),
			zap.Error(err))
	}
}

// XAdd appends values to stream, trimming it to the configured length.
// It returns the entry ID, or "" when the write failed.
func (c *Client) XAdd(ctx context.Context, stream string, values map[string]interface{}) string {
	args := &redis.XAddArgs{Stream: stream, Values: values}
	if c.streamMaxLen > 0 {
		args.MaxLen = c.streamMaxLen
		args.Approx = true
	}

	id, err := c.client.XAdd(ctx, args).Result()
	if err != nil {
		c.logger.Warn("Failed to add to Redis stream",
			zap.String("stream", stream),
			zap.Error(err))
		return ""
	}
	return id
}

// XRead returns up to count entries of stream after lastID ("$" for new
// entries only), waiting up to block for the first one.
func (c *Client) XRead(ctx context.Context, stream, lastID string, count int64, block time.Duration) ([]redis.XStream, error) {
	return c.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Count:   count,
		Block:   block,
	}).Result()
}
