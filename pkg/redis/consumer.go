package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StreamConsumerConfig configures a StreamConsumer.
type StreamConsumerConfig struct {
	// Stream is the Redis stream name to consume from (required).
	Stream string

	// LastID is the starting position:
	//   - "0" = read from beginning
	//   - "$" = read only new messages
	//   - "<id>" = read after specific ID (e.g., "1234567890123-0")
	// Default: "$"
	LastID string

	// Count is the max number of entries to read per batch. Default: 100.
	Count int64

	// Block is how long to wait for new entries. Default: 5 seconds.
	Block time.Duration

	// RetryInterval is how long to wait before retrying after an error.
	// Default: 1 second.
	RetryInterval time.Duration

	// MaxRetryInterval caps the exponential backoff. Default: 30 seconds.
	MaxRetryInterval time.Duration

	// Logger for logging. If nil, uses a no-op logger.
	Logger *zap.Logger
}

// MessageHandler processes a stream message. Errors are logged and the
// consumer moves on.
type MessageHandler func(ctx context.Context, msg Message) error

// Message represents a single stream entry.
type Message struct {
	// ID is the Redis stream entry ID (e.g., "1234567890123-0").
	ID string

	// Stream is the stream name this message came from.
	Stream string

	// Values contains the entry fields as key-value pairs.
	Values map[string]interface{}
}

// reader is the subset of Client used by StreamConsumer.
type reader interface {
	XRead(ctx context.Context, stream, lastID string, count int64, block time.Duration) ([]redis.XStream, error)
}

// StreamConsumer tails a Redis stream, reconnecting with backoff.
type StreamConsumer struct {
	client reader
	config StreamConsumerConfig
	logger *zap.Logger
}

// NewStreamConsumer creates a new stream consumer.
func NewStreamConsumer(client *Client, config StreamConsumerConfig) (*StreamConsumer, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return newStreamConsumer(client, config)
}

func newStreamConsumer(client reader, config StreamConsumerConfig) (*StreamConsumer, error) {
	if config.Stream == "" {
		return nil, errors.New("stream name is required")
	}

	// Apply defaults
	if config.LastID == "" {
		config.LastID = "$"
	}
	if config.Count == 0 {
		config.Count = 100
	}
	if config.Block == 0 {
		config.Block = 5 * time.Second
	}
	if config.RetryInterval == 0 {
		config.RetryInterval = 1 * time.Second
	}
	if config.MaxRetryInterval == 0 {
		config.MaxRetryInterval = 30 * time.Second
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StreamConsumer{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// Run calls handler for each message until ctx is cancelled.
func (sc *StreamConsumer) Run(ctx context.Context, handler MessageHandler) error {
	lastID := sc.config.LastID
	retryInterval := sc.config.RetryInterval

	for {
		select {
		case <-ctx.Done():
			sc.logger.Info("Stream consumer shutting down", zap.String("stream", sc.config.Stream))
			return ctx.Err()
		default:
		}

		streams, err := sc.client.XRead(ctx, sc.config.Stream, lastID, sc.config.Count, sc.config.Block)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if errors.Is(err, redis.Nil) {
				// Block timeout with no entries
				continue
			}

			sc.logger.Warn("Error reading from stream, will retry",
				zap.String("stream", sc.config.Stream),
				zap.Error(err),
				zap.Duration("retryIn", retryInterval))

			select {
			case <-time.After(retryInterval):
				retryInterval = min(retryInterval*2, sc.config.MaxRetryInterval)
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		retryInterval = sc.config.RetryInterval

		for _, stream := range streams {
			for _, xmsg := range stream.Messages {
				msg := Message{ID: xmsg.ID, Stream: stream.Stream, Values: xmsg.Values}
				if err := handler(ctx, msg); err != nil {
					sc.logger.Error("Error processing message",
						zap.String("stream", sc.config.Stream),
						zap.String("id", msg.ID),
						zap.Error(err))
				}
				lastID = xmsg.ID
			}
		}
	}
}

// GetData extracts the "data" field from a message, or nil.
func (m *Message) GetData() []byte {
	if data, ok := m.Values["data"].(string); ok {
		return []byte(data)
	}
	if data, ok := m.Values["data"].([]byte); ok {
		return data
	}
	return nil
}

// GetKind extracts the "kind" field from a message, or "".
func (m *Message) GetKind() string {
	kind, _ := m.Values["kind"].(string)
	return kind
}
