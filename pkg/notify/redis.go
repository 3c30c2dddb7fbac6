package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/canopy-network/flightsurety/pkg/redis"
	"github.com/canopy-network/flightsurety/pkg/utils"
)

// redisWriter is the subset of *redis.Client used by RedisSink.
type redisWriter interface {
	Publish(ctx context.Context, channel string, message interface{})
	XAdd(ctx context.Context, stream string, values map[string]interface{}) string
}

// RedisSink mirrors every notification to the pub/sub channel for its kind
// and appends it to the shared event stream.
type RedisSink struct {
	client redisWriter
}

// NewRedisSink returns a sink writing through client.
func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

// Name implements Sink.
func (s *RedisSink) Name() string { return "redis" }

// Deliver implements Sink.
func (s *RedisSink) Deliver(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s notification: %w", ev.Kind, err)
	}
	s.client.Publish(ctx, utils.GetEventChannel(string(ev.Kind)), payload)
	id := s.client.XAdd(ctx, utils.EventStream, map[string]interface{}{
		"kind": string(ev.Kind),
		"seq":  ev.Seq,
		"data": string(payload),
	})
	if id == "" {
		return fmt.Errorf("append %s notification to %s", ev.Kind, utils.EventStream)
	}
	return nil
}

// RedisFeed serves subscriptions from the shared event stream, so processes
// other than the one that published can observe notifications.
type RedisFeed struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisFeed returns a feed tailing utils.EventStream.
func NewRedisFeed(client *redis.Client, logger *zap.Logger) *RedisFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisFeed{client: client, logger: logger}
}

// Subscribe implements Feed. Only entries appended after the call are delivered.
func (f *RedisFeed) Subscribe(ctx context.Context, buffer int, kinds ...Kind) *Subscription {
	sub := newSubscription(buffer, kinds)
	consumer, err := redis.NewStreamConsumer(f.client, redis.StreamConsumerConfig{
		Stream: utils.EventStream,
		LastID: "$",
		Logger: f.logger,
	})
	if err != nil {
		f.logger.Error("Unable to start event stream consumer", zap.Error(err))
		sub.Close()
		return sub
	}

	runCtx, cancel := context.WithCancel(ctx)
	sub.onStop = cancel
	go func() {
		defer sub.Close()
		_ = consumer.Run(runCtx, func(_ context.Context, msg redis.Message) error {
			ev, err := DecodeEvent(msg.GetData())
			if err != nil {
				return err
			}
			sub.deliver(ev)
			return nil
		})
	}()
	return sub
}

// DecodeEvent parses a notification produced by RedisSink.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if len(data) == 0 {
		return ev, fmt.Errorf("empty notification payload")
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode notification: %w", err)
	}
	return ev, nil
}
