package notify

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// Sink forwards notifications out of process. Deliver runs on the bus worker
// pool; errors are logged.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev Event) error
}

// Bus stamps notifications with a sequence number, hands them to in-process
// subscribers synchronously and to sinks asynchronously.
type Bus struct {
	logger *zap.Logger
	now    func() time.Time

	seq    atomic.Uint64
	nextID atomic.Uint64
	subs   *xsync.Map[uint64, *Subscription]

	sinks []Sink
	pool  pond.Pool
}

// BusOption customizes a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	workers int
	sinks   []Sink
	now     func() time.Time
}

// WithSink adds an out-of-process sink.
func WithSink(s Sink) BusOption {
	return func(c *busConfig) {
		if s != nil {
			c.sinks = append(c.sinks, s)
		}
	}
}

// WithWorkers sets the sink worker pool size (default 4).
func WithWorkers(n int) BusOption {
	return func(c *busConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithClock overrides the clock used to stamp events.
func WithClock(now func() time.Time) BusOption {
	return func(c *busConfig) { c.now = now }
}

// NewBus returns a running bus. Close it to flush sinks.
func NewBus(logger *zap.Logger, opts ...BusOption) *Bus {
	cfg := busConfig{workers: 4, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		logger: logger,
		now:    cfg.now,
		subs:   xsync.NewMap[uint64, *Subscription](),
		sinks:  cfg.sinks,
		pool:   pond.NewPool(cfg.workers, pond.WithQueueSize(4096)),
	}
}

// Publish implements Publisher.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	ev.Seq = b.seq.Add(1)
	if ev.At.IsZero() {
		ev.At = b.now()
	}

	b.subs.Range(func(_ uint64, s *Subscription) bool {
		s.deliver(ev)
		return true
	})

	if len(b.sinks) == 0 {
		return
	}
	// Sink writes must outlive the request that triggered them
	sinkCtx := context.WithoutCancel(ctx)
	for _, sink := range b.sinks {
		sink := sink
		b.pool.Submit(func() {
			if err := sink.Deliver(sinkCtx, ev); err != nil {
				b.logger.Warn("Failed to deliver notification",
					zap.String("sink", sink.Name()),
					zap.String("kind", string(ev.Kind)),
					zap.Uint64("seq", ev.Seq),
					zap.Error(err))
			}
		})
	}
}

// Subscribe implements Feed.
func (b *Bus) Subscribe(ctx context.Context, buffer int, kinds ...Kind) *Subscription {
	s := newSubscription(buffer, kinds)
	id := b.nextID.Add(1)
	s.onStop = func() { b.subs.Delete(id) }
	b.subs.Store(id, s)

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.Done():
		}
	}()
	return s
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int { return b.subs.Size() }

// Close waits for pending sink deliveries and closes every subscription.
func (b *Bus) Close() {
	b.pool.StopAndWait()
	b.subs.Range(func(_ uint64, s *Subscription) bool {
		s.Close()
		return true
	})
}
