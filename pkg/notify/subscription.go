package notify

import (
	"sync"
	"sync/atomic"
)

// Subscription receives notifications on C. Slow subscribers lose events
// rather than blocking publishers; Dropped counts the losses.
type Subscription struct {
	C <-chan Event

	ch      chan Event
	kinds   map[Kind]struct{}
	dropped atomic.Uint64

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	onStop func()
}

func newSubscription(buffer int, kinds []Kind) *Subscription {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)
	s := &Subscription{C: ch, ch: ch, done: make(chan struct{})}
	if len(kinds) > 0 {
		s.kinds = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = struct{}{}
		}
	}
	return s
}

// Wants reports whether the subscription filters in kind.
func (s *Subscription) Wants(kind Kind) bool {
	if s.kinds == nil {
		return true
	}
	_, ok := s.kinds[kind]
	return ok
}

func (s *Subscription) deliver(ev Event) {
	if !s.Wants(ev.Kind) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- ev:
	default:
		s.dropped.Add(1)
	}
}

// Done is closed once the subscription is closed.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Dropped returns how many events were discarded because C was full.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Close stops delivery and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	close(s.done)
	stop := s.onStop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}
