// Package hub implements in-process broadcast of text lines.
//
// Every line published into Hub is delivered to each Subscriber that was
// registered before the line was published. Subscribers consume at their
// own pace; a subscriber which falls behind by more than the hub capacity
// loses its oldest pending lines and is told so with LagError.
package hub

import (
	"context"
	"sync"
)

// Hub - multi-producer multi-consumer line bus.
type Hub struct {
	capacity int

	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
}

// New - builds Hub with needed options.
func New(options ...hubOption) (*Hub, error) {
	h := &Hub{
		capacity:    DefaultCapacity,
		subscribers: make(map[*Subscriber]struct{}),
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Len - returns number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Subscribe - registers new subscriber. It receives lines published after Subscribe returns.
func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{
		hub:     h,
		pending: newQueue(h.capacity),
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish - delivers line to all registered subscribers and returns their number.
// It never waits for subscribers to consume.
// Publishing is serialized, so every subscriber observes the same order of lines.
func (h *Hub) Publish(line string) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subscribers) == 0 {
		return 0, ErrNoSubscribers
	}
	for s := range h.subscribers {
		s.deliver(line)
	}
	return len(h.subscribers), nil
}

func (h *Hub) unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, s)
}

// Subscriber - receiving side of Hub, owned by a single consumer.
type Subscriber struct {
	hub *Hub

	mu      sync.Mutex
	pending *queue
	skipped uint64
	closed  bool

	signal chan struct{}
	done   chan struct{}
}

func (s *Subscriber) deliver(line string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.pending.push(line) {
		s.skipped++
	}
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Recv - waits for the next line.
// Returns *LagError once after lines were dropped for this subscriber,
// ErrClosed after Close, or ctx.Err() when ctx is done.
func (s *Subscriber) Recv(ctx context.Context) (string, error) {
	for {
		s.mu.Lock()
		if s.skipped > 0 {
			n := s.skipped
			s.skipped = 0
			s.mu.Unlock()
			return "", &LagError{Skipped: n}
		}
		if line, ok := s.pending.pop(); ok {
			s.mu.Unlock()
			return line, nil
		}
		if s.closed {
			s.mu.Unlock()
			return "", ErrClosed
		}
		s.mu.Unlock()

		select {
		case <-s.signal:
		case <-s.done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Close - unregisters subscriber from hub and drops its pending lines.
// Safe to call several times.
func (s *Subscriber) Close() {
	s.hub.unsubscribe(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.pending = newQueue(1)
	s.skipped = 0
	close(s.done)
}
