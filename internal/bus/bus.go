// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package bus is the in-process progress event channel. The pipeline
// publishes topic-tagged events as it advances; stream subscribers fan
// them out to connected clients. Events are ephemeral: there is no replay,
// a subscriber only sees what is published after it subscribed.
package bus

import (
	"sync"
	"time"
)

// defaultBuffer bounds each subscriber's channel. When a slow consumer
// falls behind, the oldest buffered event is dropped so publishers never
// block.
const defaultBuffer = 64

// Event is one progress notification. It has no identity beyond delivery
// and is never persisted.
type Event struct {
	Topic   string    `json:"topic"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Bus fans events out to all current subscribers. All methods are safe for
// concurrent use; Publish never blocks and never fails.
type Bus struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
	size int
}

// Subscription is one registered listener. Events arrive on C until Close
// is called, after which C is closed.
type Subscription struct {
	C chan Event

	bus     *Bus
	closeMu sync.Mutex
	closed  bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subs: make(map[*Subscription]struct{}),
		size: defaultBuffer,
	}
}

// Subscribe registers a new listener for every event published from now on.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		C:   make(chan Event, b.size),
		bus: b,
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish delivers the event to every current subscriber. A subscriber
// whose buffer is full loses its oldest event rather than stalling the
// publisher.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(e)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close unregisters the subscription and closes its channel. Closing twice
// is harmless; other subscribers and publishers are unaffected.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()

	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.C)
	}
}

// deliver pushes the event without blocking, dropping the oldest buffered
// event on overflow.
func (s *Subscription) deliver(e Event) {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.C <- e:
	default:
		select {
		case <-s.C:
		default:
		}
		select {
		case s.C <- e:
		default:
		}
	}
}
