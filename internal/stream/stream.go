// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package stream multiplexes the process-wide event bus into per-topic
// subscriptions for long-lived client connections (SSE, websocket). Each
// subscription first receives a synthetic acknowledgement, then only the
// bus events whose topic matches the subscribed one after trimming and
// case-folding. Matching is exact, not substring.
package stream

import (
	"strings"
	"time"

	"autopress/internal/bus"
)

// ackStage marks the synthetic connect acknowledgement event.
const ackStage = "System"

// Mux hands out per-topic views of the bus.
type Mux struct {
	bus *bus.Bus
}

// TopicSubscription is one client's filtered event feed. Events is closed
// after Close returns and the forwarder drains out.
type TopicSubscription struct {
	Events <-chan bus.Event

	src *bus.Subscription
}

// New creates a multiplexer over the given bus.
func New(b *bus.Bus) *Mux {
	return &Mux{bus: b}
}

// Subscribe opens a filtered subscription for one topic. The returned feed
// starts with an acknowledgement event (stage "System"), then carries every
// bus event whose topic equals the subscribed topic case-insensitively
// after trimming. Multiple subscriptions, to the same topic or different
// ones, are fully independent.
func (m *Mux) Subscribe(topic string) *TopicSubscription {
	want := Normalize(topic)

	src := m.bus.Subscribe()
	out := make(chan bus.Event, 16)

	// The acknowledgement is queued before the forwarder starts so it is
	// always the first event observed.
	out <- bus.Event{
		Topic:   strings.TrimSpace(topic),
		Stage:   ackStage,
		Message: "subscribed to progress for " + strings.TrimSpace(topic),
		At:      time.Now(),
	}

	go func() {
		defer close(out)
		for e := range src.C {
			if Normalize(e.Topic) != want {
				continue
			}
			select {
			case out <- e:
			default:
				// Slow client: drop rather than stall the forwarder.
			}
		}
	}()

	return &TopicSubscription{Events: out, src: src}
}

// Close tears the subscription down. The bus and any other subscribers are
// unaffected.
func (s *TopicSubscription) Close() {
	s.src.Close()
}

// Normalize maps a topic to its comparison form: trimmed and case-folded.
func Normalize(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}
