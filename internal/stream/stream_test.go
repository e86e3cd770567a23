package stream

import (
	"testing"
	"time"

	"autopress/internal/bus"
)

func recv(t *testing.T, sub *TopicSubscription) bus.Event {
	t.Helper()
	select {
	case e, ok := <-sub.Events:
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return bus.Event{}
	}
}

func TestSubscribeSendsAckFirst(t *testing.T) {
	b := bus.New()
	m := New(b)

	sub := m.Subscribe("  Rust ")
	defer sub.Close()

	ack := recv(t, sub)
	if ack.Stage != "System" {
		t.Errorf("first event stage: got %q, want %q", ack.Stage, "System")
	}
	if ack.Topic != "Rust" {
		t.Errorf("ack topic: got %q, want trimmed %q", ack.Topic, "Rust")
	}
}

func TestTopicMatchIsTrimmedAndCaseFolded(t *testing.T) {
	b := bus.New()
	m := New(b)

	sub := m.Subscribe("Rust")
	defer sub.Close()
	recv(t, sub) // ack

	b.Publish(bus.Event{Topic: "rust ", Stage: "Writing", Message: "drafting"})
	b.Publish(bus.Event{Topic: "go", Stage: "Writing", Message: "other topic"})

	e := recv(t, sub)
	if e.Message != "drafting" {
		t.Errorf("got %+v, want the rust event", e)
	}

	select {
	case e := <-sub.Events:
		t.Errorf("unexpected event for non-matching topic: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMatchIsExactNotSubstring(t *testing.T) {
	b := bus.New()
	m := New(b)

	sub := m.Subscribe("Go")
	defer sub.Close()
	recv(t, sub) // ack

	b.Publish(bus.Event{Topic: "Golang", Stage: "Writing"})

	select {
	case e := <-sub.Events:
		t.Errorf("substring topic must not match: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestIndependentSubscriptions(t *testing.T) {
	b := bus.New()
	m := New(b)

	s1 := m.Subscribe("go")
	s2 := m.Subscribe("go")
	s3 := m.Subscribe("rust")
	defer s2.Close()
	defer s3.Close()

	// Each same-topic subscription receives its own ack.
	recv(t, s1)
	recv(t, s2)
	recv(t, s3)

	// Tearing one down must not affect the others.
	s1.Close()

	b.Publish(bus.Event{Topic: "go", Stage: "Research", Message: "m"})

	if e := recv(t, s2); e.Message != "m" {
		t.Errorf("s2: got %+v", e)
	}
	select {
	case e, ok := <-s3.Events:
		if ok {
			t.Errorf("s3 should not receive go events: %+v", e)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseEndsFeed(t *testing.T) {
	b := bus.New()
	m := New(b)

	sub := m.Subscribe("go")
	recv(t, sub) // ack
	sub.Close()

	select {
	case _, ok := <-sub.Events:
		if ok {
			// Buffered events may still drain; the channel must close after.
			for range sub.Events {
			}
		}
	case <-time.After(time.Second):
		t.Fatal("feed did not close after Close")
	}
}
