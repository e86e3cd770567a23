package bus

import (
	"sync"
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()
	s1 := b.Subscribe()
	s2 := b.Subscribe()
	defer s1.Close()
	defer s2.Close()

	b.Publish(Event{Topic: "Go", Stage: "Writing", Message: "started"})

	for i, sub := range []*Subscription{s1, s2} {
		select {
		case e := <-sub.C:
			if e.Topic != "Go" || e.Stage != "Writing" {
				t.Errorf("sub %d: got %+v", i, e)
			}
			if e.At.IsZero() {
				t.Errorf("sub %d: expected timestamp to be filled in", i)
			}
		case <-time.After(time.Second):
			t.Fatalf("sub %d: no event received", i)
		}
	}
}

func TestNoReplayBeforeSubscribe(t *testing.T) {
	b := New()
	b.Publish(Event{Topic: "early", Stage: "Writing"})

	sub := b.Subscribe()
	defer sub.Close()

	select {
	case e := <-sub.C:
		t.Errorf("expected no replayed event, got %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	defer sub.Close()

	// Nobody drains the subscriber; publishing far past the buffer size
	// must still return.
	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultBuffer*4; i++ {
			b.Publish(Event{Topic: "t", Stage: "s"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestCloseUnregisters(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	other := b.Subscribe()
	defer other.Close()

	sub.Close()
	sub.Close() // double close is harmless

	if n := b.SubscriberCount(); n != 1 {
		t.Errorf("SubscriberCount: got %d, want 1", n)
	}

	// Publishing after a close must not panic and must still reach others.
	b.Publish(Event{Topic: "t", Stage: "s"})
	select {
	case <-other.C:
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber did not receive event")
	}
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	b := New()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := b.Subscribe()
			time.Sleep(time.Millisecond)
			sub.Close()
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.Publish(Event{Topic: "t", Stage: "s"})
			}
		}()
	}

	wg.Wait()
}
