// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"autopress/internal/bus"
)

// readSSEData reads one SSE event from the stream and returns its data
// payload.
func readSSEData(t *testing.T, r *bufio.Reader) string {
	t.Helper()

	var data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read SSE line: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if line == "" {
			if data != "" {
				return data
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, "data: "); ok {
			data = rest
		}
	}
}

func TestEventsStream(t *testing.T) {
	env := newTestAPI(t, "")
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events?topic=Go%20Generics")
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)

	// The acknowledgement arrives before any pipeline event.
	var ack bus.Event
	if err := json.Unmarshal([]byte(readSSEData(t, reader)), &ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.Stage != "System" || !strings.Contains(ack.Message, "subscribed") {
		t.Fatalf("first event is not the ack: %+v", ack)
	}

	// Topic matching is case-insensitive, so this event must come through.
	env.bus.Publish(bus.Event{
		Topic:   "go generics",
		Stage:   "Research",
		Message: "planning outline",
		At:      time.Now(),
	})

	var got bus.Event
	if err := json.Unmarshal([]byte(readSSEData(t, reader)), &got); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if got.Stage != "Research" || got.Message != "planning outline" {
		t.Errorf("got %+v", got)
	}
}

func TestEventsRequiresTopic(t *testing.T) {
	env := newTestAPI(t, "")

	rr := env.do(http.MethodGet, "/events", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestWSStream(t *testing.T) {
	env := newTestAPI(t, "")
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?topic=Deploys"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ack bus.Event
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Stage != "System" {
		t.Fatalf("first message is not the ack: %+v", ack)
	}

	env.bus.Publish(bus.Event{
		Topic:   "deploys",
		Stage:   "Writing",
		Message: "drafting article",
		At:      time.Now(),
	})

	var got bus.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Stage != "Writing" || got.Message != "drafting article" {
		t.Errorf("got %+v", got)
	}
}

func TestWSRequiresTopic(t *testing.T) {
	env := newTestAPI(t, "")

	rr := env.do(http.MethodGet, "/ws", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}
