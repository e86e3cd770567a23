// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// stream.go serves the per-topic progress feeds over SSE and websocket.
// Both endpoints share the same multiplexer subscription; the transport
// is the only difference.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Progress events are read-only and carry no credentials, so
	// cross-origin dashboard clients are allowed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Events handles GET /events?topic=T as a Server-Sent Events stream. The
// first event is the subscription acknowledgement; the stream stays open
// until the client disconnects.
func (a *API) Events(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		writeError(w, http.StatusBadRequest, "topic query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := a.streams.Subscribe(topic)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, open := <-sub.Events:
			if !open {
				return
			}
			payload, err := json.Marshal(e)
			if err != nil {
				slog.Warn("encode progress event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// WS handles GET /ws?topic=T, serving the same per-topic feed over a
// websocket. Each event is one JSON text message.
func (a *API) WS(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		writeError(w, http.StatusBadRequest, "topic query parameter is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := a.streams.Subscribe(topic)
	defer sub.Close()

	// Consume client frames so close handshakes and pings are processed;
	// the feed is one-directional.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case e, open := <-sub.Events:
			if !open {
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
	}
}
