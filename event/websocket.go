// Copyright 2025 The Go A2A Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// WSHandler serves the real-time observer endpoint over WebSocket.
//
// Each connection gets its own subscription to the Broadcaster; frames
// are the JSON encoding of [Event]. Observers connect and disconnect
// dynamically and receive no historical events.
type WSHandler struct {
	broadcaster *Broadcaster
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewWSHandler creates a new WSHandler backed by the given broadcaster.
func NewWSHandler(b *Broadcaster) *WSHandler {
	return &WSHandler{
		broadcaster: b,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Observers are unauthenticated; any origin may connect.
				return true
			},
		},
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the WSHandler.
func (h *WSHandler) WithLogger(logger *slog.Logger) *WSHandler {
	h.logger = logger
	return h
}

// ServeHTTP implements http.Handler for the observer endpoint.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	events, cancel := h.broadcaster.Subscribe()
	obs := &observer{
		conn:   conn,
		events: events,
		logger: h.logger,
		done:   make(chan struct{}),
	}

	h.logger.InfoContext(r.Context(), "observer connected", "remote_addr", r.RemoteAddr)

	go obs.writePump()
	obs.readPump()

	cancel()
	h.logger.InfoContext(r.Context(), "observer disconnected", "remote_addr", r.RemoteAddr)
}

// observer is one connected WebSocket observer.
type observer struct {
	conn   *websocket.Conn
	events <-chan Event
	logger *slog.Logger
	done   chan struct{}
}

// readPump drains inbound frames. Observers are read-only consumers, so
// inbound payloads are discarded; the read loop exists to detect
// disconnects and service pongs.
func (o *observer) readPump() {
	defer close(o.done)

	o.conn.SetReadLimit(1024)
	o.conn.SetReadDeadline(time.Now().Add(pongWait))
	o.conn.SetPongHandler(func(string) error {
		o.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := o.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				o.logger.Error("websocket read error", "error", err)
			}
			return
		}
		o.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// writePump forwards subscribed events to the connection and keeps it
// alive with pings.
func (o *observer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		o.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-o.events:
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				o.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				o.logger.Error("failed to marshal event", "event_type", ev.Type, "error", err)
				continue
			}
			if err := o.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-o.done:
			return
		}
	}
}
