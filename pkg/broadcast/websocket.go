// pkg/broadcast/websocket.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package broadcast

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/swimfuse/swimfuse/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeTimeout = 10 * time.Second

// ServeWebSocket upgrades r to a WebSocket, subscribes it under scope,
// and pumps envelopes to the connection until it closes or the
// subscriber channel closes.
func ServeWebSocket(hub *Hub, scope Scope, id string, w http.ResponseWriter, r *http.Request, lg *log.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		lg.Warnf("broadcast: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := hub.Subscribe(id, scope)
	defer hub.Unsubscribe(id)

	go drainPings(conn)

	for env := range sub.Chan() {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(env); err != nil {
			lg.Debugf("broadcast: websocket write failed: %v", err)
			return
		}
	}
}

// drainPings discards inbound frames so the connection's read side
// keeps advancing (gorilla requires reads to process control frames),
// returning when the peer closes.
func drainPings(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ServeNDJSON streams envelopes as newline-delimited JSON over a plain
// HTTP response, for clients that don't want a WebSocket upgrade.
func ServeNDJSON(hub *Hub, scope Scope, id string, w http.ResponseWriter, flusher http.Flusher) {
	sub := hub.Subscribe(id, scope)
	defer hub.Unsubscribe(id)

	w.Header().Set("Content-Type", "application/x-ndjson")
	for env := range sub.Chan() {
		line, err := Encode(env)
		if err != nil {
			continue
		}
		if _, err := w.Write(line); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
