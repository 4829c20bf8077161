package ipc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// The planner is a local sidecar for a browser shell served from another
	// origin (a dev server or a static file).
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsTransport sends one envelope per websocket text message.
type wsTransport struct {
	ws *websocket.Conn
}

// NewWebsocketConnection wraps an upgraded websocket.
func NewWebsocketConnection(ws *websocket.Conn) *Connection {
	ws.SetReadLimit(MaxFrameSize)
	return NewConnection(wsTransport{ws: ws}, nil)
}

func (t wsTransport) Read() (Envelope, error) {
	_, message, err := t.ws.ReadMessage()
	if err != nil {
		return Envelope{}, fmt.Errorf("read message: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

func (t wsTransport) Write(env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return t.ws.WriteMessage(websocket.TextMessage, payload)
}

func (t wsTransport) Close() error {
	return t.ws.Close()
}

// WebsocketHandler upgrades requests and hands each connection to serve,
// which is expected to block until the connection ends.
func WebsocketHandler(serve func(*Connection)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		slog.Info("websocket connection accepted", "remote", r.RemoteAddr)
		serve(NewWebsocketConnection(ws))
	}
}
