package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same trust model as the wildcard CORS policy
	},
}

type streamMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// streamAlerts pushes store events to a websocket client as they are
// emitted on the local bus. Slow clients are skipped, not buffered
// indefinitely.
func (h *Handler) streamAlerts(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("stream: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events := make(chan streamMessage, 64)
	unsubscribe := h.bus.Subscribe(func(event string, payload any) {
		select {
		case events <- streamMessage{Event: event, Payload: payload}:
		default:
			// Skip slow clients
		}
	})
	defer unsubscribe()

	slog.Info("stream: client connected", "remote", conn.RemoteAddr())

	// Reader loop detects client disconnect; inbound messages carry no
	// meaning on this endpoint.
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
			slog.Info("stream: client disconnected", "remote", conn.RemoteAddr())
			return
		case msg := <-events:
			if err := conn.WriteJSON(msg); err != nil {
				slog.Error("stream: write failed", "error", err)
				return
			}
		}
	}
}
