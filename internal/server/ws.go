package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// RunStreamHandler pushes one JSON message per finished word to every
// connected WebSocket client.
type RunStreamHandler struct {
	runner *app.Runner
	logger *zap.Logger
}

// NewRunStreamHandler creates a RunStreamHandler fed by runner's events.
func NewRunStreamHandler(r *app.Runner, logger *zap.Logger) *RunStreamHandler {
	return &RunStreamHandler{runner: r, logger: logger}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *RunStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so a client that starts a
	// run right after connecting sees all of its events.
	events, unsubscribe := h.runner.Subscribe()
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// The client never sends anything we act on; reading only detects
	// the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
