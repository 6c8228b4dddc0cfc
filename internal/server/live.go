package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Preview-only deployment; same-origin enforcement happens at the
	// CORS layer for the REST surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleLive streams snapshot aggregates frame by frame at the trace's
// fps. One goroutine per connection; the client closing the socket
// ends the loop. Frames wrap around at the end of the trace so the
// preview loops.
func (h *routerHandlers) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("live upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	wsConnectionsActive.Inc()
	defer wsConnectionsActive.Dec()

	fps := h.session.Config().Video.FPS
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	// Reader goroutine: the read failing is how we learn the client
	// went away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	frame := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snap := h.session.Snapshot(frame)
			msg := summarize(snap, len(h.session.Events(frame)))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			frame = (frame + 1) % h.session.Len()
		}
	}
}
