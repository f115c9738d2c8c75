package http

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/ethanrimes/campaign-management-platform/internal/log"
	"github.com/ethanrimes/campaign-management-platform/pkg/models"
	"github.com/ethanrimes/campaign-management-platform/pkg/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The access-control layer in front of this service scopes origins.
		return true
	},
}

// traceEvent is the frame pushed to a live-watch client.
type traceEvent struct {
	Type  string        `json:"type"` // "trace", "terminal", "error"
	Trace *models.Trace `json:"trace,omitempty"`
	Error string        `json:"error,omitempty"`
}

// WatchHandler upgrades GET /executions/{id}/watch to a websocket and streams
// a fresh Trace whenever the watcher observes a change, until the execution
// reaches a terminal state or the client disconnects.
func WatchHandler(watcher *service.Watcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		logger := log.GetLogger()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed for execution %s: %v", id, err)
			return
		}
		defer conn.Close()

		var writeMu sync.Mutex
		send := func(ev traceEvent) {
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteJSON(ev); err != nil {
				logger.Errorf("Failed to write trace event for execution %s: %v", id, err)
			}
		}

		sub, err := watcher.Watch(r.Context(), id, func(trace *models.Trace) {
			ev := traceEvent{Type: "trace", Trace: trace}
			if trace.Summary.Status.Terminal() {
				ev.Type = "terminal"
			}
			send(ev)
		})
		if err != nil {
			send(traceEvent{Type: "error", Error: err.Error()})
			return
		}
		defer sub.Unwatch()

		// Read pump: the client sends nothing meaningful, but reading is how
		// we notice a disconnect.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						logger.Errorf("WebSocket read error for execution %s: %v", id, err)
					}
					sub.Unwatch()
					return
				}
			}
		}()

		<-sub.Done()
		if err := sub.Err(); err != nil {
			send(traceEvent{Type: "error", Error: err.Error()})
		}
	}
}
