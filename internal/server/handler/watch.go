package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"writeflow/internal/pipeline"
)

// A run's event channel has a single consumer: whichever watcher attaches
// first drains it. Reattaching after a disconnect picks up from the next
// undelivered event.

// HandleWatchSSE streams run events as Server-Sent Events.
// Path: /api/watch/{run_id}
func (h *Handler) HandleWatchSSE(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/watch/")
	if runID == "" {
		http.Error(w, "run_id required", http.StatusBadRequest)
		return
	}
	run, ok := h.Runs.Get(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	sse, ok := startSSE(w)
	if !ok {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-run.Events:
			if !ok {
				sse.close()
				return
			}
			sse.send(ev)
			if ev.Phase == pipeline.PhaseComplete {
				sse.close()
				return
			}
		}
	}
}

const (
	watchWSWriteWait = 10 * time.Second
	watchWSPongWait  = 60 * time.Second
	watchWSPingEvery = (watchWSPongWait * 9) / 10
)

var watchWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// HandleWatchWS streams run events over a websocket, with keepalive pings.
// Path: /api/ws/{run_id}
func (h *Handler) HandleWatchWS(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/ws/")
	if runID == "" {
		http.Error(w, "run_id required", http.StatusBadRequest)
		return
	}
	run, ok := h.Runs.Get(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	conn, err := watchWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(watchWSPongWait)); err != nil {
		h.logf("watch ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	})

	// Drain the reader so pongs and close frames are processed.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchWSPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-readerDone:
			return
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-run.Events:
			if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
				return
			}
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run complete"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			if ev.Phase == pipeline.PhaseComplete {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run complete"))
				return
			}
		}
	}
}
