package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"playlist-downloader/pkg/models"
)

// heartbeatInterval keeps idle SSE connections alive through proxies
const heartbeatInterval = 15 * time.Second

// StreamProgress streams download progress as server-sent events. With a
// download_id query parameter it follows one download and ends after its
// terminal event; without it the stream carries every download until the
// client disconnects.
func (h *Handlers) StreamProgress(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var (
		events <-chan models.ProgressEvent
		cancel func()
	)

	if raw := r.URL.Query().Get("download_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid download_id")
			return
		}
		events, cancel = h.hub.Subscribe(id)
	} else {
		events, cancel = h.hub.SubscribeAll()
	}
	defer cancel()

	// The stream outlives the server's write timeout
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Warn("Failed to clear write deadline for event stream", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case event, ok := <-events:
			if !ok {
				// Topic closed after its terminal event
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("Failed to encode progress event", "error", err)
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
