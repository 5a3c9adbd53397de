package handlers

import (
	"net/http"

	"playlist-downloader/internal/playlist"
)

// syncStatusResponse wraps the watcher status so clients can tell a stopped
// watcher apart from one that was never configured
type syncStatusResponse struct {
	Configured bool             `json:"configured"`
	Status     *playlist.Status `json:"status,omitempty"`
}

// TriggerSync schedules an immediate playlist check
func (h *Handlers) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.watcher == nil {
		h.respondError(w, http.StatusConflict, "playlist watching is not configured")
		return
	}

	h.watcher.TriggerSync()
	h.logger.Info("Manual playlist sync requested")

	h.respondJSON(w, http.StatusAccepted, map[string]string{"status": "sync scheduled"})
}

// SyncStatus reports the playlist watcher's current state
func (h *Handlers) SyncStatus(w http.ResponseWriter, r *http.Request) {
	if h.watcher == nil {
		h.respondJSON(w, http.StatusOK, syncStatusResponse{Configured: false})
		return
	}

	status := h.watcher.Status()
	h.respondJSON(w, http.StatusOK, syncStatusResponse{Configured: true, Status: &status})
}
