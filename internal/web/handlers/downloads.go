package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"playlist-downloader/pkg/models"
)

// submitRequest is the body of a manual download submission
type submitRequest struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// SubmitDownload accepts a manual download and returns its record ID. The
// download itself runs in the background; progress is streamed separately.
func (h *Handlers) SubmitDownload(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intent := models.DownloadIntent{
		SourceURL:       req.URL,
		DesiredFilename: req.Filename,
		Origin:          models.SourceManual,
	}

	id, err := h.orchestrator.Submit(r.Context(), intent)
	if err != nil {
		var invalidErr *models.InvalidIntentError
		var dupErr *models.DuplicateInFlightError
		var storeErr *models.StoreError

		switch {
		case errors.As(err, &invalidErr):
			h.respondError(w, http.StatusBadRequest, invalidErr.Error())
		case errors.As(err, &dupErr):
			h.respondError(w, http.StatusConflict, dupErr.Error())
		case errors.As(err, &storeErr):
			h.logger.Error("Record store rejected submission", "error", err)
			h.respondError(w, http.StatusServiceUnavailable, "record store unavailable, try again")
		default:
			h.logger.Error("Failed to submit download", "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to submit download")
		}
		return
	}

	h.respondJSON(w, http.StatusAccepted, map[string]any{"download_id": id})
}

// ListDownloads returns one page of download history, newest first
func (h *Handlers) ListDownloads(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.respondError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = parsed
	}

	limit := 20
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			h.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	filter := models.DownloadFilter{
		Search: query.Get("search"),
		Status: query.Get("status"),
		Source: query.Get("source"),
		Page:   page,
		Limit:  limit,
	}

	downloads, total, err := h.db.QueryDownloads(filter)
	if err != nil {
		h.logger.Error("Failed to query downloads", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to query downloads")
		return
	}
	if downloads == nil {
		downloads = []*models.Download{}
	}

	totalPages := (total + limit - 1) / limit

	h.respondJSON(w, http.StatusOK, map[string]any{
		"downloads": downloads,
		"pagination": map[string]any{
			"current_page": page,
			"total_pages":  totalPages,
			"total_count":  total,
			"limit":        limit,
		},
	})
}

// GetDownload returns a single download record by ID
func (h *Handlers) GetDownload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid download id")
		return
	}

	download, err := h.db.GetDownload(id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "download not found")
		return
	}

	h.respondJSON(w, http.StatusOK, download)
}

// DownloadStats returns aggregate history counters plus the in-flight count
func (h *Handlers) DownloadStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetDownloadStats()
	if err != nil {
		h.logger.Error("Failed to get download stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get download stats")
		return
	}

	h.respondJSON(w, http.StatusOK, struct {
		*models.DownloadStats
		ActiveDownloads int `json:"active_downloads"`
	}{stats, h.orchestrator.ActiveCount()})
}
