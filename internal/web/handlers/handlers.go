// Package handlers provides the HTTP handlers for the JSON API
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"playlist-downloader/internal/database"
	"playlist-downloader/internal/downloader"
	"playlist-downloader/internal/playlist"
	"playlist-downloader/internal/progress"
)

// SiteLister reports which well-known sites the fetch tool can handle
type SiteLister interface {
	SupportedSites(ctx context.Context) []string
}

// Handlers contains all HTTP handlers and their dependencies
type Handlers struct {
	db           *database.DB
	orchestrator *downloader.Orchestrator
	hub          *progress.Hub
	sites        SiteLister
	watcher      *playlist.Watcher
	downloadPath string
	maxRecent    int
	logger       *slog.Logger
}

// New creates a handlers instance. The watcher may be nil when playlist
// watching is not configured.
func New(db *database.DB, orch *downloader.Orchestrator, hub *progress.Hub, sites SiteLister, watcher *playlist.Watcher, downloadPath string, maxRecent int) *Handlers {
	if maxRecent < 1 {
		maxRecent = 10
	}

	return &Handlers{
		db:           db,
		orchestrator: orch,
		hub:          hub,
		sites:        sites,
		watcher:      watcher,
		downloadPath: downloadPath,
		maxRecent:    maxRecent,
		logger:       slog.Default(),
	}
}

// Health reports process liveness and whether the download directory is usable
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	info, err := os.Stat(h.downloadPath)

	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":               "healthy",
		"download_path":        h.downloadPath,
		"download_path_exists": err == nil && info.IsDir(),
	})
}

// SupportedSites lists the sites the fetch tool accepts for manual submissions
func (h *Handlers) SupportedSites(w http.ResponseWriter, r *http.Request) {
	sites := h.sites.SupportedSites(r.Context())

	h.respondJSON(w, http.StatusOK, map[string]any{
		"sites": sites,
		"count": len(sites),
	})
}

// recentFile is one entry in the recent files listing
type recentFile struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	SizeHuman  string    `json:"size_human"`
	ModifiedAt time.Time `json:"modified_at"`
}

// RecentFiles lists the newest finished files in the download directory
func (h *Handlers) RecentFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.downloadPath)
	if err != nil {
		h.logger.Error("Failed to read download directory", "path", h.downloadPath, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to read download directory")
		return
	}

	files := make([]recentFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || isHiddenOrPartial(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, recentFile{
			Name:       entry.Name(),
			Size:       info.Size(),
			SizeHuman:  humanize.Bytes(uint64(info.Size())),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedAt.After(files[j].ModifiedAt)
	})
	if len(files) > h.maxRecent {
		files = files[:h.maxRecent]
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"files": files})
}

// isHiddenOrPartial filters dotfiles and in-progress download artifacts out
// of the recent files listing
func isHiddenOrPartial(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".part", ".ytdl", ".tmp":
		return true
	}
	return false
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
