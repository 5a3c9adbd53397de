// Package playlist watches an external playlist and feeds new tracks into
// the download pipeline. The poll interval adapts to activity: it resets to
// the minimum whenever new tracks appear and backs off geometrically while
// the playlist stays quiet.
package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"playlist-downloader/internal/spotify"
	"playlist-downloader/internal/ytdlp"
	"playlist-downloader/pkg/models"
)

const (
	defaultMinInterval = 30 * time.Second
	defaultMaxInterval = 5 * time.Minute
	defaultBackoff     = 1.5
	defaultCacheFile   = ".processed_tracks.json"
)

// Submitter accepts download intents produced by the watcher
type Submitter interface {
	Submit(ctx context.Context, intent models.DownloadIntent) (int64, error)
}

// RecordStore looks up download outcomes for removal reconciliation
type RecordStore interface {
	GetDownload(id int64) (*models.Download, error)
}

// Config tunes the watcher
type Config struct {
	PlaylistID  string
	MinInterval time.Duration
	MaxInterval time.Duration
	Backoff     float64
	CacheFile   string
}

// Stats counts watcher activity across the process lifetime. The counters
// survive restarts through the processed-tracks cache file.
type Stats struct {
	TotalDownloads      int64      `json:"total_downloads"`
	SuccessfulDownloads int64      `json:"successful_downloads"`
	FailedDownloads     int64      `json:"failed_downloads"`
	TracksRemoved       int64      `json:"tracks_removed"`
	LastSync            *time.Time `json:"last_sync,omitempty"`
}

// Status is a point-in-time snapshot of the watcher
type Status struct {
	Running         bool       `json:"running"`
	PlaylistID      string     `json:"playlist_id"`
	LastCheck       *time.Time `json:"last_check,omitempty"`
	IntervalSeconds int        `json:"interval_seconds"`
	ProcessedTracks int        `json:"processed_tracks"`
	PendingRemovals int        `json:"pending_removals"`
	Stats           Stats      `json:"stats"`
}

// pendingRemoval remembers a submitted track until its download reaches a
// terminal state
type pendingRemoval struct {
	TrackID string
	URI     string
	Name    string
}

// processedCache is the on-disk shape of the processed-tracks file
type processedCache struct {
	ProcessedTracks []string  `json:"processed_tracks"`
	LastUpdated     time.Time `json:"last_updated"`
	Stats           Stats     `json:"stats"`
}

// Watcher polls one playlist and submits unseen tracks for download. Tracks
// are marked processed once their submission is accepted, not once the
// download completes, so a long download is never resubmitted. Completed
// tracks are removed from the playlist best effort.
type Watcher struct {
	client    spotify.PlaylistClient
	submitter Submitter
	store     RecordStore
	cfg       Config
	logger    *slog.Logger
	trigger   chan struct{}

	mu        sync.Mutex
	running   bool
	lastCheck time.Time
	interval  time.Duration
	processed map[string]struct{}
	pending   map[int64]pendingRemoval
	stats     Stats
}

// New creates a watcher and loads the processed-tracks cache
func New(client spotify.PlaylistClient, submitter Submitter, store RecordStore, cfg Config) *Watcher {
	cfg.PlaylistID = spotify.NormalizePlaylistID(cfg.PlaylistID)
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = defaultMaxInterval
	}
	if cfg.MaxInterval < cfg.MinInterval {
		cfg.MaxInterval = cfg.MinInterval
	}
	if cfg.Backoff <= 1 {
		cfg.Backoff = defaultBackoff
	}
	if cfg.CacheFile == "" {
		cfg.CacheFile = defaultCacheFile
	}

	w := &Watcher{
		client:    client,
		submitter: submitter,
		store:     store,
		cfg:       cfg,
		logger:    slog.Default(),
		trigger:   make(chan struct{}, 1),
		interval:  cfg.MinInterval,
		processed: make(map[string]struct{}),
		pending:   make(map[int64]pendingRemoval),
	}
	w.loadCache()

	return w
}

// Run polls the playlist until ctx is canceled. The loop survives fetch
// failures and recovered panics for the lifetime of the process.
func (w *Watcher) Run(ctx context.Context) {
	w.setRunning(true)
	defer w.setRunning(false)

	w.logPlaylistInfo(ctx)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.saveCache()
			return
		case <-timer.C:
		case <-w.trigger:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		w.safeTick(ctx)

		w.mu.Lock()
		interval := w.interval
		w.mu.Unlock()
		timer.Reset(interval)
	}
}

// TriggerSync forces the next tick to run immediately. It never blocks; a
// trigger that arrives while one is already queued is coalesced.
func (w *Watcher) TriggerSync() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Status reports the watcher's current state
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	status := Status{
		Running:         w.running,
		PlaylistID:      w.cfg.PlaylistID,
		IntervalSeconds: int(w.interval / time.Second),
		ProcessedTracks: len(w.processed),
		PendingRemovals: len(w.pending),
		Stats:           w.stats,
	}
	if !w.lastCheck.IsZero() {
		lastCheck := w.lastCheck
		status.LastCheck = &lastCheck
	}

	return status
}

func (w *Watcher) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Playlist tick panicked", "panic", r)
		}
	}()

	w.tick(ctx)
}

// tick reconciles finished downloads, then submits any unseen tracks and
// adapts the poll interval
func (w *Watcher) tick(ctx context.Context) {
	w.mu.Lock()
	w.lastCheck = time.Now()
	w.mu.Unlock()

	w.reconcileRemovals(ctx)

	tracks, err := w.client.PlaylistTracks(ctx, w.cfg.PlaylistID)
	if err != nil {
		// Keep the current interval, the next tick retries
		w.logger.Error("Failed to fetch playlist tracks", "error", err)
		return
	}

	fresh := w.unprocessed(tracks)
	if len(fresh) == 0 {
		w.backoff()
		return
	}

	w.logger.Info("Found new playlist tracks", "count", len(fresh))

	accepted := 0
	for _, track := range fresh {
		if ctx.Err() != nil {
			break
		}
		if w.submitTrack(ctx, track) {
			accepted++
		}
	}

	w.resetInterval()

	if accepted > 0 {
		now := time.Now()
		w.mu.Lock()
		w.stats.LastSync = &now
		w.mu.Unlock()
		w.saveCache()
	}
}

// submitTrack hands one track to the orchestrator. Accepted tracks are
// marked processed and queued for removal once the download completes.
// Duplicates and failures are left unmarked so the next tick retries them.
func (w *Watcher) submitTrack(ctx context.Context, track spotify.Track) bool {
	intent := models.DownloadIntent{
		SourceURL:       track.SearchQuery,
		DesiredFilename: ytdlp.CleanFilename(track.SearchQuery),
		Origin:          models.SourcePlaylist,
		PlaylistItemID:  track.ID,
		KnownMetadata: &models.TrackMetadata{
			Artist: track.ArtistString,
			Title:  track.Name,
			Album:  track.Album,
		},
	}

	downloadID, err := w.submitter.Submit(ctx, intent)
	if err != nil {
		var dupErr *models.DuplicateInFlightError
		if errors.As(err, &dupErr) {
			w.logger.Debug("Track already being downloaded", "track", track.SearchQuery)
		} else {
			w.logger.Error("Failed to submit track",
				"track", track.SearchQuery,
				"error", err)
		}
		return false
	}

	w.mu.Lock()
	w.processed[track.ID] = struct{}{}
	w.pending[downloadID] = pendingRemoval{
		TrackID: track.ID,
		URI:     track.URI,
		Name:    track.SearchQuery,
	}
	w.stats.TotalDownloads++
	w.mu.Unlock()

	w.logger.Info("Submitted playlist track",
		"download_id", downloadID,
		"track", track.SearchQuery)

	return true
}

// reconcileRemovals checks submitted downloads for terminal outcomes.
// Completed tracks are removed from the playlist once, best effort; failed
// tracks stay processed so they are not retried endlessly.
func (w *Watcher) reconcileRemovals(ctx context.Context) {
	w.mu.Lock()
	ids := make([]int64, 0, len(w.pending))
	for id := range w.pending {
		ids = append(ids, id)
	}
	w.mu.Unlock()

	for _, id := range ids {
		record, err := w.store.GetDownload(id)
		if err != nil {
			w.logger.Error("Failed to look up download",
				"download_id", id,
				"error", err)
			continue
		}
		if !record.Status.IsTerminal() {
			continue
		}

		w.mu.Lock()
		item, ok := w.pending[id]
		if ok {
			delete(w.pending, id)
			if record.Status == models.StatusCompleted {
				w.stats.SuccessfulDownloads++
			} else {
				w.stats.FailedDownloads++
			}
		}
		w.mu.Unlock()
		if !ok {
			continue
		}

		if record.Status != models.StatusCompleted {
			w.logger.Warn("Playlist download failed",
				"download_id", id,
				"track", item.Name,
				"error", record.ErrorMessage)
			continue
		}

		if err := w.client.RemoveTrack(ctx, w.cfg.PlaylistID, item.URI); err != nil {
			w.logger.Warn("Could not remove track from playlist",
				"track", item.Name,
				"error", err)
			continue
		}

		w.mu.Lock()
		w.stats.TracksRemoved++
		w.mu.Unlock()

		w.logger.Info("Removed track from playlist", "track", item.Name)
	}
}

func (w *Watcher) unprocessed(tracks []spotify.Track) []spotify.Track {
	w.mu.Lock()
	defer w.mu.Unlock()

	var fresh []spotify.Track
	for _, track := range tracks {
		if _, seen := w.processed[track.ID]; !seen {
			fresh = append(fresh, track)
		}
	}

	return fresh
}

func (w *Watcher) resetInterval() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = w.cfg.MinInterval
}

func (w *Watcher) backoff() {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := time.Duration(float64(w.interval) * w.cfg.Backoff)
	if next > w.cfg.MaxInterval {
		next = w.cfg.MaxInterval
	}
	w.interval = next
}

func (w *Watcher) setRunning(running bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = running
}

func (w *Watcher) logPlaylistInfo(ctx context.Context) {
	info, err := w.client.PlaylistInfo(ctx, w.cfg.PlaylistID)
	if err != nil {
		w.logger.Warn("Could not fetch playlist info", "error", err)
		return
	}

	w.logger.Info("Watching playlist",
		"playlist", info.Name,
		"total_tracks", info.TotalTracks)
}

func (w *Watcher) loadCache() {
	data, err := os.ReadFile(w.cfg.CacheFile)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("Could not load processed tracks cache", "error", err)
		}
		return
	}

	var cache processedCache
	if err := json.Unmarshal(data, &cache); err != nil {
		w.logger.Warn("Could not parse processed tracks cache", "error", err)
		return
	}

	for _, id := range cache.ProcessedTracks {
		w.processed[id] = struct{}{}
	}
	w.stats = cache.Stats
}

func (w *Watcher) saveCache() {
	w.mu.Lock()
	cache := processedCache{
		ProcessedTracks: make([]string, 0, len(w.processed)),
		LastUpdated:     time.Now(),
		Stats:           w.stats,
	}
	for id := range w.processed {
		cache.ProcessedTracks = append(cache.ProcessedTracks, id)
	}
	w.mu.Unlock()

	sort.Strings(cache.ProcessedTracks)

	data, err := json.MarshalIndent(cache, "", "  ")
	if err == nil {
		err = os.WriteFile(w.cfg.CacheFile, data, 0o644)
	}
	if err != nil {
		w.logger.Error("Could not save processed tracks cache", "error", err)
	}
}
