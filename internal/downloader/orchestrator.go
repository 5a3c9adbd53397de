// Package downloader orchestrates the download lifecycle: it validates
// intents, guards against duplicate in-flight work, drives the fetch tool
// and persists terminal outcomes before announcing them.
package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"playlist-downloader/internal/progress"
	"playlist-downloader/internal/telemetry"
	"playlist-downloader/internal/ytdlp"
	"playlist-downloader/pkg/models"
)

const (
	defaultMaxConcurrent = 3
	defaultTimeout       = 30 * time.Minute
	enrichTimeout        = 10 * time.Second
)

// Options tunes the orchestrator
type Options struct {
	// Enricher tags finished files, best effort. May be nil.
	Enricher Enricher
	// Metrics records download outcomes. May be nil.
	Metrics *telemetry.Telemetry
	// MaxConcurrent bounds simultaneous fetches
	MaxConcurrent int64
	// Timeout caps each download's wall-clock time
	Timeout time.Duration
}

// Orchestrator owns the download pipeline from accepted intent to terminal
// record. Submissions return as soon as a record exists; the fetch itself
// runs in the background.
type Orchestrator struct {
	store    Store
	driver   Driver
	hub      *progress.Hub
	enricher Enricher
	metrics  *telemetry.Telemetry
	active   *ActiveSet
	sem      *semaphore.Weighted
	timeout  time.Duration
	logger   *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a download orchestrator
func New(store Store, driver Driver, hub *progress.Hub, opts Options) *Orchestrator {
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = defaultMaxConcurrent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseCtx, cancel := context.WithCancel(context.Background())

	return &Orchestrator{
		store:    store,
		driver:   driver,
		hub:      hub,
		enricher: opts.Enricher,
		metrics:  opts.Metrics,
		active:   NewActiveSet(),
		sem:      semaphore.NewWeighted(maxConcurrent),
		timeout:  timeout,
		logger:   slog.Default(),
		baseCtx:  baseCtx,
		cancel:   cancel,
	}
}

// Submit validates the intent, claims its content key, persists a processing
// record and starts the background fetch. It returns the new download ID.
// Callers distinguish rejections by error type: InvalidIntentError,
// DuplicateInFlightError or StoreError.
func (o *Orchestrator) Submit(ctx context.Context, intent models.DownloadIntent) (int64, error) {
	if err := intent.Validate(); err != nil {
		return 0, err
	}

	key := intent.ContentKey()
	if !o.active.TryAcquire(key) {
		return 0, &models.DuplicateInFlightError{ContentKey: key}
	}

	download := &models.Download{
		Filename:       intent.DesiredFilename,
		SourceURL:      intent.SourceURL,
		SourceType:     intent.Origin,
		Status:         models.StatusProcessing,
		PlaylistItemID: intent.PlaylistItemID,
		CreatedAt:      time.Now(),
	}
	if intent.Origin == models.SourcePlaylist {
		download.SearchQuery = intent.SourceURL
	}
	if meta := intent.KnownMetadata; meta != nil {
		download.Artist = meta.Artist
		download.TrackName = meta.Title
	}

	if err := o.store.CreateDownload(download); err != nil {
		o.active.Release(key)
		return 0, &models.StoreError{Op: "create", Err: err}
	}

	// The topic must exist before the first event can fire
	o.hub.Open(download.ID)

	o.logger.Info("Accepted download",
		"download_id", download.ID,
		"source_type", download.SourceType,
		"target", download.SourceURL)

	o.wg.Add(1)
	go o.drive(download, key)

	return download.ID, nil
}

// ActiveCount reports how many downloads are currently in flight
func (o *Orchestrator) ActiveCount() int {
	return o.active.Len()
}

// Shutdown cancels in-flight downloads and waits for them to reach a
// terminal record, or for ctx to expire
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.cancel()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drive runs one download to its terminal state. The content key is held
// for the whole lifetime so duplicates stay rejected until the outcome is
// persisted.
func (o *Orchestrator) drive(download *models.Download, key string) {
	defer o.wg.Done()

	// Released exactly once: a second Release could free a key that a
	// resubmit claimed right after the terminal event
	release := sync.OnceFunc(func() { o.active.Release(key) })
	defer release()

	if o.metrics != nil {
		o.metrics.IncrementActiveDownloads()
		defer o.metrics.DecrementActiveDownloads()
	}

	var finished bool
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Download pipeline panicked",
				"download_id", download.ID,
				"panic", r)
			if !finished {
				o.finish(download, release, nil, fmt.Errorf("internal error: %v", r))
			}
		}
	}()

	ctx, cancel := context.WithTimeout(o.baseCtx, o.timeout)
	defer cancel()

	o.hub.Publish(models.ProgressEvent{
		DownloadID: download.ID,
		Type:       models.EventStart,
		Filename:   download.Filename,
		Status:     models.StatusProcessing,
	})

	result, err := o.fetch(ctx, download)
	finished = true
	o.finish(download, release, result, err)
}

// fetch resolves the target and downloads it under the concurrency limit
func (o *Orchestrator) fetch(ctx context.Context, download *models.Download) (*ytdlp.Result, error) {
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, &models.ExternalToolError{Message: "timed out waiting for a download slot", Err: err}
	}
	defer o.sem.Release(1)

	info, err := o.driver.Probe(ctx, download.SourceURL)
	if err != nil {
		return nil, err
	}

	filename := download.Filename
	if filename == "" {
		filename = ytdlp.CleanFilename(info.Title)
	}
	if filename == "" {
		filename = fmt.Sprintf("download-%d", download.ID)
	}
	download.Filename = filename

	if download.Artist == "" {
		download.Artist = info.Uploader
	}
	if download.TrackName == "" {
		download.TrackName = info.Title
	}

	onProgress := func(p ytdlp.Progress) {
		o.hub.Publish(models.ProgressEvent{
			DownloadID: download.ID,
			Type:       models.EventProgress,
			Filename:   download.Filename,
			Status:     models.StatusProcessing,
			Progress:   p.Percent,
			SpeedBPS:   p.SpeedBPS,
			ETASeconds: p.ETASeconds,
		})
	}

	req := ytdlp.Request{Target: download.SourceURL, Filename: filename}
	return o.driver.Download(ctx, req, onProgress)
}

// finish persists the terminal record, then publishes the terminal event.
// Persist-before-publish keeps late subscribers consistent: once the topic
// closes, the record already holds the outcome.
func (o *Orchestrator) finish(download *models.Download, release func(), result *ytdlp.Result, err error) {
	now := time.Now()
	download.CompletedAt = &now

	if err != nil {
		download.Status = models.StatusFailed
		download.ErrorMessage = err.Error()
		o.logger.Error("Download failed",
			"download_id", download.ID,
			"filename", download.Filename,
			"error", err)
	} else {
		download.Status = models.StatusCompleted
		download.FilePath = result.FilePath
		download.FileSize = result.FileSize
		download.ErrorMessage = ""
		o.logger.Info("Download completed",
			"download_id", download.ID,
			"filename", download.Filename,
			"file_size", result.FileSize)
		o.enrich(download)
	}

	if updateErr := o.store.UpdateDownload(download); updateErr != nil {
		o.logger.Error("Failed to persist terminal download state",
			"download_id", download.ID,
			"error", updateErr)
	}

	if o.metrics != nil {
		o.metrics.RecordDownload(string(download.SourceType), string(download.Status), now.Sub(download.CreatedAt))
	}

	// Free the key before announcing, so a resubmit triggered by the
	// terminal event is not rejected as a duplicate
	release()

	o.hub.Publish(TerminalEvent(download))
}

// enrich tags the finished file. Failures are logged and swallowed: the
// download already succeeded.
func (o *Orchestrator) enrich(download *models.Download) {
	if o.enricher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(o.baseCtx, enrichTimeout)
	defer cancel()

	meta := models.TrackMetadata{Artist: download.Artist, Title: download.TrackName}
	if err := o.enricher.Enrich(ctx, download.FilePath, meta); err != nil {
		o.logger.Warn("Failed to tag finished file",
			"download_id", download.ID,
			"file_path", download.FilePath,
			"error", err)
	}
}

// TerminalEvent builds the closing progress event for a finished download
func TerminalEvent(download *models.Download) models.ProgressEvent {
	event := models.ProgressEvent{
		DownloadID: download.ID,
		Filename:   download.Filename,
		Status:     download.Status,
	}

	if download.Status == models.StatusCompleted {
		event.Type = models.EventComplete
		event.Progress = 100
	} else {
		event.Type = models.EventError
		event.Error = download.ErrorMessage
	}

	return event
}
