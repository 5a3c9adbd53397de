package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playlist-downloader/internal/cleanup"
	"playlist-downloader/internal/config"
	"playlist-downloader/internal/database"
	"playlist-downloader/internal/downloader"
	"playlist-downloader/internal/metadata"
	"playlist-downloader/internal/playlist"
	"playlist-downloader/internal/progress"
	"playlist-downloader/internal/spotify"
	"playlist-downloader/internal/telemetry"
	"playlist-downloader/internal/web"
	"playlist-downloader/internal/ytdlp"
	"playlist-downloader/pkg/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup structured logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting Playlist Downloader", "version", "1.0.0")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	// Records left processing by a previous run can never finish
	count, err := db.MarkStaleProcessing("interrupted by restart")
	if err != nil {
		slog.Error("Failed to sweep stale processing records", "error", err)
	} else if count > 0 {
		slog.Info("Failed stale processing records from previous run", "count", count)
	}

	tel, err := telemetry.New(telemetry.Config{
		Enabled:     cfg.MetricsEnabled,
		ServiceName: "playlist-downloader",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	hub := progress.NewHub(terminalLookup(db))
	driver := ytdlp.NewClient(cfg.YtdlpPath, cfg.DownloadPath)

	orch := downloader.New(db, driver, hub, downloader.Options{
		Enricher:      metadata.NewTagger(),
		Metrics:       tel,
		MaxConcurrent: cfg.MaxConcurrentDownloads,
		Timeout:       cfg.DownloadTimeout,
	})

	var watcher *playlist.Watcher
	if cfg.SpotifyEnabled() {
		spotifyClient := spotify.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRefreshToken)
		watcher = playlist.New(spotifyClient, orch, db, playlist.Config{
			PlaylistID:  cfg.SpotifyPlaylistID,
			MinInterval: cfg.PollInterval,
			MaxInterval: cfg.MaxPollInterval,
			CacheFile:   cfg.ProcessedCachePath,
		})
	} else {
		slog.Info("Playlist watching disabled, Spotify credentials not configured")
	}

	cleanupService := cleanup.NewService(db, cfg.DownloadPath, cfg.HistoryRetentionDays)

	server := web.NewServer(cfg, db, orch, hub, driver, watcher, tel)

	return runServices(server, orch, watcher, cleanupService, tel)
}

// runServices starts the background services and the HTTP server, then blocks
// until a shutdown signal arrives or the server fails.
func runServices(server *web.Server, orch *downloader.Orchestrator, watcher *playlist.Watcher, cleanupService *cleanup.Service, tel *telemetry.Telemetry) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if watcher != nil {
		go watcher.Run(ctx)
	}
	go cleanupService.Run(ctx)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	}

	// Stop the watcher and cleanup loops first so nothing new is submitted
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shutdown HTTP server gracefully", "error", err)
	}

	if err := orch.Shutdown(shutdownCtx); err != nil {
		slog.Error("Some downloads did not reach a terminal state before shutdown", "error", err)
	}

	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shutdown telemetry", "error", err)
	}

	slog.Info("Shutdown complete")
	return nil
}

// terminalLookup lets late progress subscribers learn the outcome of downloads
// that finished in an earlier run
func terminalLookup(db *database.DB) progress.TerminalLookup {
	return func(downloadID int64) (models.ProgressEvent, bool) {
		download, err := db.GetDownload(downloadID)
		if err != nil || !download.Status.IsTerminal() {
			return models.ProgressEvent{}, false
		}
		return downloader.TerminalEvent(download), true
	}
}

// setupLogging configures structured logging based on the log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}
