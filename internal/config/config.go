// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	ServerPort   string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"playlist-downloader.db"`
	DownloadPath string `env:"DOWNLOAD_PATH" envDefault:"/downloads"`

	YtdlpPath              string        `env:"YTDLP_PATH" envDefault:"yt-dlp"`
	DownloadTimeout        time.Duration `env:"DOWNLOAD_TIMEOUT" envDefault:"30m"`
	MaxConcurrentDownloads int64         `env:"MAX_CONCURRENT_DOWNLOADS" envDefault:"3"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRefreshToken string `env:"SPOTIFY_REFRESH_TOKEN"`
	SpotifyPlaylistID   string `env:"SPOTIFY_PLAYLIST_ID"`

	PollInterval       time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`
	MaxPollInterval    time.Duration `env:"MAX_POLL_INTERVAL" envDefault:"5m"`
	ProcessedCachePath string        `env:"PROCESSED_CACHE_PATH" envDefault:".processed_tracks.json"`

	MaxRecentFiles       int  `env:"MAX_RECENT_FILES" envDefault:"10"`
	HistoryRetentionDays int  `env:"HISTORY_RETENTION_DAYS" envDefault:"0"`
	MetricsEnabled       bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	logLevel := strings.ToLower(c.LogLevel)
	isValidLevel := false
	for _, level := range validLogLevels {
		if logLevel == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.LogLevel, validLogLevels)
	}

	if c.DownloadPath == "" {
		return fmt.Errorf("DOWNLOAD_PATH cannot be empty")
	}

	cleanPath := filepath.Clean(c.DownloadPath)
	if !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("DOWNLOAD_PATH must be an absolute path, got: %s", c.DownloadPath)
	}

	// Check if path exists and is a directory (only if it exists)
	if info, err := os.Stat(cleanPath); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("DOWNLOAD_PATH must be a directory, got file: %s", cleanPath)
		}
	}
	c.DownloadPath = cleanPath

	if c.MaxConcurrentDownloads < 1 {
		return fmt.Errorf("MAX_CONCURRENT_DOWNLOADS must be at least 1, got: %d", c.MaxConcurrentDownloads)
	}

	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("DOWNLOAD_TIMEOUT must be positive, got: %s", c.DownloadTimeout)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got: %s", c.PollInterval)
	}

	if c.MaxPollInterval < c.PollInterval {
		return fmt.Errorf("MAX_POLL_INTERVAL (%s) must not be below POLL_INTERVAL (%s)",
			c.MaxPollInterval, c.PollInterval)
	}

	if c.HistoryRetentionDays < 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS cannot be negative, got: %d", c.HistoryRetentionDays)
	}

	// Spotify settings are optional as a group: the watcher is disabled when
	// they are absent, but a partial set is a misconfiguration
	if c.spotifyPartiallyConfigured() {
		return fmt.Errorf("SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, SPOTIFY_REFRESH_TOKEN and SPOTIFY_PLAYLIST_ID must be set together")
	}

	return nil
}

// SpotifyEnabled reports whether the playlist watcher can run
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != "" &&
		c.SpotifyRefreshToken != "" && c.SpotifyPlaylistID != ""
}

func (c *Config) spotifyPartiallyConfigured() bool {
	anySet := c.SpotifyClientID != "" || c.SpotifyClientSecret != "" ||
		c.SpotifyRefreshToken != "" || c.SpotifyPlaylistID != ""
	return anySet && !c.SpotifyEnabled()
}
