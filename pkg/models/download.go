// Package models defines the data structures used throughout the application
package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DownloadStatus represents the current status of a download
type DownloadStatus string

const (
	StatusProcessing DownloadStatus = "processing"
	StatusCompleted  DownloadStatus = "completed"
	StatusFailed     DownloadStatus = "failed"
)

// IsTerminal reports whether the status is a final state
func (s DownloadStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SourceType identifies which trigger path produced a download
type SourceType string

const (
	SourcePlaylist SourceType = "playlist"
	SourceManual   SourceType = "manual"
)

// Download represents one download attempt record
type Download struct {
	ID             int64          `json:"id" db:"id"`
	Filename       string         `json:"filename" db:"filename"`
	Artist         string         `json:"artist" db:"artist"`
	TrackName      string         `json:"track_name" db:"track_name"`
	SourceURL      string         `json:"source_url" db:"source_url"`
	SourceType     SourceType     `json:"source_type" db:"source_type"`
	Status         DownloadStatus `json:"status" db:"status"`
	FilePath       string         `json:"file_path,omitempty" db:"file_path"`
	FileSize       int64          `json:"file_size" db:"file_size"`
	SearchQuery    string         `json:"search_query,omitempty" db:"search_query"`
	PlaylistItemID string         `json:"playlist_item_id,omitempty" db:"playlist_item_id"`
	ErrorMessage   string         `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at" db:"completed_at"`
}

// TrackMetadata carries metadata known ahead of the download, typically
// supplied by the playlist watcher
type TrackMetadata struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Album  string `json:"album"`
}

// DownloadIntent is an unvalidated request to start a download. It is
// consumed exactly once; a persisted Download record supersedes it.
type DownloadIntent struct {
	SourceURL       string
	DesiredFilename string
	Origin          SourceType
	KnownMetadata   *TrackMetadata
	PlaylistItemID  string
}

// Validate checks the intent before any side effect takes place
func (i *DownloadIntent) Validate() error {
	source := strings.TrimSpace(i.SourceURL)
	if source == "" {
		return &InvalidIntentError{Reason: "source is empty"}
	}

	switch i.Origin {
	case SourceManual:
		u, err := url.Parse(source)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return &InvalidIntentError{Reason: fmt.Sprintf("malformed URL %q", source)}
		}
	case SourcePlaylist:
		// The source is a search phrase, non-empty is enough
	default:
		return &InvalidIntentError{Reason: fmt.Sprintf("unknown origin %q", i.Origin)}
	}

	return nil
}

// ContentKey returns the normalized identity of "what is being downloaded",
// used for duplicate-in-flight detection. Playlist intents key on the search
// phrase; manual intents key on the URL plus any filename override.
func (i *DownloadIntent) ContentKey() string {
	switch i.Origin {
	case SourcePlaylist:
		return strings.ToLower(strings.Join(strings.Fields(i.SourceURL), " "))
	default:
		key := strings.TrimSpace(i.SourceURL)
		if name := strings.TrimSpace(i.DesiredFilename); name != "" {
			key += "|" + name
		}
		return key
	}
}

// DownloadStats aggregates the download history
type DownloadStats struct {
	Total       int64            `json:"total"`
	Completed   int64            `json:"completed"`
	Failed      int64            `json:"failed"`
	Processing  int64            `json:"processing"`
	BySource    map[string]int64 `json:"by_source"`
	TotalSize   int64            `json:"total_size"`
	SuccessRate float64          `json:"success_rate"`
}

// DownloadFilter narrows history queries
type DownloadFilter struct {
	Search string
	Status string
	Source string
	Page   int
	Limit  int
}
