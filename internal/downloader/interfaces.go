package downloader

import (
	"context"

	"playlist-downloader/internal/ytdlp"
	"playlist-downloader/pkg/models"
)

// Store defines the record store operations used by the orchestrator
//
//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
type Store interface {
	CreateDownload(download *models.Download) error
	GetDownload(id int64) (*models.Download, error)
	UpdateDownload(download *models.Download) error
}

// Driver resolves targets and fetches audio through the external tool
type Driver interface {
	Probe(ctx context.Context, target string) (*ytdlp.TrackInfo, error)
	Download(ctx context.Context, req ytdlp.Request, onProgress func(ytdlp.Progress)) (*ytdlp.Result, error)
}

// Enricher applies metadata tags to finished audio files
type Enricher interface {
	Enrich(ctx context.Context, filePath string, meta models.TrackMetadata) error
}
