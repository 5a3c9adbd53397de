// Package metadata tags finished audio files with the track details the
// application already knows.
package metadata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bogem/id3v2/v2"

	"playlist-downloader/pkg/models"
)

// Tagger writes ID3v2 tags onto downloaded audio files
type Tagger struct {
	logger *slog.Logger
}

// NewTagger creates a new file tagger
func NewTagger() *Tagger {
	return &Tagger{logger: slog.Default()}
}

// Enrich writes the known metadata onto the file at filePath. Empty fields
// leave the existing tag values untouched.
func (t *Tagger) Enrich(ctx context.Context, filePath string, meta models.TrackMetadata) error {
	if meta.Artist == "" && meta.Title == "" && meta.Album == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s for tagging: %w", filePath, err)
	}
	defer tag.Close()

	if meta.Title != "" {
		tag.SetTitle(meta.Title)
	}
	if meta.Artist != "" {
		tag.SetArtist(meta.Artist)
	}
	if meta.Album != "" {
		tag.SetAlbum(meta.Album)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags to %s: %w", filePath, err)
	}

	t.logger.Debug("Tagged file",
		"file_path", filePath,
		"artist", meta.Artist,
		"title", meta.Title)

	return nil
}
