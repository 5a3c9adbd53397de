// Package cleanup removes stale partial-download artifacts and prunes old
// download history on a schedule.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"playlist-downloader/internal/database"
)

const sweepInterval = time.Hour

// tempSuffixes are the artifacts the fetch tool leaves behind when a
// download is interrupted
var tempSuffixes = []string{".part", ".ytdl", ".tmp"}

// Service sweeps the download directory and the download history
type Service struct {
	db           *database.DB
	logger       *slog.Logger
	downloadPath string
	retention    time.Duration
	tempFileAge  time.Duration
}

// NewService creates a cleanup service. A retention of zero days disables
// history pruning.
func NewService(db *database.DB, downloadPath string, retentionDays int) *Service {
	return &Service{
		db:           db,
		logger:       slog.Default(),
		downloadPath: downloadPath,
		retention:    time.Duration(retentionDays) * 24 * time.Hour,
		tempFileAge:  time.Hour,
	}
}

// Run sweeps once immediately, then hourly until ctx is canceled
func (s *Service) Run(ctx context.Context) {
	s.Sweep()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep removes stale temp files and prunes old history records
func (s *Service) Sweep() {
	removed, err := s.SweepTempFiles()
	if err != nil {
		s.logger.Warn("Temp file sweep failed", "error", err)
	} else if removed > 0 {
		s.logger.Info("Removed stale temp files", "count", removed)
	}

	pruned, err := s.PruneHistory()
	if err != nil {
		s.logger.Warn("History pruning failed", "error", err)
	} else if pruned > 0 {
		s.logger.Info("Pruned old download records", "count", pruned)
	}
}

// SweepTempFiles deletes partial-download artifacts older than tempFileAge.
// Fresh artifacts are kept since an active download may still be writing
// them.
func (s *Service) SweepTempFiles() (int, error) {
	entries, err := os.ReadDir(s.downloadPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read download directory: %w", err)
	}

	cutoff := time.Now().Add(-s.tempFileAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isTempFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.downloadPath, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("Failed to remove temp file", "file", path, "error", err)
			continue
		}

		s.logger.Info("Removed stale temp file", "file", path)
		removed++
	}

	return removed, nil
}

// PruneHistory deletes terminal download records older than the retention
// window
func (s *Service) PruneHistory() (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	return s.db.DeleteOldDownloads(s.retention)
}

func isTempFile(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range tempSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
