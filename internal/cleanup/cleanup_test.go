package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"playlist-downloader/internal/database"
	"playlist-downloader/pkg/models"
)

func newTestService(t *testing.T, retentionDays int) (*Service, *database.DB, string) {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	return NewService(db, dir, retentionDays), db, dir
}

func writeAgedFile(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("partial data"), 0o644))
	stamp := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
}

func TestService_SweepTempFiles(t *testing.T) {
	service, _, dir := newTestService(t, 0)

	writeAgedFile(t, filepath.Join(dir, "Artist - Song.mp3.part"), 2*time.Hour)
	writeAgedFile(t, filepath.Join(dir, "Artist - Song.mp3.ytdl"), 2*time.Hour)
	writeAgedFile(t, filepath.Join(dir, "staging.tmp"), 3*time.Hour)
	// Still being written, must survive
	writeAgedFile(t, filepath.Join(dir, "Other Song.mp3.part"), time.Minute)
	// Finished audio is never touched
	writeAgedFile(t, filepath.Join(dir, "Keeper - Track.mp3"), 48*time.Hour)

	removed, err := service.SweepTempFiles()
	require.NoError(t, err)
	require.Equal(t, 3, removed)

	require.NoFileExists(t, filepath.Join(dir, "Artist - Song.mp3.part"))
	require.NoFileExists(t, filepath.Join(dir, "Artist - Song.mp3.ytdl"))
	require.NoFileExists(t, filepath.Join(dir, "staging.tmp"))
	require.FileExists(t, filepath.Join(dir, "Other Song.mp3.part"))
	require.FileExists(t, filepath.Join(dir, "Keeper - Track.mp3"))
}

func TestService_SweepTempFiles_MissingDirectory(t *testing.T) {
	db, err := database.New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	service := NewService(db, "/nonexistent/downloads", 0)

	_, err = service.SweepTempFiles()
	require.Error(t, err)
}

func TestService_PruneHistory(t *testing.T) {
	service, db, _ := newTestService(t, 7)

	old := time.Now().Add(-30 * 24 * time.Hour)
	recent := time.Now().Add(-time.Hour)
	records := []*models.Download{
		{Filename: "old done", SourceURL: "u1", SourceType: models.SourceManual, Status: models.StatusCompleted, CreatedAt: old},
		{Filename: "old failed", SourceURL: "u2", SourceType: models.SourceManual, Status: models.StatusFailed, CreatedAt: old},
		{Filename: "recent done", SourceURL: "u3", SourceType: models.SourceManual, Status: models.StatusCompleted, CreatedAt: recent},
	}
	for _, record := range records {
		require.NoError(t, db.CreateDownload(record))
	}

	pruned, err := service.PruneHistory()
	require.NoError(t, err)
	require.Equal(t, int64(2), pruned)

	_, total, err := db.QueryDownloads(models.DownloadFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestService_PruneHistory_Disabled(t *testing.T) {
	service, db, _ := newTestService(t, 0)

	require.NoError(t, db.CreateDownload(&models.Download{
		Filename:   "ancient",
		SourceURL:  "u1",
		SourceType: models.SourceManual,
		Status:     models.StatusCompleted,
		CreatedAt:  time.Now().Add(-365 * 24 * time.Hour),
	}))

	pruned, err := service.PruneHistory()
	require.NoError(t, err)
	require.Equal(t, int64(0), pruned)

	_, total, err := db.QueryDownloads(models.DownloadFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestService_Run_StopsOnCancel(t *testing.T) {
	service, _, dir := newTestService(t, 0)
	writeAgedFile(t, filepath.Join(dir, "stale.part"), 2*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		service.Run(ctx)
		close(done)
	}()

	// The initial sweep runs before the ticker starts
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "stale.part"))
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}
