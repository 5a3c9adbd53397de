package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"playlist-downloader/internal/playlist"
	spotifymocks "playlist-downloader/internal/spotify/mocks"
)

func newTestWatcher(t *testing.T, env *testEnv) *playlist.Watcher {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := spotifymocks.NewMockPlaylistClient(ctrl)

	return playlist.New(client, env.orch, env.db, playlist.Config{
		PlaylistID: "37i9dQZF1DXcBWIGoYBM5M",
		CacheFile:  filepath.Join(t.TempDir(), "cache.json"),
	})
}

func TestHandlers_TriggerSync_NotConfigured(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handlers.TriggerSync(w, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "not configured")
}

func TestHandlers_SyncStatus_NotConfigured(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handlers.SyncStatus(w, httptest.NewRequest(http.MethodGet, "/api/sync/status", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp syncStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Configured)
	require.Nil(t, resp.Status)
}

func TestHandlers_TriggerSync(t *testing.T) {
	env := newTestEnv(t)
	env.handlers.watcher = newTestWatcher(t, env)

	w := httptest.NewRecorder()
	env.handlers.TriggerSync(w, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Contains(t, w.Body.String(), "sync scheduled")
}

func TestHandlers_SyncStatus(t *testing.T) {
	env := newTestEnv(t)
	env.handlers.watcher = newTestWatcher(t, env)

	w := httptest.NewRecorder()
	env.handlers.SyncStatus(w, httptest.NewRequest(http.MethodGet, "/api/sync/status", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp syncStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Configured)
	require.NotNil(t, resp.Status)
	require.Equal(t, "37i9dQZF1DXcBWIGoYBM5M", resp.Status.PlaylistID)
	require.False(t, resp.Status.Running)
	require.Equal(t, 30, resp.Status.IntervalSeconds)
}
