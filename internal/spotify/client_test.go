package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	client := New("client-id", "client-secret", "refresh-token")
	require.NotNil(t, client)
	require.Equal(t, DefaultBaseURL, client.baseURL)
}

func TestNormalizePlaylistID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare id",
			raw:  "37i9dQZF1DXcBWIGoYBM5M",
			want: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name: "spotify uri",
			raw:  "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M",
			want: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name: "share url with query",
			raw:  "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123",
			want: "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name: "share url without query",
			raw:  "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			want: "37i9dQZF1DXcBWIGoYBM5M",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizePlaylistID(tt.raw))
		})
	}
}

func TestClient_PlaylistTracks(t *testing.T) {
	var requestedPaths []string

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPaths = append(requestedPaths, r.URL.Path)

		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{
				"items": [
					{"track": {"id": "t2", "name": "Song B", "type": "track", "uri": "spotify:track:t2", "duration_ms": 180000,
						"artists": [{"name": "Solo Artist"}], "album": {"name": "Album B"}}}
				],
				"next": null,
				"total": 4
			}`)
			return
		}

		fmt.Fprintf(w, `{
			"items": [
				{"track": {"id": "t1", "name": "Song A", "type": "track", "uri": "spotify:track:t1", "duration_ms": 212000,
					"artists": [{"name": "Artist One"}, {"name": "Artist Two"}], "album": {"name": "Album A"}}},
				{"track": {"id": "e1", "name": "Some Episode", "type": "episode", "uri": "spotify:episode:e1",
					"artists": [], "album": {"name": ""}}},
				{"track": null}
			],
			"next": "%s/playlists/pl123/tracks?page=2",
			"total": 4
		}`, server.URL)
	}))
	defer server.Close()

	client := New("client-id", "client-secret", "refresh-token")
	client.baseURL = server.URL
	client.httpClient = server.Client()

	tracks, err := client.PlaylistTracks(context.Background(), "https://open.spotify.com/playlist/pl123?si=xyz")
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	// The share URL is normalized before hitting the API
	require.Equal(t, "/playlists/pl123/tracks", requestedPaths[0])

	first := tracks[0]
	require.Equal(t, "t1", first.ID)
	require.Equal(t, "Song A", first.Name)
	require.Equal(t, []string{"Artist One", "Artist Two"}, first.Artists)
	require.Equal(t, "Artist One, Artist Two", first.ArtistString)
	require.Equal(t, "Artist One - Song A", first.SearchQuery)
	require.Equal(t, "Album A", first.Album)
	require.Equal(t, "spotify:track:t1", first.URI)
	require.Equal(t, 0, first.Position)

	second := tracks[1]
	require.Equal(t, "t2", second.ID)
	require.Equal(t, "Solo Artist - Song B", second.SearchQuery)
	require.Equal(t, 1, second.Position)
}

func TestClient_PlaylistTracks_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"status": 401, "message": "The access token expired"}}`)
	}))
	defer server.Close()

	client := New("client-id", "client-secret", "refresh-token")
	client.baseURL = server.URL
	client.httpClient = server.Client()

	_, err := client.PlaylistTracks(context.Background(), "pl123")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Contains(t, apiErr.Message, "access token expired")
}

func TestClient_RemoveTrack(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotBody   map[string][]map[string]string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		fmt.Fprint(w, `{"snapshot_id": "snap1"}`)
	}))
	defer server.Close()

	client := New("client-id", "client-secret", "refresh-token")
	client.baseURL = server.URL
	client.httpClient = server.Client()

	err := client.RemoveTrack(context.Background(), "spotify:playlist:pl123", "spotify:track:t1")
	require.NoError(t, err)

	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "/playlists/pl123/tracks", gotPath)
	require.Equal(t, map[string][]map[string]string{
		"tracks": {{"uri": "spotify:track:t1"}},
	}, gotBody)
}

func TestClient_RemoveTrack_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"status": 403, "message": "Insufficient client scope"}}`)
	}))
	defer server.Close()

	client := New("client-id", "client-secret", "refresh-token")
	client.baseURL = server.URL
	client.httpClient = server.Client()

	err := client.RemoveTrack(context.Background(), "pl123", "spotify:track:t1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestClient_PlaylistInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "pl123", "name": "Liked Mixes", "snapshot_id": "snap9", "tracks": {"total": 42}}`)
	}))
	defer server.Close()

	client := New("client-id", "client-secret", "refresh-token")
	client.baseURL = server.URL
	client.httpClient = server.Client()

	info, err := client.PlaylistInfo(context.Background(), "pl123")
	require.NoError(t, err)
	require.Equal(t, "pl123", info.ID)
	require.Equal(t, "Liked Mixes", info.Name)
	require.Equal(t, "snap9", info.SnapshotID)
	require.Equal(t, 42, info.TotalTracks)
}
