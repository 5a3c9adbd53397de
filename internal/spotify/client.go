// Package spotify provides client functionality for the Spotify Web API
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the base URL for the Spotify Web API
	DefaultBaseURL = "https://api.spotify.com/v1"

	// tokenURL is the OAuth endpoint access tokens are refreshed against
	tokenURL = "https://accounts.spotify.com/api/token"

	// pageLimit is the maximum page size the playlist tracks endpoint allows
	pageLimit = 100
)

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// Client represents a Spotify Web API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Track is a simplified view of a playlist entry
type Track struct {
	ID           string
	Name         string
	Artists      []string
	ArtistString string
	Album        string
	DurationMS   int64
	URI          string
	Position     int

	// SearchQuery is "FirstArtist - TrackName", the phrase used to locate the
	// track on audio platforms
	SearchQuery string
}

// Playlist describes playlist-level metadata
type Playlist struct {
	ID          string
	Name        string
	SnapshotID  string
	TotalTracks int
}

// APIError represents an error response from the API
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error implements the error interface for APIError
func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error (status %d): %s", e.Status, e.Message)
}

// PlaylistClient defines the interface for Spotify playlist operations
type PlaylistClient interface {
	PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)
	RemoveTrack(ctx context.Context, playlistID, trackURI string) error
	PlaylistInfo(ctx context.Context, playlistID string) (*Playlist, error)
}

// New creates a new Spotify client. Access tokens are minted from the
// long-lived refresh token and renewed automatically.
func New(clientID, clientSecret, refreshToken string) *Client {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}

	source := conf.TokenSource(context.Background(), &oauth2.Token{RefreshToken: refreshToken})
	httpClient := oauth2.NewClient(context.Background(), source)
	httpClient.Timeout = 30 * time.Second

	return &Client{
		baseURL:    DefaultBaseURL,
		httpClient: httpClient,
	}
}

// NormalizePlaylistID accepts a bare playlist ID, a spotify:playlist: URI, or
// an open.spotify.com URL and returns the bare ID.
func NormalizePlaylistID(raw string) string {
	switch {
	case strings.HasPrefix(raw, "spotify:playlist:"):
		parts := strings.Split(raw, ":")
		return parts[len(parts)-1]
	case strings.HasPrefix(raw, "https://open.spotify.com/playlist/"):
		id := raw[strings.LastIndex(raw, "/")+1:]
		if i := strings.IndexByte(id, '?'); i >= 0 {
			id = id[:i]
		}
		return id
	default:
		return raw
	}
}

type apiTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	URI        string `json:"uri"`
	DurationMS int64  `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
}

type playlistTracksResponse struct {
	Items []struct {
		Track *apiTrack `json:"track"`
	} `json:"items"`
	Next  string `json:"next"`
	Total int    `json:"total"`
}

// PlaylistTracks retrieves every track in a playlist, following pagination.
// Episodes and unavailable entries are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	playlistID = NormalizePlaylistID(playlistID)
	endpoint := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", c.baseURL, playlistID, pageLimit)

	var tracks []Track
	for endpoint != "" {
		page, err := c.fetchTracksPage(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.Type != "track" {
				continue
			}
			tracks = append(tracks, simplifyTrack(item.Track, len(tracks)))
		}

		endpoint = page.Next
	}

	return tracks, nil
}

func (c *Client) fetchTracksPage(ctx context.Context, endpoint string) (*playlistTracksResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var page playlistTracksResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &page, nil
}

// RemoveTrack removes all occurrences of a track from a playlist
func (c *Client) RemoveTrack(ctx context.Context, playlistID, trackURI string) error {
	playlistID = NormalizePlaylistID(playlistID)
	endpoint := fmt.Sprintf("%s/playlists/%s/tracks", c.baseURL, playlistID)

	payload, err := json.Marshal(map[string]any{
		"tracks": []map[string]string{{"uri": trackURI}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return checkResponse(resp)
}

// PlaylistInfo retrieves playlist-level metadata
func (c *Client) PlaylistInfo(ctx context.Context, playlistID string) (*Playlist, error) {
	playlistID = NormalizePlaylistID(playlistID)
	endpoint := fmt.Sprintf("%s/playlists/%s?fields=id,name,snapshot_id,tracks(total)", c.baseURL, playlistID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var payload struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		SnapshotID string `json:"snapshot_id"`
		Tracks     struct {
			Total int `json:"total"`
		} `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &Playlist{
		ID:          payload.ID,
		Name:        payload.Name,
		SnapshotID:  payload.SnapshotID,
		TotalTracks: payload.Tracks.Total,
	}, nil
}

// checkResponse surfaces API-level errors from non-2xx responses
func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var payload struct {
		Error *APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != nil {
		if payload.Error.Status == 0 {
			payload.Error.Status = resp.StatusCode
		}
		return payload.Error
	}

	return fmt.Errorf("API request failed with status %d", resp.StatusCode)
}

func simplifyTrack(t *apiTrack, position int) Track {
	artists := make([]string, 0, len(t.Artists))
	for _, artist := range t.Artists {
		artists = append(artists, artist.Name)
	}

	searchQuery := t.Name
	if len(artists) > 0 {
		searchQuery = fmt.Sprintf("%s - %s", artists[0], t.Name)
	}

	return Track{
		ID:           t.ID,
		Name:         t.Name,
		Artists:      artists,
		ArtistString: strings.Join(artists, ", "),
		Album:        t.Album.Name,
		DurationMS:   t.DurationMS,
		URI:          t.URI,
		Position:     position,
		SearchQuery:  searchQuery,
	}
}
