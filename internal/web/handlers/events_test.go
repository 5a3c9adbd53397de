package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"playlist-downloader/internal/ytdlp"
	"playlist-downloader/pkg/models"
)

type sseFrame struct {
	Event string
	Data  string
}

// readFrame reads one complete SSE frame, skipping heartbeat comments. It
// returns false when the stream has ended.
func readFrame(t *testing.T, scanner *bufio.Scanner) (sseFrame, bool) {
	t.Helper()

	var frame sseFrame
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if frame.Event != "" || frame.Data != "" {
				return frame, true
			}
		case strings.HasPrefix(line, ":"):
			// heartbeat comment
		case strings.HasPrefix(line, "event: "):
			frame.Event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			frame.Data = strings.TrimPrefix(line, "data: ")
		}
	}
	return frame, false
}

func TestHandlers_StreamProgress_FollowsDownloadToTerminal(t *testing.T) {
	env := newTestEnv(t)

	release := make(chan struct{})
	env.driver.EXPECT().Probe(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, target string) (*ytdlp.TrackInfo, error) {
			<-release
			return &ytdlp.TrackInfo{ID: "v1", Title: "Streamed Track"}, nil
		})
	env.driver.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req ytdlp.Request, onProgress func(ytdlp.Progress)) (*ytdlp.Result, error) {
			onProgress(ytdlp.Progress{Percent: 55.5, SpeedBPS: 1 << 20, ETASeconds: 4})
			return &ytdlp.Result{FilePath: "/downloads/Streamed Track.mp3", FileSize: 999}, nil
		})

	id, err := env.orch.Submit(context.Background(), models.DownloadIntent{
		SourceURL: "https://example.com/stream",
		Origin:    models.SourceManual,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(env.handlers.StreamProgress))
	defer srv.Close()

	resp, err := http.Get(fmt.Sprintf("%s?download_id=%d", srv.URL, id))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// The driver is held until the subscriber is attached, so no progress
	// event can slip past the stream
	close(release)

	scanner := bufio.NewScanner(resp.Body)
	var frames []sseFrame
	for {
		frame, ok := readFrame(t, scanner)
		if !ok {
			break
		}
		frames = append(frames, frame)
	}
	require.NotEmpty(t, frames)

	var sawProgress bool
	for _, frame := range frames {
		if frame.Event == "progress" {
			sawProgress = true
		}
	}
	require.True(t, sawProgress)

	last := frames[len(frames)-1]
	require.Equal(t, "complete", last.Event)

	var event models.ProgressEvent
	require.NoError(t, json.Unmarshal([]byte(last.Data), &event))
	require.Equal(t, id, event.DownloadID)
	require.Equal(t, models.EventComplete, event.Type)
	require.InDelta(t, 100.0, event.Progress, 0.01)
}

func TestHandlers_StreamProgress_FinishedDownloadReplaysTerminal(t *testing.T) {
	env := newTestEnv(t)

	env.hub.Publish(models.ProgressEvent{
		DownloadID: 42,
		Type:       models.EventError,
		Filename:   "gone.mp3",
		Status:     models.StatusFailed,
		Error:      "no results found",
	})

	srv := httptest.NewServer(http.HandlerFunc(env.handlers.StreamProgress))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?download_id=42")
	require.NoError(t, err)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)

	frame, ok := readFrame(t, scanner)
	require.True(t, ok)
	require.Equal(t, "error", frame.Event)

	var event models.ProgressEvent
	require.NoError(t, json.Unmarshal([]byte(frame.Data), &event))
	require.Equal(t, int64(42), event.DownloadID)
	require.Equal(t, "no results found", event.Error)

	_, ok = readFrame(t, scanner)
	require.False(t, ok, "stream should end after the terminal event")
}

func TestHandlers_StreamProgress_UnknownDownloadEndsImmediately(t *testing.T) {
	env := newTestEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(env.handlers.StreamProgress))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?download_id=12345")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, ok := readFrame(t, bufio.NewScanner(resp.Body))
	require.False(t, ok)
}

func TestHandlers_StreamProgress_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handlers.StreamProgress(w, httptest.NewRequest(http.MethodGet, "/api/progress?download_id=abc", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_StreamProgress_FirehoseOutlivesTerminals(t *testing.T) {
	env := newTestEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(env.handlers.StreamProgress))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	env.hub.Publish(models.ProgressEvent{
		DownloadID: 7,
		Type:       models.EventProgress,
		Status:     models.StatusProcessing,
		Progress:   10,
	})
	env.hub.Publish(models.ProgressEvent{
		DownloadID: 7,
		Type:       models.EventComplete,
		Status:     models.StatusCompleted,
		Progress:   100,
	})

	scanner := bufio.NewScanner(resp.Body)

	first, ok := readFrame(t, scanner)
	require.True(t, ok)
	require.Equal(t, "progress", first.Event)

	// A terminal event closes per-download streams but not the firehose
	second, ok := readFrame(t, scanner)
	require.True(t, ok)
	require.Equal(t, "complete", second.Event)
}
