package ytdlp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantOK      bool
		wantPercent float64
		wantSpeed   float64
		wantETA     int64
	}{
		{
			name:        "full progress line",
			line:        "[download]  42.5% of 3.45MiB at 1.23MiB/s ETA 00:42",
			wantOK:      true,
			wantPercent: 42.5,
			wantSpeed:   1.23 * 1024 * 1024,
			wantETA:     42,
		},
		{
			name:        "completion line has no speed or eta",
			line:        "[download] 100% of 3.00MiB in 00:03",
			wantOK:      true,
			wantPercent: 100,
		},
		{
			name:        "unknown speed and eta",
			line:        "[download]   0.1% of ~10.00MiB at Unknown B/s ETA Unknown",
			wantOK:      true,
			wantPercent: 0.1,
		},
		{
			name:   "destination line is not progress",
			line:   "[download] Destination: /downloads/track.webm",
			wantOK: false,
		},
		{
			name:   "unrelated tool output",
			line:   "[youtube] abc123: Downloading webpage",
			wantOK: false,
		},
		{
			name:   "empty line",
			line:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress, ok := parseProgressLine(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}

			require.InDelta(t, tt.wantPercent, progress.Percent, 0.001)
			require.InDelta(t, tt.wantSpeed, progress.SpeedBPS, 2)
			require.Equal(t, tt.wantETA, progress.ETASeconds)
		})
	}
}

func TestParseETA(t *testing.T) {
	tests := []struct {
		token string
		want  int64
	}{
		{"00:42", 42},
		{"02:05", 125},
		{"01:02:03", 3723},
		{"Unknown", 0},
		{"42", 0},
		{"1:2:3:4", 0},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			require.Equal(t, tt.want, parseETA(tt.token))
		})
	}
}

func TestParseDestination(t *testing.T) {
	path, extracted, ok := parseDestination("[download] Destination: /downloads/track.webm")
	require.True(t, ok)
	require.False(t, extracted)
	require.Equal(t, "/downloads/track.webm", path)

	path, extracted, ok = parseDestination("[ExtractAudio] Destination: /downloads/track.mp3")
	require.True(t, ok)
	require.True(t, extracted)
	require.Equal(t, "/downloads/track.mp3", path)

	_, _, ok = parseDestination("[download]  42.5% of 3.45MiB at 1.23MiB/s ETA 00:42")
	require.False(t, ok)
}

func TestResolveTarget(t *testing.T) {
	require.Equal(t, "https://example.com/watch?v=1", resolveTarget("https://example.com/watch?v=1"))
	require.Equal(t, "http://example.com/a", resolveTarget("http://example.com/a"))
	require.Equal(t, "ytsearch1:Post Malone - Congratulations", resolveTarget("Post Malone - Congratulations"))
}
