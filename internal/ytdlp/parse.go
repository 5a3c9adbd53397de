package ytdlp

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Progress is a single progress sample parsed from tool output
type Progress struct {
	Percent    float64
	SpeedBPS   float64
	ETASeconds int64
}

const (
	downloadLinePrefix = "[download]"
	extractDestPrefix  = "[ExtractAudio] Destination: "
	downloadDestPrefix = "[download] Destination: "
)

// parseProgressLine extracts a progress sample from a "[download]" status
// line, e.g. "[download]  42.5% of 3.45MiB at 1.23MiB/s ETA 00:42".
func parseProgressLine(line string) (Progress, bool) {
	if !strings.HasPrefix(line, downloadLinePrefix) {
		return Progress{}, false
	}

	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.HasSuffix(fields[1], "%") {
		return Progress{}, false
	}

	percent, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], "%"), 64)
	if err != nil {
		return Progress{}, false
	}

	progress := Progress{Percent: percent}

	for i := 2; i < len(fields)-1; i++ {
		switch fields[i] {
		case "at":
			progress.SpeedBPS = parseSpeed(fields[i+1])
		case "ETA":
			progress.ETASeconds = parseETA(fields[i+1])
		}
	}

	return progress, true
}

// parseSpeed converts tokens like "1.23MiB/s" to bytes per second. Unknown
// values yield zero.
func parseSpeed(token string) float64 {
	token = strings.TrimSuffix(token, "/s")
	bytes, err := humanize.ParseBytes(token)
	if err != nil {
		return 0
	}
	return float64(bytes)
}

// parseETA converts "mm:ss" or "hh:mm:ss" tokens to seconds. Unknown values
// yield zero.
func parseETA(token string) int64 {
	parts := strings.Split(token, ":")

	var seconds int64
	for _, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0
		}
		seconds = seconds*60 + n
	}

	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	return seconds
}

// parseDestination recognizes output path announcements. The audio extraction
// destination wins over the raw download destination because post-processing
// replaces the downloaded file.
func parseDestination(line string) (path string, extracted bool, ok bool) {
	if strings.HasPrefix(line, extractDestPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(line, extractDestPrefix)), true, true
	}
	if strings.HasPrefix(line, downloadDestPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(line, downloadDestPrefix)), false, true
	}
	return "", false, false
}
